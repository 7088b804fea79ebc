package sqlite

import (
	"fmt"

	"github.com/weftdb/sqlite/csqlite"
)

// Stmt is a compiled statement bound to its Conn. It is consumed by
// Rows or Result, which drain it and release the native handle; a
// bare Step/Row loop must end with an explicit Finalize. Operations
// on a finalized Stmt return ErrStmtFinalized.
//
// A Stmt must be driven from a single goroutine.
type Stmt struct {
	conn *Conn
	stmt *csqlite.Stmt
}

func (s *Stmt) handle() (*csqlite.Stmt, error) {
	if s == nil || s.stmt == nil {
		return nil, ErrStmtFinalized
	}
	return s.stmt, nil
}

// SQL reports the text this statement was compiled from.
func (s *Stmt) SQL() string {
	if s == nil || s.stmt == nil {
		return ""
	}
	return s.stmt.SQL()
}

// Bind assigns params to the statement's parameter slots in order.
// The engine keeps its own copy of every text and blob, so callers
// may reuse or mutate the originals immediately. The number of
// params must equal the statement's parameter count.
func (s *Stmt) Bind(params ...Value) error {
	stmt, err := s.handle()
	if err != nil {
		return err
	}
	if n := stmt.BindParameterCount(); n != len(params) {
		return fmt.Errorf("%w: statement has %d parameters, got %d values", ErrBindMismatch, n, len(params))
	}
	for i, v := range params {
		if err := v.bind(stmt, i+1); err != nil {
			return fmt.Errorf("sqlite: bind parameter %d: %w", i+1, classify(s.conn.db, err))
		}
	}
	return nil
}

// Step advances the statement one row. It reports true with the row
// loaded into the column accessors, or false when the statement has
// run to completion.
func (s *Stmt) Step() (row bool, err error) {
	stmt, err := s.handle()
	if err != nil {
		return false, err
	}
	row, err = stmt.Step()
	if err != nil {
		return false, classify(s.conn.db, err)
	}
	return row, nil
}

// Row steps once and decodes the current row into a Row keyed by
// column name. It reports false when the statement is done. When two
// result columns share a name the later one wins.
func (s *Stmt) Row() (Row, bool, error) {
	stmt, err := s.handle()
	if err != nil {
		return nil, false, err
	}
	more, err := stmt.Step()
	if err != nil {
		return nil, false, classify(s.conn.db, err)
	}
	if !more {
		return nil, false, nil
	}
	n := stmt.ColumnCount()
	row := make(Row, n)
	for i := 0; i < n; i++ {
		v, err := decodeColumn(stmt, i)
		if err != nil {
			return nil, false, fmt.Errorf("sqlite: column %q: %w", stmt.ColumnName(i), err)
		}
		row[stmt.ColumnName(i)] = v
	}
	return row, true, nil
}

// Rows drains the statement, decodes every row, and finalizes it.
// The Stmt is released whether or not an error occurred.
func (s *Stmt) Rows() ([]Row, error) {
	defer s.Finalize()
	var rows []Row
	for {
		row, more, err := s.Row()
		if err != nil {
			return nil, err
		}
		if !more {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// One drains the statement expecting exactly one row and finalizes
// it. It returns ErrRowNotFound when the query produced none; any
// rows past the first are discarded.
func (s *Stmt) One() (Row, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrRowNotFound
	}
	return rows[0], nil
}

// Result runs the statement to completion, discarding any rows, and
// finalizes it. It reports the rowid of the last INSERT and the
// number of rows the statement changed.
func (s *Stmt) Result() (lastInsertRowid, changes int64, err error) {
	stmt, err := s.handle()
	if err != nil {
		return 0, 0, err
	}
	defer s.Finalize()
	for {
		row, rowid, n, err := stmt.StepResult()
		if err != nil {
			return 0, 0, classify(s.conn.db, err)
		}
		if !row {
			return rowid, n, nil
		}
	}
}

// ParameterNames reports the name of every parameter slot in order.
// Nameless positional slots ("?") report an empty string.
func (s *Stmt) ParameterNames() ([]string, error) {
	stmt, err := s.handle()
	if err != nil {
		return nil, err
	}
	names := make([]string, stmt.BindParameterCount())
	for i := range names {
		names[i] = stmt.BindParameterName(i + 1)
	}
	return names, nil
}

// ColumnNames reports the name of every result column in order.
func (s *Stmt) ColumnNames() ([]string, error) {
	stmt, err := s.handle()
	if err != nil {
		return nil, err
	}
	names := make([]string, stmt.ColumnCount())
	for i := range names {
		names[i] = stmt.ColumnName(i)
	}
	return names, nil
}

// ColumnDeclTypes reports the declared type of every result column
// in order. Columns with no declaration, such as expressions, report
// "ANY".
func (s *Stmt) ColumnDeclTypes() ([]string, error) {
	stmt, err := s.handle()
	if err != nil {
		return nil, err
	}
	types := make([]string, stmt.ColumnCount())
	for i := range types {
		t := stmt.ColumnDeclType(i)
		if t == "" {
			t = "ANY"
		}
		types[i] = t
	}
	return types, nil
}

// Finalize releases the native statement handle. It is a no-op after
// the first call.
func (s *Stmt) Finalize() error {
	if s == nil || s.stmt == nil {
		return nil
	}
	err := s.stmt.Finalize()
	s.stmt = nil
	if err != nil {
		return classify(s.conn.db, err)
	}
	return nil
}
