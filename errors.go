package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/weftdb/sqlite/csqlite"
	"github.com/weftdb/sqlite/sqlh"
)

var (
	// ErrRowNotFound is returned where exactly one row was expected
	// and the query produced none.
	ErrRowNotFound = errors.New("sqlite: row not found")

	// ErrConnClosed is returned by operations on a closed Conn.
	ErrConnClosed = errors.New("sqlite: connection already closed")

	// ErrStmtFinalized is returned by operations on a finalized Stmt.
	ErrStmtFinalized = errors.New("sqlite: statement already finalized")

	// ErrFailedToPrepare wraps every Prepare failure, whether the
	// engine rejected the SQL or the text contained no statement.
	ErrFailedToPrepare = errors.New("sqlite: statement failed to prepare")

	// ErrTxDone is returned by Commit on a transaction that was
	// already committed or rolled back.
	ErrTxDone = errors.New("sqlite: transaction already done")

	// ErrBindMismatch is returned when the number of bound values
	// does not match the statement's parameter count.
	ErrBindMismatch = errors.New("sqlite: bound values do not match statement parameters")

	// ErrNulByte is returned when a path or SQL string contains an
	// embedded NUL byte, which the engine's C strings cannot carry.
	ErrNulByte = errors.New("sqlite: string contains NUL byte")

	// ErrInvalidUTF8 is returned when a text column holds bytes that
	// are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("sqlite: text is not valid UTF-8")

	// ErrRange is returned when a value does not fit the requested
	// native integer width.
	ErrRange = errors.New("sqlite: integer out of range")
)

// Error is a generic engine failure: the diagnostic text reported by
// sqlite3_errmsg plus the extended result code. More specific
// conditions (unique constraint, duplicate column) are classified
// into their own types and never surface as Error.
type Error struct {
	Code sqlh.Code
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("sqlite: %s (%v)", e.Msg, e.Code)
}

// UniqueConstraintError reports a violated UNIQUE constraint.
// Column is the engine's offending-column description, e.g. "t.v".
type UniqueConstraintError struct {
	Column string
}

func (e *UniqueConstraintError) Error() string {
	return "sqlite: UNIQUE constraint failed: " + e.Column
}

// DuplicateColumnError reports an ALTER TABLE ... ADD COLUMN naming a
// column that already exists. The migration runner absorbs this as
// "already applied"; everywhere else it propagates.
type DuplicateColumnError struct {
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return "sqlite: duplicate column name: " + e.Column
}

// Engine diagnostic prefixes routed to typed errors.
const (
	uniquePrefix    = "UNIQUE constraint failed: "
	duplicatePrefix = "duplicate column name: "
)

// classify builds the typed error for a raw engine failure. db may be
// nil (an open call can fail before a handle exists); then only the
// code survives. Nil errors pass through so call sites can wrap
// unconditionally.
func classify(db *csqlite.DB, err error) error {
	if err == nil {
		return nil
	}
	var ec sqlh.ErrCode
	if !errors.As(err, &ec) {
		return err
	}
	if db == nil {
		return &Error{Code: sqlh.Code(ec), Msg: "engine returned a null handle"}
	}
	msg := db.ErrMsg()
	if col, ok := strings.CutPrefix(msg, uniquePrefix); ok {
		return &UniqueConstraintError{Column: col}
	}
	if col, ok := strings.CutPrefix(msg, duplicatePrefix); ok {
		return &DuplicateColumnError{Column: col}
	}
	return &Error{Code: db.ErrCode(), Msg: msg}
}

// checkNulByte guards strings that cross the C boundary.
func checkNulByte(what, s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%w: in %s", ErrNulByte, what)
	}
	return nil
}
