package sqlite

import (
	"fmt"
	"strings"

	"github.com/weftdb/sqlite/csqlite"
	"github.com/weftdb/sqlite/sqlh"
)

// Conn owns one native database connection handle. The handle is
// closed exactly once, by Close; every operation after that returns
// ErrConnClosed.
//
// A Conn may be shared across goroutines (the engine is opened in
// serialized mode), but at most one transaction can be open on it at
// a time, and each Stmt must be driven from a single goroutine.
type Conn struct {
	db     *csqlite.DB
	tracer Tracer
}

// MemoryPath opens a private in-memory database instead of a file.
const MemoryPath = ":memory:"

// Open opens the database file at path, creating it if absent.
// Pass MemoryPath for a throwaway in-memory instance.
func Open(path string) (*Conn, error) {
	if err := checkNulByte("path", path); err != nil {
		return nil, err
	}
	db, err := csqlite.Open(path, sqlh.OpenFlagsDefault, "")
	if err != nil {
		// A failed open can still hand back a handle; it carries the
		// diagnostic and must be closed.
		cerr := classify(db, err)
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("sqlite.Open %q: %w", path, cerr)
	}
	return &Conn{db: db}, nil
}

// SetTracer installs t to observe this connection's transactions and
// consumed statements. A nil t disables tracing.
func (c *Conn) SetTracer(t Tracer) { c.tracer = t }

func (c *Conn) handle() (*csqlite.DB, error) {
	if c == nil || c.db == nil {
		return nil, ErrConnClosed
	}
	return c.db, nil
}

// Execute runs one or more semicolon-separated statements with no
// parameter binding and no result capture. It is meant for
// administrative and pragma scripts; use Prepare for anything with
// parameters or rows.
func (c *Conn) Execute(sql string) error {
	db, err := c.handle()
	if err != nil {
		return err
	}
	if err := checkNulByte("sql", sql); err != nil {
		return err
	}
	for {
		sql = strings.TrimSpace(sql)
		if sql == "" {
			return nil
		}
		stmt, rem, err := db.Prepare(sql, 0)
		if err != nil {
			return fmt.Errorf("sqlite.Execute: %w, in remaining script: %s", classify(db, err), sql)
		}
		sql = rem
		if stmt == nil {
			// Comment-only head of the script.
			continue
		}
		_, err = stmt.Step()
		if err != nil {
			err = fmt.Errorf("sqlite.Execute: %s: %w", stmt.SQL(), classify(db, err))
		}
		stmt.Finalize()
		if err != nil {
			return err
		}
	}
}

// Prepare compiles exactly one statement and, when params are given,
// binds them to its positional slots. The returned Stmt is ready to
// step and must be released by Rows, Result, or Finalize.
func (c *Conn) Prepare(sql string, params ...Value) (*Stmt, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	if err := checkNulByte("sql", sql); err != nil {
		return nil, err
	}
	cstmt, rem, err := db.Prepare(sql, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToPrepare, classify(db, err))
	}
	if cstmt == nil {
		return nil, fmt.Errorf("%w: no statement in %q", ErrFailedToPrepare, sql)
	}
	if strings.TrimSpace(rem) != "" {
		cstmt.Finalize()
		return nil, fmt.Errorf("%w: trailing text after statement: %q", ErrFailedToPrepare, rem)
	}
	if c.tracer != nil {
		c.tracer.Query(sql)
	}
	stmt := &Stmt{conn: c, stmt: cstmt}
	if len(params) > 0 {
		if err := stmt.Bind(params...); err != nil {
			stmt.Finalize()
			return nil, err
		}
	}
	return stmt, nil
}

// Changes reports the number of rows changed by the most recent
// completed statement on this connection. A statement must be fully
// drained (Result does this) before the count is meaningful.
func (c *Conn) Changes() (int64, error) {
	db, err := c.handle()
	if err != nil {
		return 0, err
	}
	return db.Changes(), nil
}

// LastInsertRowid reports the rowid of the most recent successful
// INSERT on this connection.
func (c *Conn) LastInsertRowid() (int64, error) {
	db, err := c.handle()
	if err != nil {
		return 0, err
	}
	return db.LastInsertRowid(), nil
}

// Close releases the native handle. It is safe to call Close exactly
// once; later calls (and any other operation) return ErrConnClosed.
// Close releases the handle even when earlier operations failed.
func (c *Conn) Close() error {
	if c == nil || c.db == nil {
		return ErrConnClosed
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		return fmt.Errorf("sqlite.Close: %w", err)
	}
	return nil
}
