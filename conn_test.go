package sqlite

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/weftdb/sqlite/sqlh"
)

func openTest(t testing.TB) *Conn {
	t.Helper()
	conn, err := Open(MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOpenClose(t *testing.T) {
	conn, err := Open(MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	if err := conn.Close(); !errors.Is(err, ErrConnClosed) {
		t.Errorf("second Close err=%v, want ErrConnClosed", err)
	}
	if err := conn.Execute("SELECT 1"); !errors.Is(err, ErrConnClosed) {
		t.Errorf("Execute after Close err=%v, want ErrConnClosed", err)
	}
	if _, err := conn.Prepare("SELECT 1"); !errors.Is(err, ErrConnClosed) {
		t.Errorf("Prepare after Close err=%v, want ErrConnClosed", err)
	}
	if _, err := conn.Begin(); !errors.Is(err, ErrConnClosed) {
		t.Errorf("Begin after Close err=%v, want ErrConnClosed", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.Execute("CREATE TABLE t (id INTEGER PRIMARY KEY, c TEXT)"); err != nil {
		t.Fatal(err)
	}
	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}

	conn, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	stmt, err := conn.Prepare("SELECT count(*) AS n FROM t")
	if err != nil {
		t.Fatal(err)
	}
	row, err := stmt.One()
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := row["n"].AsInt(); n != 0 {
		t.Errorf("count=%d, want 0", n)
	}
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "no", "such", "dir", "test.db"))
	if err == nil {
		t.Fatal("Open succeeded on a nonexistent directory")
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("err=%v, want *Error", err)
	}
	if e.Code.Primary() != sqlh.SQLITE_CANTOPEN {
		t.Errorf("code=%v, want SQLITE_CANTOPEN", e.Code)
	}
}

func TestOpenNulByte(t *testing.T) {
	if _, err := Open("bad\x00path"); !errors.Is(err, ErrNulByte) {
		t.Errorf("err=%v, want ErrNulByte", err)
	}
}

func TestExecuteScript(t *testing.T) {
	conn := openTest(t)
	err := conn.Execute(`
		CREATE TABLE t (id INTEGER PRIMARY KEY, c TEXT);
		INSERT INTO t (c) VALUES ('one');
		INSERT INTO t (c) VALUES ('two');
	`)
	if err != nil {
		t.Fatal(err)
	}
	stmt, err := conn.Prepare("SELECT count(*) AS n FROM t")
	if err != nil {
		t.Fatal(err)
	}
	row, err := stmt.One()
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := row["n"].AsInt(); n != 2 {
		t.Errorf("count=%d, want 2", n)
	}
}

func TestExecuteCommentOnly(t *testing.T) {
	conn := openTest(t)
	if err := conn.Execute("-- nothing here\n"); err != nil {
		t.Fatal(err)
	}
	if err := conn.Execute(""); err != nil {
		t.Fatal(err)
	}
}

func TestExecuteError(t *testing.T) {
	conn := openTest(t)
	err := conn.Execute("CREATE TABLE t (id INTEGER PRIMARY KEY); NOT SQL AT ALL;")
	if err == nil {
		t.Fatal("Execute succeeded on a bad script")
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("err=%v, want *Error", err)
	}
	if e.Code.Primary() != sqlh.SQLITE_ERROR {
		t.Errorf("code=%v, want SQLITE_ERROR", e.Code)
	}
	// The statement before the bad one still ran.
	if err := conn.Execute("INSERT INTO t DEFAULT VALUES"); err != nil {
		t.Fatal(err)
	}
}

func TestPrepareErrors(t *testing.T) {
	conn := openTest(t)
	if _, err := conn.Prepare("NOT SQL"); !errors.Is(err, ErrFailedToPrepare) {
		t.Errorf("bad SQL err=%v, want ErrFailedToPrepare", err)
	}
	if _, err := conn.Prepare("-- just a comment"); !errors.Is(err, ErrFailedToPrepare) {
		t.Errorf("comment-only err=%v, want ErrFailedToPrepare", err)
	}
	_, err := conn.Prepare("SELECT 1; SELECT 2")
	if !errors.Is(err, ErrFailedToPrepare) {
		t.Errorf("two statements err=%v, want ErrFailedToPrepare", err)
	}
	if err == nil || !strings.Contains(err.Error(), "trailing text") {
		t.Errorf("two statements err=%v, want trailing text diagnostic", err)
	}
	if _, err := conn.Prepare("SELECT\x001"); !errors.Is(err, ErrNulByte) {
		t.Errorf("NUL byte err=%v, want ErrNulByte", err)
	}
}

func TestChangesAndLastInsertRowid(t *testing.T) {
	conn := openTest(t)
	if err := conn.Execute("CREATE TABLE t (id INTEGER PRIMARY KEY, c TEXT)"); err != nil {
		t.Fatal(err)
	}
	stmt, err := conn.Prepare("INSERT INTO t (c) VALUES (?)", Text("hello"))
	if err != nil {
		t.Fatal(err)
	}
	rowid, changes, err := stmt.Result()
	if err != nil {
		t.Fatal(err)
	}
	if rowid != 1 || changes != 1 {
		t.Errorf("rowid=%d changes=%d, want 1 1", rowid, changes)
	}
	got, err := conn.LastInsertRowid()
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("LastInsertRowid=%d, want 1", got)
	}
	n, err := conn.Changes()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Changes=%d, want 1", n)
	}
}

func TestUniqueConstraint(t *testing.T) {
	conn := openTest(t)
	err := conn.Execute(`
		CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT UNIQUE);
		INSERT INTO users (email) VALUES ('a@example.com');
	`)
	if err != nil {
		t.Fatal(err)
	}
	stmt, err := conn.Prepare("INSERT INTO users (email) VALUES (?)", Text("a@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = stmt.Result()
	var uerr *UniqueConstraintError
	if !errors.As(err, &uerr) {
		t.Fatalf("err=%v, want *UniqueConstraintError", err)
	}
	if uerr.Column != "users.email" {
		t.Errorf("Column=%q, want %q", uerr.Column, "users.email")
	}
}

func TestDuplicateColumn(t *testing.T) {
	conn := openTest(t)
	if err := conn.Execute("CREATE TABLE t (id INTEGER PRIMARY KEY, c TEXT)"); err != nil {
		t.Fatal(err)
	}
	err := conn.Execute("ALTER TABLE t ADD COLUMN c TEXT")
	var derr *DuplicateColumnError
	if !errors.As(err, &derr) {
		t.Fatalf("err=%v, want *DuplicateColumnError", err)
	}
	if derr.Column != "c" {
		t.Errorf("Column=%q, want %q", derr.Column, "c")
	}
}

func TestDropAll(t *testing.T) {
	conn := openTest(t)
	err := conn.Execute(`
		CREATE TABLE t (id INTEGER PRIMARY KEY, c TEXT);
		CREATE INDEX t_c ON t (c);
		CREATE VIEW v AS SELECT c FROM t;
		CREATE TRIGGER trig AFTER INSERT ON t BEGIN SELECT 1; END;
	`)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.DropAll(); err != nil {
		t.Fatal(err)
	}
	stmt, err := conn.Prepare("SELECT count(*) AS n FROM sqlite_schema")
	if err != nil {
		t.Fatal(err)
	}
	row, err := stmt.One()
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := row["n"].AsInt(); n != 0 {
		t.Errorf("schema objects remaining=%d, want 0", n)
	}
}
