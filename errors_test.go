package sqlite

import (
	"errors"
	"strings"
	"testing"

	"github.com/weftdb/sqlite/sqlh"
)

func TestErrorStrings(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&Error{Code: sqlh.SQLITE_BUSY, Msg: "database is locked"},
			"sqlite: database is locked (SQLITE_BUSY)"},
		{&UniqueConstraintError{Column: "users.email"},
			"sqlite: UNIQUE constraint failed: users.email"},
		{&DuplicateColumnError{Column: "note"},
			"sqlite: duplicate column name: note"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error()=%q, want %q", got, tt.want)
		}
	}
}

func TestClassifyPassthrough(t *testing.T) {
	if err := classify(nil, nil); err != nil {
		t.Errorf("classify(nil, nil)=%v, want nil", err)
	}
	plain := errors.New("not an engine error")
	if err := classify(nil, plain); err != plain {
		t.Errorf("classify passed a non-engine error through as %v", err)
	}
}

func TestClassifyConstraintCode(t *testing.T) {
	conn := openTest(t)
	err := conn.Execute(`
		CREATE TABLE t (v INTEGER CHECK (v > 0));
		INSERT INTO t VALUES (-1);
	`)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("err=%v, want *Error", err)
	}
	if e.Code.Primary() != sqlh.SQLITE_CONSTRAINT {
		t.Errorf("code=%v, want SQLITE_CONSTRAINT", e.Code)
	}
	if !strings.Contains(e.Msg, "CHECK constraint failed") {
		t.Errorf("msg=%q, want CHECK constraint diagnostic", e.Msg)
	}
}
