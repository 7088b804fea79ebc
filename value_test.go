package sqlite

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/weftdb/sqlite/sqlh"
)

func TestValueZeroIsNull(t *testing.T) {
	var v Value
	if !v.IsNull() {
		t.Error("zero Value is not null")
	}
	if !Null.IsNull() {
		t.Error("Null is not null")
	}
	if got := v.Type(); got != sqlh.SQLITE_NULL {
		t.Errorf("Type=%v, want SQLITE_NULL", got)
	}
}

func TestValueAccessors(t *testing.T) {
	if s, ok := Text("hi").AsText(); !ok || s != "hi" {
		t.Errorf("Text: got %q %v", s, ok)
	}
	if i, ok := Int(42).AsInt(); !ok || i != 42 {
		t.Errorf("Int: got %d %v", i, ok)
	}
	if f, ok := Real(1.5).AsReal(); !ok || f != 1.5 {
		t.Errorf("Real: got %v %v", f, ok)
	}
	if b, ok := Blob([]byte{1, 2}).AsBlob(); !ok || !cmp.Equal(b, []byte{1, 2}) {
		t.Errorf("Blob: got %v %v", b, ok)
	}
	if _, ok := Null.AsText(); ok {
		t.Error("Null.AsText reported ok")
	}
}

func TestValueTypedNull(t *testing.T) {
	v := TextPtr(nil)
	if !v.IsNull() {
		t.Error("TextPtr(nil) is not null")
	}
	if got := v.Type(); got != sqlh.SQLITE_TEXT {
		t.Errorf("Type=%v, want SQLITE_TEXT", got)
	}
	if _, ok := v.AsText(); ok {
		t.Error("typed null AsText reported ok")
	}
	if got := Blob(nil).Type(); got != sqlh.SQLITE_BLOB {
		t.Errorf("Blob(nil).Type=%v, want SQLITE_BLOB", got)
	}
}

func TestValueAccessorPanicsOnWrongVariant(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("AsText on an Int did not panic")
		}
	}()
	Int(1).AsText()
}

func TestValueAsInt32(t *testing.T) {
	if n, err := Int(7).AsInt32(); err != nil || n != 7 {
		t.Errorf("got %d, %v", n, err)
	}
	if _, err := Int(math.MaxInt32 + 1).AsInt32(); !errors.Is(err, ErrRange) {
		t.Errorf("overflow err=%v, want ErrRange", err)
	}
	if n, err := Null.AsInt32(); err != nil || n != 0 {
		t.Errorf("null: got %d, %v", n, err)
	}
}

func TestValueOrNil(t *testing.T) {
	s := "hi"
	if got := TextPtr(&s).TextOrNil(); got == nil || *got != "hi" {
		t.Errorf("TextOrNil=%v", got)
	}
	if got := Null.TextOrNil(); got != nil {
		t.Errorf("Null.TextOrNil=%v, want nil", got)
	}
	if got := Null.BlobOrNil(); got != nil {
		t.Errorf("Null.BlobOrNil=%v, want nil", got)
	}
}

func TestValueBlobCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	v := Blob(src)
	src[0] = 9
	b, _ := v.AsBlob()
	if !cmp.Equal(b, []byte{1, 2, 3}) {
		t.Errorf("blob shares caller memory: %v", b)
	}
}

func TestValueRoundTrip(t *testing.T) {
	conn := openTest(t)
	err := conn.Execute(`CREATE TABLE t (c0 INTEGER, c1 TEXT, c2 REAL, c3 BLOB, c4 INTEGER)`)
	if err != nil {
		t.Fatal(err)
	}
	stmt, err := conn.Prepare(`INSERT INTO t VALUES (?, ?, ?, ?, ?)`,
		Int(-5), Text("héllo"), Real(2.25), Blob([]byte{0, 255}), Null)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := stmt.Result(); err != nil {
		t.Fatal(err)
	}
	stmt, err = conn.Prepare(`SELECT * FROM t`)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := stmt.Rows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if i, _ := row["c0"].AsInt(); i != -5 {
		t.Errorf("c0=%v", row["c0"])
	}
	if s, _ := row["c1"].AsText(); s != "héllo" {
		t.Errorf("c1=%v", row["c1"])
	}
	if f, _ := row["c2"].AsReal(); f != 2.25 {
		t.Errorf("c2=%v", row["c2"])
	}
	if b, _ := row["c3"].AsBlob(); !cmp.Equal(b, []byte{0, 255}) {
		t.Errorf("c3=%v", row["c3"])
	}
	if !row["c4"].IsNull() {
		t.Errorf("c4=%v, want null", row["c4"])
	}
}
