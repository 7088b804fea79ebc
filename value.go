package sqlite

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/weftdb/sqlite/csqlite"
	"github.com/weftdb/sqlite/sqlh"
)

type kind uint8

const (
	kindNull kind = iota // so the zero Value is Null
	kindText
	kindInt
	kindReal
	kindBlob
)

func (k kind) String() string {
	switch k {
	case kindNull:
		return "Null"
	case kindText:
		return "Text"
	case kindInt:
		return "Integer"
	case kindReal:
		return "Real"
	case kindBlob:
		return "Blob"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is one column or parameter value: a tagged, nullable scalar
// over text, 64-bit integer, 64-bit float, byte sequence, or null.
//
// A typed null (e.g. TextPtr(nil)) and the plain Null both bind as SQL
// NULL, but remain distinguishable via Type. Values are immutable once
// constructed; text and blob cases own their bytes.
type Value struct {
	kind kind
	null bool // typed null: kind is retained, no payload
	s    string
	i    int64
	f    float64
	b    []byte
}

// Null is the untyped no-value Value. It is the zero Value.
var Null = Value{}

// Text returns a text Value.
func Text(v string) Value { return Value{kind: kindText, s: v} }

// Int returns an integer Value.
func Int(v int64) Value { return Value{kind: kindInt, i: v} }

// Real returns a real Value.
func Real(v float64) Value { return Value{kind: kindReal, f: v} }

// Blob returns a byte-sequence Value, copying v. A nil v is the
// typed null blob; an empty non-nil v is an empty blob.
func Blob(v []byte) Value {
	if v == nil {
		return Value{kind: kindBlob, null: true}
	}
	return Value{kind: kindBlob, b: append([]byte(nil), v...)}
}

// TextPtr returns a text Value, or the typed null text if v is nil.
func TextPtr(v *string) Value {
	if v == nil {
		return Value{kind: kindText, null: true}
	}
	return Text(*v)
}

// IntPtr returns an integer Value, or the typed null integer if v is nil.
func IntPtr(v *int64) Value {
	if v == nil {
		return Value{kind: kindInt, null: true}
	}
	return Int(*v)
}

// RealPtr returns a real Value, or the typed null real if v is nil.
func RealPtr(v *float64) Value {
	if v == nil {
		return Value{kind: kindReal, null: true}
	}
	return Real(*v)
}

// IsNull reports whether v holds no value, whether it is the plain
// Null or a typed null.
func (v Value) IsNull() bool { return v.kind == kindNull || v.null }

// Type reports v's type tag. Typed nulls keep their tag; only the
// plain Null reports SQLITE_NULL.
func (v Value) Type() sqlh.ColumnType {
	switch v.kind {
	case kindText:
		return sqlh.SQLITE_TEXT
	case kindInt:
		return sqlh.SQLITE_INTEGER
	case kindReal:
		return sqlh.SQLITE_FLOAT
	case kindBlob:
		return sqlh.SQLITE_BLOB
	default:
		return sqlh.SQLITE_NULL
	}
}

// AsText returns the text payload. ok is false for any null shape.
// Calling AsText on a non-null, non-text Value is a programming error
// and panics: callers must not need to guess a NULL column's type,
// but a present value's type is part of the caller's contract.
func (v Value) AsText() (_ string, ok bool) {
	if v.IsNull() {
		return "", false
	}
	if v.kind != kindText {
		panic("sqlite: AsText called on " + v.kind.String() + " value")
	}
	return v.s, true
}

// AsInt returns the integer payload. ok is false for any null shape.
// Panics if v holds a non-null value of another type.
func (v Value) AsInt() (_ int64, ok bool) {
	if v.IsNull() {
		return 0, false
	}
	if v.kind != kindInt {
		panic("sqlite: AsInt called on " + v.kind.String() + " value")
	}
	return v.i, true
}

// AsReal returns the real payload. ok is false for any null shape.
// Panics if v holds a non-null value of another type.
func (v Value) AsReal() (_ float64, ok bool) {
	if v.IsNull() {
		return 0, false
	}
	if v.kind != kindReal {
		panic("sqlite: AsReal called on " + v.kind.String() + " value")
	}
	return v.f, true
}

// AsBlob returns a copy of the byte payload. ok is false for any null
// shape. Panics if v holds a non-null value of another type.
func (v Value) AsBlob() (_ []byte, ok bool) {
	if v.IsNull() {
		return nil, false
	}
	if v.kind != kindBlob {
		panic("sqlite: AsBlob called on " + v.kind.String() + " value")
	}
	return append([]byte(nil), v.b...), true
}

// AsInt32 narrows the integer payload, reporting ErrRange when it
// does not fit. A null shape returns (0, nil) with ok semantics left
// to AsInt; use this only where the column is known non-null.
func (v Value) AsInt32() (int32, error) {
	n, ok := v.AsInt()
	if !ok {
		return 0, nil
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d does not fit in int32", ErrRange, n)
	}
	return int32(n), nil
}

// TextOrNil is AsText in pointer shape, for nullable struct fields.
func (v Value) TextOrNil() *string {
	if s, ok := v.AsText(); ok {
		return &s
	}
	return nil
}

// IntOrNil is AsInt in pointer shape, for nullable struct fields.
func (v Value) IntOrNil() *int64 {
	if n, ok := v.AsInt(); ok {
		return &n
	}
	return nil
}

// RealOrNil is AsReal in pointer shape, for nullable struct fields.
func (v Value) RealOrNil() *float64 {
	if f, ok := v.AsReal(); ok {
		return &f
	}
	return nil
}

// BlobOrNil is AsBlob in slice shape; nil for any null shape.
func (v Value) BlobOrNil() []byte {
	if b, ok := v.AsBlob(); ok {
		return b
	}
	return nil
}

func (v Value) String() string {
	if v.kind == kindNull {
		return "Null"
	}
	if v.null {
		return v.kind.String() + "(null)"
	}
	switch v.kind {
	case kindText:
		return fmt.Sprintf("Text(%q)", v.s)
	case kindInt:
		return fmt.Sprintf("Integer(%d)", v.i)
	case kindReal:
		return fmt.Sprintf("Real(%v)", v.f)
	case kindBlob:
		return fmt.Sprintf("Blob(%d bytes)", len(v.b))
	}
	return v.kind.String()
}

// bind writes v into the statement's col'th parameter slot (1-based).
// Every null shape binds SQL NULL.
func (v Value) bind(stmt *csqlite.Stmt, col int) error {
	if v.IsNull() {
		return stmt.BindNull(col)
	}
	switch v.kind {
	case kindText:
		return stmt.BindText(col, v.s)
	case kindInt:
		return stmt.BindInt64(col, v.i)
	case kindReal:
		return stmt.BindDouble(col, v.f)
	case kindBlob:
		return stmt.BindBlob(col, v.b)
	}
	return stmt.BindNull(col)
}

// decodeColumn reads the current row's col'th output column by its
// dynamic type tag. The engine reports the stored type per row, not
// the declared schema type, so this is a total function over the five
// tags. Text and blob payloads are copied out of engine memory.
func decodeColumn(stmt *csqlite.Stmt, col int) (Value, error) {
	switch t := stmt.ColumnType(col); t {
	case sqlh.SQLITE_INTEGER:
		return Int(stmt.ColumnInt64(col)), nil
	case sqlh.SQLITE_FLOAT:
		return Real(stmt.ColumnDouble(col)), nil
	case sqlh.SQLITE_TEXT:
		s := stmt.ColumnText(col)
		if !utf8.ValidString(s) {
			// Stmt.Row names the offending column when it wraps this.
			return Null, ErrInvalidUTF8
		}
		return Text(s), nil
	case sqlh.SQLITE_BLOB:
		b := stmt.ColumnBlob(col)
		if b == nil {
			b = []byte{}
		}
		return Blob(b), nil
	default:
		return Null, nil
	}
}

// Row is one decoded result record, keyed by column name.
//
// Column names within a row are unique; when a query projects the
// same name twice (an un-aliased join), the rightmost column wins.
// Alias columns in SQL when both sides are needed.
type Row map[string]Value
