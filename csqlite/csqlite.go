package csqlite

// Compile options follow the recommended set in
// https://www.sqlite.org/compile.html#recommended_compile_time_options,
// except SQLITE_OMIT_DECLTYPE (the schema compiler needs declared
// column types) and with SQLITE_THREADSAFE=1 so a connection handle
// may be shared across threads.

// #cgo CFLAGS: -DSQLITE_THREADSAFE=1
// #cgo CFLAGS: -DSQLITE_DQS=0
// #cgo CFLAGS: -DSQLITE_DEFAULT_MEMSTATUS=0
// #cgo CFLAGS: -DSQLITE_DEFAULT_WAL_SYNCHRONOUS=1
// #cgo CFLAGS: -DSQLITE_LIKE_DOESNT_MATCH_BLOBS
// #cgo CFLAGS: -DSQLITE_MAX_EXPR_DEPTH=0
// #cgo CFLAGS: -DSQLITE_OMIT_DEPRECATED
// #cgo CFLAGS: -DSQLITE_OMIT_PROGRESS_CALLBACK
// #cgo CFLAGS: -DSQLITE_OMIT_SHARED_CACHE
// #cgo CFLAGS: -DSQLITE_USE_ALLOCA
// #cgo CFLAGS: -DSQLITE_ENABLE_COLUMN_METADATA
// #cgo CFLAGS: -DHAVE_USLEEP=1
// #cgo linux LDFLAGS: -lsqlite3 -ldl -lm
// #cgo linux CFLAGS: -std=c99
//
// #include <stdint.h>
// #include <stdlib.h>
// #include <string.h>
// #include <sqlite3.h>
// #include "csqlite.h"
import "C"
import (
	"time"
	"unsafe"

	"github.com/weftdb/sqlite/sqlh"
)

// DB wraps one sqlite3* connection handle.
// https://sqlite.org/c3ref/sqlite3.html
type DB struct {
	db *C.sqlite3

	declTypes map[string]string // interned sqlite3_column_decltype results
}

// Stmt wraps one sqlite3_stmt* handle, scoped to the DB that
// prepared it.
// https://sqlite.org/c3ref/stmt.html
type Stmt struct {
	db   *DB
	stmt *C.sqlite3_stmt
}

// Open is sqlite3_open_v2.
//
// Surprisingly: an error opening the DB can return a non-nil handle.
// Call Close on it after collecting the diagnostic.
//
// https://sqlite.org/c3ref/open.html
func Open(filename string, flags sqlh.OpenFlags, vfs string) (*DB, error) {
	cfilename := C.CString(filename)
	defer C.free(unsafe.Pointer(cfilename))

	cvfs := (*C.char)(nil)
	if vfs != "" {
		cvfs = C.CString(vfs)
		defer C.free(unsafe.Pointer(cvfs))
	}

	var cdb *C.sqlite3
	res := C.sqlite3_open_v2(cfilename, &cdb, C.int(flags), cvfs)
	var db *DB
	if cdb != nil {
		db = &DB{db: cdb}
	}
	return db, errCode(res)
}

// Close is sqlite3_close.
// https://sqlite.org/c3ref/close.html
func (db *DB) Close() error {
	return errCode(C.sqlite3_close(db.db))
}

// ErrMsg is sqlite3_errmsg.
// https://sqlite.org/c3ref/errcode.html
func (db *DB) ErrMsg() string {
	return C.GoString(C.sqlite3_errmsg(db.db))
}

// ErrCode is sqlite3_extended_errcode.
// https://sqlite.org/c3ref/errcode.html
func (db *DB) ErrCode() sqlh.Code {
	return sqlh.Code(C.sqlite3_extended_errcode(db.db))
}

// Changes is sqlite3_changes.
// https://sqlite.org/c3ref/changes.html
func (db *DB) Changes() int64 {
	return int64(C.sqlite3_changes(db.db))
}

// LastInsertRowid is sqlite3_last_insert_rowid.
// https://sqlite.org/c3ref/last_insert_rowid.html
func (db *DB) LastInsertRowid() int64 {
	return int64(C.sqlite3_last_insert_rowid(db.db))
}

// BusyTimeout is sqlite3_busy_timeout.
// https://www.sqlite.org/c3ref/busy_timeout.html
func (db *DB) BusyTimeout(d time.Duration) {
	C.sqlite3_busy_timeout(db.db, C.int(d/time.Millisecond))
}

// AutoCommit is sqlite3_get_autocommit: false while a transaction is
// open on the connection.
// https://www.sqlite.org/c3ref/get_autocommit.html
func (db *DB) AutoCommit() bool {
	return C.sqlite3_get_autocommit(db.db) != 0
}

// Prepare is sqlite3_prepare_v3. remainingQuery holds any text after
// the first statement's terminating semicolon, for script execution.
// https://www.sqlite.org/c3ref/prepare.html
func (db *DB) Prepare(query string, prepFlags sqlh.PrepareFlags) (stmt *Stmt, remainingQuery string, err error) {
	csql := C.CString(query)
	defer C.free(unsafe.Pointer(csql))

	var cstmt *C.sqlite3_stmt
	var csqlTail *C.char
	res := C.sqlite3_prepare_v3(db.db, csql, C.int(len(query))+1, C.uint(prepFlags), &cstmt, &csqlTail)
	if err := errCode(res); err != nil {
		return nil, "", err
	}
	remainingQuery = query[len(query)-int(C.strlen(csqlTail)):]
	if cstmt == nil {
		// Comment-only or whitespace-only head of the script.
		return nil, remainingQuery, nil
	}
	return &Stmt{db: db, stmt: cstmt}, remainingQuery, nil
}

// SQL is sqlite3_sql.
// https://www.sqlite.org/c3ref/expanded_sql.html
func (stmt *Stmt) SQL() string {
	return C.GoString(C.sqlite3_sql(stmt.stmt))
}

// Step is sqlite3_step.
//
//	For SQLITE_ROW, Step returns (true, nil).
//	For SQLITE_DONE, Step returns (false, nil).
//	For any error, Step returns (false, err).
//
// https://www.sqlite.org/c3ref/step.html
func (stmt *Stmt) Step() (row bool, err error) {
	res := C.sqlite3_step(stmt.stmt)
	switch res {
	case C.SQLITE_ROW:
		return true, nil
	case C.SQLITE_DONE:
		return false, nil
	default:
		return false, errCode(res)
	}
}

// StepResult is sqlite3_step plus sqlite3_last_insert_rowid and
// sqlite3_changes, read in one cgo crossing while this statement is
// still the most recent completed one on the connection.
// https://www.sqlite.org/c3ref/step.html
func (stmt *Stmt) StepResult() (row bool, lastInsertRowID, changes int64, err error) {
	var rowid, chng C.sqlite3_int64
	res := C.step_changes(stmt.stmt, &rowid, &chng)
	lastInsertRowID = int64(rowid)
	changes = int64(chng)

	switch res {
	case C.SQLITE_ROW:
		return true, lastInsertRowID, changes, nil
	case C.SQLITE_DONE:
		return false, lastInsertRowID, changes, nil
	default:
		return false, lastInsertRowID, changes, errCode(res)
	}
}

// Finalize is sqlite3_finalize.
// https://sqlite.org/c3ref/finalize.html
func (stmt *Stmt) Finalize() error {
	return errCode(C.sqlite3_finalize(stmt.stmt))
}

// BindDouble is sqlite3_bind_double.
// https://sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindDouble(col int, val float64) error {
	return errCode(C.sqlite3_bind_double(stmt.stmt, C.int(col), C.double(val)))
}

// BindInt64 is sqlite3_bind_int64.
// https://sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindInt64(col int, val int64) error {
	return errCode(C.sqlite3_bind_int64(stmt.stmt, C.int(col), C.sqlite3_int64(val)))
}

// BindNull is sqlite3_bind_null.
// https://sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindNull(col int) error {
	return errCode(C.sqlite3_bind_null(stmt.stmt, C.int(col)))
}

// BindText is sqlite3_bind_text64. The engine owns a copy of val, so
// the binding stays valid for the statement's whole remaining
// lifetime regardless of what the Go caller does with its string.
// https://sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindText(col int, val string) error {
	if len(val) == 0 {
		return errCode(C.bind_text_empty(stmt.stmt, C.int(col)))
	}
	v := C.CString(val) // freed by the engine, see bind_text
	return errCode(C.bind_text(stmt.stmt, C.int(col), v, C.sqlite3_uint64(len(val))))
}

// BindBlob is sqlite3_bind_blob64 with SQLITE_TRANSIENT, so the
// engine copies val before the call returns.
// https://sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindBlob(col int, val []byte) error {
	var p *C.char
	if len(val) > 0 {
		p = (*C.char)(unsafe.Pointer(&val[0]))
	}
	return errCode(C.bind_blob(stmt.stmt, C.int(col), p, C.sqlite3_uint64(len(val))))
}

// BindParameterCount is sqlite3_bind_parameter_count.
// https://sqlite.org/c3ref/bind_parameter_count.html
func (stmt *Stmt) BindParameterCount() int {
	return int(C.sqlite3_bind_parameter_count(stmt.stmt))
}

// BindParameterName is sqlite3_bind_parameter_name.
// Returns "" for nameless (positional) parameters.
// https://sqlite.org/c3ref/bind_parameter_name.html
func (stmt *Stmt) BindParameterName(col int) string {
	cstr := C.sqlite3_bind_parameter_name(stmt.stmt, C.int(col))
	if cstr == nil {
		return ""
	}
	return C.GoString(cstr)
}

// ColumnCount is sqlite3_column_count.
// https://sqlite.org/c3ref/column_count.html
func (stmt *Stmt) ColumnCount() int {
	return int(C.sqlite3_column_count(stmt.stmt))
}

// ColumnName is sqlite3_column_name.
// https://sqlite.org/c3ref/column_name.html
func (stmt *Stmt) ColumnName(col int) string {
	return C.GoString(C.sqlite3_column_name(stmt.stmt, C.int(col)))
}

// ColumnText is sqlite3_column_text.
// https://sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnText(col int) string {
	str := (*C.char)(unsafe.Pointer(C.sqlite3_column_text(stmt.stmt, C.int(col))))
	n := C.sqlite3_column_bytes(stmt.stmt, C.int(col))
	if str == nil || n == 0 {
		return ""
	}
	return C.GoStringN(str, n)
}

// ColumnBlob is sqlite3_column_blob.
//
// WARNING: The returned memory is managed by C and is only valid
// until another call is made on this Stmt.
//
// https://sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnBlob(col int) []byte {
	res := C.sqlite3_column_blob(stmt.stmt, C.int(col))
	if res == nil {
		return nil
	}
	n := int(C.sqlite3_column_bytes(stmt.stmt, C.int(col)))
	return unsafe.Slice((*byte)(res), n)
}

// ColumnDouble is sqlite3_column_double.
// https://sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnDouble(col int) float64 {
	return float64(C.sqlite3_column_double(stmt.stmt, C.int(col)))
}

// ColumnInt64 is sqlite3_column_int64.
// https://sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnInt64(col int) int64 {
	return int64(C.sqlite3_column_int64(stmt.stmt, C.int(col)))
}

// ColumnType is sqlite3_column_type: the dynamic type of the value in
// the current row, not the schema's declared type.
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnType(col int) sqlh.ColumnType {
	return sqlh.ColumnType(C.sqlite3_column_type(stmt.stmt, C.int(col)))
}

// ColumnDeclType is sqlite3_column_decltype: the declared (schema)
// type of a result column, or "" for expressions and aggregates.
// Results are interned on the DB; decltype strings repeat endlessly.
// https://sqlite.org/c3ref/column_decltype.html
func (stmt *Stmt) ColumnDeclType(col int) string {
	cstr := C.sqlite3_column_decltype(stmt.stmt, C.int(col))
	if cstr == nil {
		return ""
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(cstr)), C.strlen(cstr))
	if stmt.db.declTypes == nil {
		stmt.db.declTypes = make(map[string]string)
	}
	if res, found := stmt.db.declTypes[string(b)]; found {
		return res
	}
	res := string(b)
	stmt.db.declTypes[res] = res
	return res
}

func errCode(code C.int) error { return sqlh.CodeAsError(sqlh.Code(code)) }
