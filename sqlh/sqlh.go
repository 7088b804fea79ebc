// Package sqlh holds the SQLite engine vocabulary shared by the cgo
// bindings and the access layer: result codes, column type tags, and
// open flags.
//
// Constants keep their standard SQLITE_ names so they show up in
// search against the engine documentation.
package sqlh

// Code is an SQLite result code, possibly extended.
//
// SQLITE_OK, SQLITE_ROW, and SQLITE_DONE are status codes, not errors,
// and must never be wrapped in an ErrCode.
type Code int

const (
	SQLITE_OK         = Code(0) // not an error
	SQLITE_ERROR      = Code(1)
	SQLITE_INTERNAL   = Code(2)
	SQLITE_PERM       = Code(3)
	SQLITE_ABORT      = Code(4)
	SQLITE_BUSY       = Code(5)
	SQLITE_LOCKED     = Code(6)
	SQLITE_NOMEM      = Code(7)
	SQLITE_READONLY   = Code(8)
	SQLITE_INTERRUPT  = Code(9)
	SQLITE_IOERR      = Code(10)
	SQLITE_CORRUPT    = Code(11)
	SQLITE_NOTFOUND   = Code(12)
	SQLITE_FULL       = Code(13)
	SQLITE_CANTOPEN   = Code(14)
	SQLITE_PROTOCOL   = Code(15)
	SQLITE_EMPTY      = Code(16)
	SQLITE_SCHEMA     = Code(17)
	SQLITE_TOOBIG     = Code(18)
	SQLITE_CONSTRAINT = Code(19)
	SQLITE_MISMATCH   = Code(20)
	SQLITE_MISUSE     = Code(21)
	SQLITE_NOLFS      = Code(22)
	SQLITE_AUTH       = Code(23)
	SQLITE_FORMAT     = Code(24)
	SQLITE_RANGE      = Code(25)
	SQLITE_NOTADB     = Code(26)
	SQLITE_NOTICE     = Code(27)
	SQLITE_WARNING    = Code(28)
	SQLITE_ROW        = Code(100) // not an error
	SQLITE_DONE       = Code(101) // not an error

	// Extended codes the access layer routes on.

	SQLITE_BUSY_RECOVERY         = Code(SQLITE_BUSY | (1 << 8))
	SQLITE_BUSY_SNAPSHOT         = Code(SQLITE_BUSY | (2 << 8))
	SQLITE_BUSY_TIMEOUT          = Code(SQLITE_BUSY | (3 << 8))
	SQLITE_CONSTRAINT_CHECK      = Code(SQLITE_CONSTRAINT | (1 << 8))
	SQLITE_CONSTRAINT_FOREIGNKEY = Code(SQLITE_CONSTRAINT | (3 << 8))
	SQLITE_CONSTRAINT_NOTNULL    = Code(SQLITE_CONSTRAINT | (5 << 8))
	SQLITE_CONSTRAINT_PRIMARYKEY = Code(SQLITE_CONSTRAINT | (6 << 8))
	SQLITE_CONSTRAINT_UNIQUE     = Code(SQLITE_CONSTRAINT | (8 << 8))
	SQLITE_CONSTRAINT_ROWID      = Code(SQLITE_CONSTRAINT | (10 << 8))
	SQLITE_READONLY_RECOVERY     = Code(SQLITE_READONLY | (1 << 8))
	SQLITE_READONLY_CANTLOCK     = Code(SQLITE_READONLY | (2 << 8))
	SQLITE_CANTOPEN_ISDIR        = Code(SQLITE_CANTOPEN | (2 << 8))
	SQLITE_CANTOPEN_FULLPATH     = Code(SQLITE_CANTOPEN | (3 << 8))
)

// Primary strips the extended bits off a Code.
func (code Code) Primary() Code { return code & 0xff }

var codeNames = map[Code]string{
	SQLITE_OK:                    "SQLITE_OK",
	SQLITE_ERROR:                 "SQLITE_ERROR",
	SQLITE_INTERNAL:              "SQLITE_INTERNAL",
	SQLITE_PERM:                  "SQLITE_PERM",
	SQLITE_ABORT:                 "SQLITE_ABORT",
	SQLITE_BUSY:                  "SQLITE_BUSY",
	SQLITE_LOCKED:                "SQLITE_LOCKED",
	SQLITE_NOMEM:                 "SQLITE_NOMEM",
	SQLITE_READONLY:              "SQLITE_READONLY",
	SQLITE_INTERRUPT:             "SQLITE_INTERRUPT",
	SQLITE_IOERR:                 "SQLITE_IOERR",
	SQLITE_CORRUPT:               "SQLITE_CORRUPT",
	SQLITE_NOTFOUND:              "SQLITE_NOTFOUND",
	SQLITE_FULL:                  "SQLITE_FULL",
	SQLITE_CANTOPEN:              "SQLITE_CANTOPEN",
	SQLITE_PROTOCOL:              "SQLITE_PROTOCOL",
	SQLITE_EMPTY:                 "SQLITE_EMPTY",
	SQLITE_SCHEMA:                "SQLITE_SCHEMA",
	SQLITE_TOOBIG:                "SQLITE_TOOBIG",
	SQLITE_CONSTRAINT:            "SQLITE_CONSTRAINT",
	SQLITE_MISMATCH:              "SQLITE_MISMATCH",
	SQLITE_MISUSE:                "SQLITE_MISUSE",
	SQLITE_NOLFS:                 "SQLITE_NOLFS",
	SQLITE_AUTH:                  "SQLITE_AUTH",
	SQLITE_FORMAT:                "SQLITE_FORMAT",
	SQLITE_RANGE:                 "SQLITE_RANGE",
	SQLITE_NOTADB:                "SQLITE_NOTADB",
	SQLITE_NOTICE:                "SQLITE_NOTICE",
	SQLITE_WARNING:               "SQLITE_WARNING",
	SQLITE_ROW:                   "SQLITE_ROW",
	SQLITE_DONE:                  "SQLITE_DONE",
	SQLITE_BUSY_RECOVERY:         "SQLITE_BUSY_RECOVERY",
	SQLITE_BUSY_SNAPSHOT:         "SQLITE_BUSY_SNAPSHOT",
	SQLITE_BUSY_TIMEOUT:          "SQLITE_BUSY_TIMEOUT",
	SQLITE_CONSTRAINT_CHECK:      "SQLITE_CONSTRAINT_CHECK",
	SQLITE_CONSTRAINT_FOREIGNKEY: "SQLITE_CONSTRAINT_FOREIGNKEY",
	SQLITE_CONSTRAINT_NOTNULL:    "SQLITE_CONSTRAINT_NOTNULL",
	SQLITE_CONSTRAINT_PRIMARYKEY: "SQLITE_CONSTRAINT_PRIMARYKEY",
	SQLITE_CONSTRAINT_UNIQUE:     "SQLITE_CONSTRAINT_UNIQUE",
	SQLITE_CONSTRAINT_ROWID:      "SQLITE_CONSTRAINT_ROWID",
	SQLITE_READONLY_RECOVERY:     "SQLITE_READONLY_RECOVERY",
	SQLITE_READONLY_CANTLOCK:     "SQLITE_READONLY_CANTLOCK",
	SQLITE_CANTOPEN_ISDIR:        "SQLITE_CANTOPEN_ISDIR",
	SQLITE_CANTOPEN_FULLPATH:     "SQLITE_CANTOPEN_FULLPATH",
}

func (code Code) String() string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	if name, ok := codeNames[code.Primary()]; ok {
		return name + "(extended)"
	}
	return "SQLITE_UNKNOWN_CODE(" + itoa(int64(code)) + ")"
}

// ErrCode is a Code presented as a Go error.
// It must never hold SQLITE_OK, SQLITE_ROW, or SQLITE_DONE.
type ErrCode Code

func (e ErrCode) Error() string { return Code(e).String() }

// CodeAsError converts a Code into an error.
// The non-error status codes return nil.
func CodeAsError(code Code) error {
	if code == SQLITE_OK || code == SQLITE_ROW || code == SQLITE_DONE {
		return nil
	}
	return ErrCode(code)
}

// ColumnType is the dynamic type tag of one stored value.
// There are exactly five; decoding is total over them.
// https://www.sqlite.org/c3ref/c_blob.html
type ColumnType int

const (
	SQLITE_INTEGER ColumnType = 1
	SQLITE_FLOAT   ColumnType = 2
	SQLITE_TEXT    ColumnType = 3
	SQLITE_BLOB    ColumnType = 4
	SQLITE_NULL    ColumnType = 5
)

func (t ColumnType) String() string {
	switch t {
	case SQLITE_INTEGER:
		return "SQLITE_INTEGER"
	case SQLITE_FLOAT:
		return "SQLITE_FLOAT"
	case SQLITE_TEXT:
		return "SQLITE_TEXT"
	case SQLITE_BLOB:
		return "SQLITE_BLOB"
	case SQLITE_NULL:
		return "SQLITE_NULL"
	default:
		return "SQLITE_UNKNOWN_TYPE(" + itoa(int64(t)) + ")"
	}
}

// OpenFlags are the flags accepted by sqlite3_open_v2.
// https://www.sqlite.org/c3ref/c_open_autoproxy.html
type OpenFlags int

const (
	SQLITE_OPEN_READONLY  OpenFlags = 0x00000001
	SQLITE_OPEN_READWRITE OpenFlags = 0x00000002
	SQLITE_OPEN_CREATE    OpenFlags = 0x00000004
	SQLITE_OPEN_URI       OpenFlags = 0x00000040
	SQLITE_OPEN_MEMORY    OpenFlags = 0x00000080
	SQLITE_OPEN_NOMUTEX   OpenFlags = 0x00008000
	SQLITE_OPEN_FULLMUTEX OpenFlags = 0x00010000
	SQLITE_OPEN_WAL       OpenFlags = 0x00080000
	SQLITE_OPEN_NOFOLLOW  OpenFlags = 0x00100000

	// OpenFlagsDefault opens serialized so a connection handle can be
	// shared across goroutines; per-statement use stays single-threaded.
	OpenFlagsDefault = SQLITE_OPEN_READWRITE |
		SQLITE_OPEN_CREATE |
		SQLITE_OPEN_URI |
		SQLITE_OPEN_FULLMUTEX
)

// PrepareFlags are the flags accepted by sqlite3_prepare_v3.
// https://www.sqlite.org/c3ref/c_prepare_normalize.html
type PrepareFlags int

const (
	SQLITE_PREPARE_PERSISTENT PrepareFlags = 0x01
	SQLITE_PREPARE_NO_VTAB    PrepareFlags = 0x04
)

func itoa(val int64) string {
	var buf [20]byte
	i := len(buf) - 1
	neg := false
	if val < 0 {
		neg = true
		val = -val
	}
	for val >= 10 {
		buf[i] = byte(val%10 + '0')
		i--
		val /= 10
	}
	buf[i] = byte(val + '0')
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
