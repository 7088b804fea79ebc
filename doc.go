// Package sqlite is a thin, leak-safe access layer over the SQLite C
// API: connections, prepared statements, typed parameter binding and
// row decoding, transactions with automatic rollback, and idempotent
// forward-only migrations.
//
// The package sits directly on the engine's handle protocol (via
// csqlite) rather than database/sql, so callers get the engine's own
// semantics: dynamic per-row column types, exact change counts, and
// verbatim diagnostics on every failure.
//
// A Conn may be shared across goroutines; the engine serializes its
// calls. A Stmt must only ever be driven from one goroutine at a time.
package sqlite
