// Package csqlite is a low-level cgo interface onto the SQLite C API.
//
// It wraps the raw connection and statement handles with Go-friendly
// calls and nothing more: no value model, no error classification, no
// lifecycle policy. Users of this package never touch cgo themselves,
// so the layers above can focus on semantics rather than C<->Go
// transforms.
package csqlite
