package sqlite

import (
	"fmt"
	"strconv"
)

// TxMode selects the locking behavior a transaction opens with.
type TxMode int

const (
	// Deferred takes no lock until the first statement needs one.
	Deferred TxMode = iota
	// Immediate takes the write lock up front, so a later write
	// cannot fail with a busy error after reads already happened.
	Immediate
	// Exclusive additionally blocks other readers in rollback
	// journal mode.
	Exclusive
)

func (m TxMode) String() string {
	switch m {
	case Deferred:
		return "DEFERRED"
	case Immediate:
		return "IMMEDIATE"
	case Exclusive:
		return "EXCLUSIVE"
	}
	return "TxMode(" + strconv.Itoa(int(m)) + ")"
}

// Tx is an open transaction on its Conn. Exactly one of Commit or
// Rollback ends it; a deferred Rollback after a successful Commit is
// a safe no-op. Only one Tx may be open on a Conn at a time.
type Tx struct {
	conn *Conn
	mode TxMode
	done bool
}

// Begin opens an IMMEDIATE transaction. Taking the write lock at
// BEGIN keeps a read-then-write sequence from hitting a busy error
// halfway through.
func (c *Conn) Begin() (*Tx, error) {
	return c.BeginMode(Immediate)
}

// BeginMode opens a transaction in the given mode.
func (c *Conn) BeginMode(mode TxMode) (*Tx, error) {
	if _, err := c.handle(); err != nil {
		return nil, err
	}
	if err := c.Execute("BEGIN " + mode.String()); err != nil {
		return nil, fmt.Errorf("sqlite.Begin: %w", err)
	}
	if c.tracer != nil {
		c.tracer.BeginTx(mode)
	}
	return &Tx{conn: c, mode: mode}, nil
}

// Execute runs a script inside the transaction. See Conn.Execute.
func (tx *Tx) Execute(sql string) error {
	if tx.done {
		return ErrTxDone
	}
	return tx.conn.Execute(sql)
}

// Prepare compiles a statement inside the transaction. See
// Conn.Prepare.
func (tx *Tx) Prepare(sql string, params ...Value) (*Stmt, error) {
	if tx.done {
		return nil, ErrTxDone
	}
	return tx.conn.Prepare(sql, params...)
}

// Commit makes the transaction's writes durable. After Commit the
// transaction is done and only a no-op Rollback remains legal.
func (tx *Tx) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	err := tx.conn.Execute("COMMIT")
	if tx.conn.tracer != nil {
		tx.conn.tracer.Commit(err)
	}
	if err != nil {
		// A failed COMMIT can leave the transaction open; release it
		// so the connection is not left holding the write lock. Some
		// failures roll the transaction back themselves, leaving
		// nothing to release.
		if !tx.conn.db.AutoCommit() {
			tx.rollback()
		}
		return fmt.Errorf("sqlite.Commit: %w", err)
	}
	return nil
}

// Rollback abandons the transaction's writes. On an already-done
// transaction it is a no-op, so it can be deferred unconditionally.
func (tx *Tx) Rollback() {
	if tx.done {
		return
	}
	tx.done = true
	tx.rollback()
}

// rollback issues the ROLLBACK. If the engine refuses it the
// connection is wedged with a lock held, which no caller can recover
// from, so it panics.
func (tx *Tx) rollback() {
	err := tx.conn.Execute("ROLLBACK")
	if tx.conn.tracer != nil {
		tx.conn.tracer.Rollback(err)
	}
	if err != nil {
		panic(fmt.Sprintf("sqlite.Rollback: %v", err))
	}
}
