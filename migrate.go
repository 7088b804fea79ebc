package sqlite

import (
	"errors"
	"fmt"
)

// ledgerDDL creates the table recording every migration already
// applied, keyed by its exact SQL text.
const ledgerDDL = `create table if not exists migrations (sql text unique not null) strict`

// Migrate applies the given statements in order inside one IMMEDIATE
// transaction, recording each in the migrations ledger. A statement
// whose exact text is already in the ledger is skipped, so Migrate is
// idempotent and a schema can evolve by appending statements.
//
// A column addition that was applied before the ledger existed shows
// up as a duplicate column error; Migrate treats that as already
// applied and records it.
func (c *Conn) Migrate(migrations []string) error {
	if _, err := c.handle(); err != nil {
		return err
	}
	tx, err := c.Begin()
	if err != nil {
		return fmt.Errorf("sqlite.Migrate: %w", err)
	}
	defer tx.Rollback()

	if err := tx.Execute(ledgerDDL); err != nil {
		return fmt.Errorf("sqlite.Migrate: create ledger: %w", err)
	}
	applied, err := appliedMigrations(tx)
	if err != nil {
		return fmt.Errorf("sqlite.Migrate: read ledger: %w", err)
	}
	for _, m := range migrations {
		if applied[m] {
			continue
		}
		if err := tx.Execute(m); err != nil {
			var dup *DuplicateColumnError
			if !errors.As(err, &dup) {
				return fmt.Errorf("sqlite.Migrate: %s: %w", m, err)
			}
		}
		if err := recordMigration(tx, m); err != nil {
			return fmt.Errorf("sqlite.Migrate: record %s: %w", m, err)
		}
	}
	return tx.Commit()
}

func appliedMigrations(tx *Tx) (map[string]bool, error) {
	stmt, err := tx.Prepare(`select sql from migrations`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.Rows()
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(rows))
	for _, row := range rows {
		if s, ok := row["sql"].AsText(); ok {
			applied[s] = true
		}
	}
	return applied, nil
}

func recordMigration(tx *Tx, m string) error {
	stmt, err := tx.Prepare(
		`insert into migrations (sql) values (?) on conflict (sql) do update set sql = excluded.sql`,
		Text(m))
	if err != nil {
		return err
	}
	_, _, err = stmt.Result()
	return err
}
