package sqlite

import (
	"fmt"
	"strings"
)

// DropAll deletes every index, trigger, view, and table in the
// database, in that order so nothing is dropped out from under a
// dependent object. Internal sqlite_ objects are left alone.
func (c *Conn) DropAll() (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("sqlite.DropAll: %w", err)
		}
	}()

	var indexes, tables, triggers, views []string

	stmt, err := c.Prepare(`select name, type from sqlite_schema where name not like 'sqlite_%'`)
	if err != nil {
		return err
	}
	rows, err := stmt.Rows()
	if err != nil {
		return err
	}
	for _, row := range rows {
		name, _ := row["name"].AsText()
		typ, _ := row["type"].AsText()
		switch typ {
		case "index":
			indexes = append(indexes, name)
		case "table":
			tables = append(tables, name)
		case "trigger":
			triggers = append(triggers, name)
		case "view":
			views = append(views, name)
		default:
			return fmt.Errorf("unknown sqlite schema type %q for %q", typ, name)
		}
	}

	for _, name := range indexes {
		if err := c.Execute(fmt.Sprintf("DROP INDEX %q", name)); err != nil {
			return err
		}
	}
	for _, name := range triggers {
		if err := c.Execute(fmt.Sprintf("DROP TRIGGER %q", name)); err != nil {
			return err
		}
	}
	for _, name := range views {
		if err := c.Execute(fmt.Sprintf("DROP VIEW %q", name)); err != nil {
			return err
		}
	}
	for _, name := range tables {
		if err := c.Execute(fmt.Sprintf("DROP TABLE %q", name)); err != nil {
			return err
		}
	}
	return nil
}

// CopyAll copies every schema object and all table contents from the
// srcSchema database to the dstSchema database, both previously made
// visible with ATTACH. Copying online this way lets one process swap
// a database out without asking other users to close it first.
//
// The schema names follow the SQLite PRAGMA schema-name conventions:
// https://sqlite.org/pragma.html#syntax
func (c *Conn) CopyAll(dstSchema, srcSchema string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("sqlite.CopyAll: %w", err)
		}
	}()
	if dstSchema == "" {
		dstSchema = "main"
	}
	if srcSchema == "" {
		srcSchema = "main"
	}
	if dstSchema == srcSchema {
		return fmt.Errorf("source matches destination: %q", srcSchema)
	}
	stmt, err := c.Prepare(fmt.Sprintf(
		"SELECT name, type, sql FROM %q.sqlite_schema WHERE name NOT LIKE 'sqlite_%%'", srcSchema))
	if err != nil {
		return err
	}
	rows, err := stmt.Rows()
	if err != nil {
		return err
	}
	for _, row := range rows {
		name, _ := row["name"].AsText()
		typ, _ := row["type"].AsText()
		sqlText, _ := row["sql"].AsText()
		// Whatever case or whitespace the original create statement
		// used, sqlite_schema always records it as
		// "CREATE (TABLE|VIEW|INDEX|TRIGGER) name", so the object can
		// be recreated under a different schema by rewriting the head.
		keyword := "CREATE " + strings.ToUpper(typ) + " "
		rest, ok := strings.CutPrefix(sqlText, keyword)
		if !ok {
			return fmt.Errorf("unknown sqlite schema type %q for %q", typ, name)
		}
		if err := c.Execute(fmt.Sprintf("%s%q.%s", keyword, dstSchema, rest)); err != nil {
			return err
		}
		if typ == "table" {
			copySQL := fmt.Sprintf("INSERT INTO %q.%q SELECT * FROM %q.%q",
				dstSchema, name, srcSchema, name)
			if err := c.Execute(copySQL); err != nil {
				return err
			}
		}
	}
	return nil
}
