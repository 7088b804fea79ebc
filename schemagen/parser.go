// Package schemagen compiles a declarative schema into migrations and
// typed Go accessors over the sqlite package. The schema language has
// three declarations:
//
//	table user {
//		id: int,
//		email: text,
//		age: int?,
//	}
//
//	index user {
//		email: unique,
//	}
//
//	query user_by_email "select * from user where email = :email limit 1"
//
// Every table must have a non-null `id: int` column, which the
// generated Save and Delete methods key on. A trailing `?` marks a
// column nullable. Each index entry derives one single-column index,
// unique or plain. Queries are validated by preparing them against an
// in-memory database carrying the derived schema.
package schemagen

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Schema is a parsed schema file.
type Schema struct {
	Decls []*Decl `parser:"@@*"`
}

// Decl is one top-level declaration.
type Decl struct {
	Pos   lexer.Position
	Table *Table         `parser:"  'table' @@"`
	Index *Index         `parser:"| 'index' @@"`
	Query *Query         `parser:"| 'query' @@"`
}

// Table declares a table and its columns.
type Table struct {
	Pos    lexer.Position
	Name   string         `parser:"@Ident '{'"`
	Fields []*Field       `parser:"( @@ ','? )* '}'"`
}

// Field is one column declaration. A trailing ? marks it nullable.
type Field struct {
	Pos      lexer.Position
	Name     string        `parser:"@Ident ':'"`
	Type     string        `parser:"@Ident"`
	Nullable bool          `parser:"@Question?"`
}

// Index declares single-column indexes on an existing table.
type Index struct {
	Pos     lexer.Position
	Table   string         `parser:"@Ident '{'"`
	Columns []*IndexCol    `parser:"( @@ ','? )* '}'"`
}

// IndexCol is one indexed column, either unique or plain.
type IndexCol struct {
	Pos  lexer.Position
	Name string         `parser:"@Ident ':'"`
	Kind string         `parser:"@Ident"`
}

// Query declares a named SQL query exposed as a typed method.
type Query struct {
	Pos  lexer.Position
	Name string         `parser:"@Ident"`
	SQL  string         `parser:"@String"`
}

var schemaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Question", Pattern: `\?`},
	{Name: "Punct", Pattern: `[{}:,]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var schemaParser = participle.MustBuild[Schema](
	participle.Lexer(schemaLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
)

// Parse parses and validates schema source. filename is used in error
// positions only.
func Parse(filename, source string) (*Schema, error) {
	schema, err := schemaParser.ParseString(filename, source)
	if err != nil {
		return nil, err
	}
	if err := schema.validate(); err != nil {
		return nil, err
	}
	return schema, nil
}

var columnTypes = map[string]bool{
	"int":  true,
	"text": true,
	"real": true,
	"blob": true,
}

// Tables returns the declared tables in order.
func (s *Schema) Tables() []*Table {
	var tables []*Table
	for _, d := range s.Decls {
		if d.Table != nil {
			tables = append(tables, d.Table)
		}
	}
	return tables
}

// Indexes returns the declared index blocks in order.
func (s *Schema) Indexes() []*Index {
	var indexes []*Index
	for _, d := range s.Decls {
		if d.Index != nil {
			indexes = append(indexes, d.Index)
		}
	}
	return indexes
}

// Queries returns the declared queries in order.
func (s *Schema) Queries() []*Query {
	var queries []*Query
	for _, d := range s.Decls {
		if d.Query != nil {
			queries = append(queries, d.Query)
		}
	}
	return queries
}

func (t *Table) field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (s *Schema) table(name string) *Table {
	for _, t := range s.Tables() {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (s *Schema) validate() error {
	tables := map[string]bool{}
	for _, t := range s.Tables() {
		if tables[t.Name] {
			return fmt.Errorf("%s: duplicate table %q", t.Pos, t.Name)
		}
		tables[t.Name] = true
		fields := map[string]bool{}
		for _, f := range t.Fields {
			if fields[f.Name] {
				return fmt.Errorf("%s: duplicate column %q in table %q", f.Pos, f.Name, t.Name)
			}
			fields[f.Name] = true
			if !columnTypes[f.Type] {
				return fmt.Errorf("%s: unknown column type %q (want int, text, real, or blob)", f.Pos, f.Type)
			}
		}
		id := t.field("id")
		switch {
		case id == nil:
			return fmt.Errorf("%s: table %q has no id column", t.Pos, t.Name)
		case id.Type != "int" || id.Nullable:
			return fmt.Errorf("%s: table %q id column must be a non-null int", id.Pos, t.Name)
		}
	}
	for _, ix := range s.Indexes() {
		t := s.table(ix.Table)
		if t == nil {
			return fmt.Errorf("%s: index on unknown table %q", ix.Pos, ix.Table)
		}
		for _, col := range ix.Columns {
			if t.field(col.Name) == nil {
				return fmt.Errorf("%s: index on unknown column %q of table %q", col.Pos, col.Name, ix.Table)
			}
			if col.Kind != "unique" && col.Kind != "plain" {
				return fmt.Errorf("%s: index kind %q (want unique or plain)", col.Pos, col.Kind)
			}
		}
	}
	queries := map[string]bool{}
	for _, q := range s.Queries() {
		if queries[q.Name] {
			return fmt.Errorf("%s: duplicate query %q", q.Pos, q.Name)
		}
		queries[q.Name] = true
	}
	return nil
}
