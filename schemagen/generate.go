package schemagen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"regexp"
	"strings"

	"github.com/weftdb/sqlite"
)

// Migrations derives the schema's migration list: one create-table
// per table, one add-column per non-id column, one create-index per
// indexed column. The list only ever grows as a schema evolves, which
// keeps it stable under the migration runner's skip-list.
func (s *Schema) Migrations() []string {
	var migs []string
	for _, t := range s.Tables() {
		migs = append(migs, fmt.Sprintf("create table if not exists %s ( id integer primary key ) strict", t.Name))
		for _, f := range t.Fields {
			if f.Name == "id" {
				continue
			}
			migs = append(migs, fmt.Sprintf("alter table %s add column %s %s", t.Name, f.Name, sqlType(f.Type)))
		}
	}
	for _, ix := range s.Indexes() {
		for _, col := range ix.Columns {
			unique := ""
			if col.Kind == "unique" {
				unique = "unique "
			}
			migs = append(migs, fmt.Sprintf("create %sindex if not exists %s_%s_ix on %s (%s)",
				unique, ix.Table, col.Name, ix.Table, col.Name))
		}
	}
	return migs
}

func sqlType(t string) string {
	if t == "int" {
		return "integer"
	}
	return t
}

// queryShape is what preparing a query against the derived schema
// reveals about it.
type queryShape struct {
	params    []string
	cols      []string
	declTypes []string
}

// Check validates the schema against a throwaway in-memory database:
// the derived migrations must apply and every query must prepare.
func Check(s *Schema) error {
	_, err := introspect(s)
	return err
}

func introspect(s *Schema) (map[string]*queryShape, error) {
	conn, err := sqlite.Open(sqlite.MemoryPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if err := conn.Migrate(s.Migrations()); err != nil {
		return nil, fmt.Errorf("schemagen: derived migrations: %w", err)
	}
	shapes := make(map[string]*queryShape)
	for _, q := range s.Queries() {
		stmt, err := conn.Prepare(q.SQL)
		if err != nil {
			return nil, fmt.Errorf("%s: query %s: %w", q.Pos, q.Name, err)
		}
		shape := new(queryShape)
		shape.params, err = stmt.ParameterNames()
		if err == nil {
			shape.cols, err = stmt.ColumnNames()
		}
		if err == nil {
			shape.declTypes, err = stmt.ColumnDeclTypes()
		}
		stmt.Finalize()
		if err != nil {
			return nil, fmt.Errorf("%s: query %s: %w", q.Pos, q.Name, err)
		}
		for i, p := range shape.params {
			if p == "" {
				return nil, fmt.Errorf("%s: query %s: parameter %d must be named (:name, @name, or $name)", q.Pos, q.Name, i+1)
			}
		}
		seen := make(map[string]bool, len(shape.cols))
		for _, col := range shape.cols {
			if seen[col] {
				return nil, fmt.Errorf("%s: query %s: duplicate result column %q", q.Pos, q.Name, col)
			}
			seen[col] = true
		}
		shapes[q.Name] = shape
	}
	return shapes, nil
}

// Generate validates the schema and emits a gofmt-formatted Go source
// file in package pkg: the migration list, an Open that applies it,
// one struct plus Save and Delete per table, and one typed function
// per query.
func Generate(s *Schema, pkg string) ([]byte, error) {
	shapes, err := introspect(s)
	if err != nil {
		return nil, err
	}
	g := &generator{schema: s}
	g.file(pkg, shapes)
	src, err := format.Source(g.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("schemagen: emitted source does not format: %w", err)
	}
	return src, nil
}

type generator struct {
	schema *Schema
	buf    bytes.Buffer
}

func (g *generator) printf(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}

func (g *generator) file(pkg string, shapes map[string]*queryShape) {
	g.printf("// Code generated by sqlgen. DO NOT EDIT.\n\n")
	g.printf("package %s\n\n", pkg)
	g.printf("import (\n\t\"github.com/weftdb/sqlite\"\n)\n\n")

	g.printf("// Migrations is the derived schema, applied in order by Open.\n")
	g.printf("var Migrations = []string{\n")
	for _, m := range g.schema.Migrations() {
		g.printf("\t%q,\n", m)
	}
	g.printf("}\n\n")

	g.printf("// Open opens the database at path with default pragmas and brings\n")
	g.printf("// its schema up to date.\n")
	g.printf("func Open(path string) (*sqlite.Conn, error) {\n")
	g.printf("\tconn, err := sqlite.OpenConfig(path, sqlite.DefaultConfig())\n")
	g.printf("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	g.printf("\tif err := conn.Migrate(Migrations); err != nil {\n")
	g.printf("\t\tconn.Close()\n\t\treturn nil, err\n\t}\n")
	g.printf("\treturn conn, nil\n}\n\n")

	for _, t := range g.schema.Tables() {
		g.tableDecls(t)
	}
	for _, q := range g.schema.Queries() {
		g.queryDecls(q, shapes[q.Name])
	}
}

func (g *generator) tableDecls(t *Table) {
	name := exportName(t.Name)

	g.printf("// %s is one row of the %s table.\n", name, t.Name)
	g.printf("type %s struct {\n", name)
	for _, f := range t.Fields {
		g.printf("\t%s %s\n", exportName(f.Name), fieldGoType(f))
	}
	g.printf("}\n\n")

	g.printf("func scan%s(row sqlite.Row) %s {\n", name, name)
	g.printf("\tvar v %s\n", name)
	for _, f := range t.Fields {
		g.scanField("v", f)
	}
	g.printf("\treturn v\n}\n\n")

	cols := []string{"id"}
	slots := []string{"?"}
	updates := []string{"id = excluded.id"}
	for _, f := range t.Fields {
		if f.Name == "id" {
			continue
		}
		cols = append(cols, f.Name)
		slots = append(slots, "?")
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", f.Name, f.Name))
	}
	upsert := fmt.Sprintf("insert into %s (%s) values (%s) on conflict (id) do update set %s returning *",
		t.Name, strings.Join(cols, ", "), strings.Join(slots, ", "), strings.Join(updates, ", "))

	g.printf("// Save%s inserts or updates v by id and returns the stored row.\n", name)
	g.printf("// A zero ID inserts a fresh row with an engine-assigned id.\n")
	g.printf("func Save%s(conn *sqlite.Conn, v %s) (%s, error) {\n", name, name, name)
	g.printf("\tid := sqlite.IntPtr(nil)\n")
	g.printf("\tif v.ID != 0 {\n\t\tid = sqlite.Int(v.ID)\n\t}\n")
	g.printf("\tstmt, err := conn.Prepare(%q,\n\t\tid", upsert)
	for _, f := range t.Fields {
		if f.Name == "id" {
			continue
		}
		g.printf(", %s", bindExpr("v."+exportName(f.Name), f))
	}
	g.printf(")\n")
	g.printf("\tif err != nil {\n\t\treturn %s{}, err\n\t}\n", name)
	g.printf("\trow, err := stmt.One()\n")
	g.printf("\tif err != nil {\n\t\treturn %s{}, err\n\t}\n", name)
	g.printf("\treturn scan%s(row), nil\n}\n\n", name)

	g.printf("// Delete%s deletes the row with the given id and returns it.\n", name)
	g.printf("// It returns sqlite.ErrRowNotFound when no such row exists.\n")
	g.printf("func Delete%s(conn *sqlite.Conn, id int64) (%s, error) {\n", name, name)
	g.printf("\tstmt, err := conn.Prepare(%q, sqlite.Int(id))\n",
		fmt.Sprintf("delete from %s where id = ? returning *", t.Name))
	g.printf("\tif err != nil {\n\t\treturn %s{}, err\n\t}\n", name)
	g.printf("\trow, err := stmt.One()\n")
	g.printf("\tif err != nil {\n\t\treturn %s{}, err\n\t}\n", name)
	g.printf("\treturn scan%s(row), nil\n}\n\n", name)
}

// limitOne marks queries that can match at most one row. A bare
// "limit 1" only; "limit 10" is still a multi-row query.
var limitOne = regexp.MustCompile(`(?i)\blimit\s+1\b`)

func (g *generator) queryDecls(q *Query, shape *queryShape) {
	name := exportName(q.Name)
	rowType := name + "Row"

	g.printf("// %s is one result row of the %s query.\n", rowType, q.Name)
	g.printf("type %s struct {\n", rowType)
	for i, col := range shape.cols {
		g.printf("\t%s %s // %s\n", exportName(col), g.columnGoType(col), shape.declTypes[i])
	}
	g.printf("}\n\n")

	g.printf("func scan%s(row sqlite.Row) %s {\n", rowType, rowType)
	g.printf("\tvar v %s\n", rowType)
	for _, col := range shape.cols {
		if f := g.columnField(col); f != nil {
			g.scanField("v", f)
		} else {
			g.printf("\tv.%s = row[%q]\n", exportName(col), col)
		}
	}
	g.printf("\treturn v\n}\n\n")

	one := limitOne.MatchString(q.SQL)

	g.printf("// %s runs: %s\n", name, q.SQL)
	if one {
		g.printf("// It returns sqlite.ErrRowNotFound when the query matches nothing.\n")
	}
	g.printf("func %s(conn *sqlite.Conn", name)
	args := make([]string, len(shape.params))
	for i, p := range shape.params {
		args[i] = argName(p)
		g.printf(", %s %s", args[i], g.paramGoType(p))
	}
	if one {
		g.printf(") (%s, error) {\n", rowType)
	} else {
		g.printf(") ([]%s, error) {\n", rowType)
	}
	g.printf("\tstmt, err := conn.Prepare(%q", q.SQL)
	for i, p := range shape.params {
		g.printf(",\n\t\t%s", g.paramBindExpr(p, args[i]))
	}
	g.printf(")\n")
	if one {
		g.printf("\tif err != nil {\n\t\treturn %s{}, err\n\t}\n", rowType)
		g.printf("\trow, err := stmt.One()\n")
		g.printf("\tif err != nil {\n\t\treturn %s{}, err\n\t}\n", rowType)
		g.printf("\treturn scan%s(row), nil\n}\n\n", rowType)
	} else {
		g.printf("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
		g.printf("\trows, err := stmt.Rows()\n")
		g.printf("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
		g.printf("\tout := make([]%s, 0, len(rows))\n", rowType)
		g.printf("\tfor _, row := range rows {\n")
		g.printf("\t\tout = append(out, scan%s(row))\n", rowType)
		g.printf("\t}\n\treturn out, nil\n}\n\n")
	}
}

// scanField emits the assignment decoding one schema-typed column.
func (g *generator) scanField(recv string, f *Field) {
	dst := recv + "." + exportName(f.Name)
	if f.Nullable || f.Type == "blob" {
		g.printf("\t%s = row[%q].%s()\n", dst, f.Name, orNilAccessor(f.Type))
		return
	}
	g.printf("\tif x, ok := row[%q].%s(); ok {\n\t\t%s = x\n\t}\n", f.Name, asAccessor(f.Type), dst)
}

// columnField resolves a result column name to a schema field when
// exactly one table declares it.
func (g *generator) columnField(col string) *Field {
	var found *Field
	for _, t := range g.schema.Tables() {
		if f := t.field(col); f != nil {
			if found != nil && (found.Type != f.Type || found.Nullable != f.Nullable) {
				return nil
			}
			found = f
		}
	}
	return found
}

// columnGoType picks the Go type for a query result column: the
// schema's type when the name resolves to a field, otherwise
// sqlite.Value so the caller sees the dynamic tag.
func (g *generator) columnGoType(col string) string {
	if f := g.columnField(col); f != nil {
		return fieldGoType(f)
	}
	return "sqlite.Value"
}

// paramGoType picks the Go type for a query parameter by resolving
// its bare name against the schema's columns.
func (g *generator) paramGoType(param string) string {
	if f := g.columnField(bareName(param)); f != nil {
		return fieldGoType(f)
	}
	return "sqlite.Value"
}

func (g *generator) paramBindExpr(param, arg string) string {
	f := g.columnField(bareName(param))
	if f == nil {
		return arg
	}
	return bindExpr(arg, f)
}

func fieldGoType(f *Field) string {
	var typ string
	switch f.Type {
	case "int":
		typ = "int64"
	case "text":
		typ = "string"
	case "real":
		typ = "float64"
	case "blob":
		return "[]byte"
	}
	if f.Nullable {
		return "*" + typ
	}
	return typ
}

func bindExpr(arg string, f *Field) string {
	ctor := map[string]string{"int": "Int", "text": "Text", "real": "Real", "blob": "Blob"}[f.Type]
	if f.Nullable && f.Type != "blob" {
		ctor += "Ptr"
	}
	return "sqlite." + ctor + "(" + arg + ")"
}

func asAccessor(typ string) string {
	switch typ {
	case "int":
		return "AsInt"
	case "text":
		return "AsText"
	case "real":
		return "AsReal"
	}
	return "AsBlob"
}

func orNilAccessor(typ string) string {
	switch typ {
	case "int":
		return "IntOrNil"
	case "text":
		return "TextOrNil"
	case "real":
		return "RealOrNil"
	}
	return "BlobOrNil"
}

// bareName strips the :, @, or $ prefix from a parameter name.
func bareName(param string) string {
	return strings.TrimLeft(param, ":@$")
}

// exportName converts a snake_case schema name to an exported Go
// identifier, with id spelled ID.
func exportName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		if part == "id" {
			b.WriteString("ID")
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// argName converts a parameter name to an unexported Go identifier.
func argName(param string) string {
	name := bareName(param)
	parts := strings.Split(name, "_")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	out := b.String()
	if token.IsKeyword(out) {
		out += "_"
	}
	return out
}
