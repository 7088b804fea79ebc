package schemagen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleSchema = `
// People and what they scored.
table user {
	id: int,
	email: text,
	age: int?,
	avatar: blob,
}

table score {
	id: int,
	user_id: int,
	points: real,
}

index user {
	email: unique,
}

index score {
	user_id: plain,
}

query user_by_email "select * from user where email = :email limit 1"
query top_scores "select points from score where points >= :points"
`

func TestParse(t *testing.T) {
	schema, err := Parse("sample.schema", sampleSchema)
	if err != nil {
		t.Fatal(err)
	}
	tables := schema.Tables()
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	user := tables[0]
	if user.Name != "user" || len(user.Fields) != 4 {
		t.Errorf("user=%q with %d fields, want user with 4", user.Name, len(user.Fields))
	}
	age := user.field("age")
	if age == nil || age.Type != "int" || !age.Nullable {
		t.Errorf("age=%+v, want nullable int", age)
	}
	if email := user.field("email"); email == nil || email.Nullable {
		t.Errorf("email=%+v, want non-null text", email)
	}
	if got := len(schema.Indexes()); got != 2 {
		t.Errorf("got %d index blocks, want 2", got)
	}
	queries := schema.Queries()
	if len(queries) != 2 {
		t.Fatalf("got %d queries, want 2", len(queries))
	}
	if q := queries[0]; q.Name != "user_by_email" || !strings.Contains(q.SQL, ":email") {
		t.Errorf("query=%+v", q)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{"missing id", `table t { name: text }`, "has no id column"},
		{"nullable id", `table t { id: int? }`, "must be a non-null int"},
		{"id wrong type", `table t { id: text }`, "must be a non-null int"},
		{"bad type", `table t { id: int, v: string }`, "unknown column type"},
		{"dup table", `table t { id: int } table t { id: int }`, "duplicate table"},
		{"dup column", `table t { id: int, v: text, v: text }`, "duplicate column"},
		{"index unknown table", `index t { v: unique }`, "unknown table"},
		{"index unknown column", `table t { id: int } index t { v: unique }`, "unknown column"},
		{"index bad kind", `table t { id: int } index t { id: sorted }`, "index kind"},
		{"dup query", `query q "select 1" query q "select 2"`, "duplicate query"},
		{"syntax", `table {`, "unexpected token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.schema", tt.source)
			if err == nil {
				t.Fatal("Parse succeeded")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err=%q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("bad.schema", "table t {\n\tid: int,\n\tv: string,\n}\n")
	if err == nil {
		t.Fatal("Parse succeeded")
	}
	if !strings.Contains(err.Error(), "bad.schema:3") {
		t.Errorf("err=%q, want position bad.schema:3", err)
	}
}

func TestMigrations(t *testing.T) {
	schema, err := Parse("sample.schema", sampleSchema)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"create table if not exists user ( id integer primary key ) strict",
		"alter table user add column email text",
		"alter table user add column age integer",
		"alter table user add column avatar blob",
		"create table if not exists score ( id integer primary key ) strict",
		"alter table score add column user_id integer",
		"alter table score add column points real",
		"create unique index if not exists user_email_ix on user (email)",
		"create index if not exists score_user_id_ix on score (user_id)",
	}
	if diff := cmp.Diff(want, schema.Migrations()); diff != "" {
		t.Errorf("migrations mismatch (-want +got):\n%s", diff)
	}
}
