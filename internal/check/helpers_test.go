package check

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/revaudit/internal/config"
	"github.com/roach88/revaudit/internal/store"
	"github.com/roach88/revaudit/internal/testutil"
)

// Joined inheritance: PERSON extends ENTITY, and only the root audit table
// carries REVTYPE.
var chainDDL = []string{
	`CREATE TABLE ENTITY (ID INTEGER PRIMARY KEY, CREATED TEXT)`,
	`CREATE TABLE ENTITY_AUD (
		ID INTEGER NOT NULL,
		REV INTEGER NOT NULL REFERENCES REVINFO (REV),
		REVTYPE INTEGER,
		CREATED TEXT,
		PRIMARY KEY (ID, REV)
	)`,
	`CREATE TABLE PERSON (ID INTEGER PRIMARY KEY, NAME TEXT, CACHE TEXT)`,
	`CREATE TABLE PERSON_AUD (
		ID INTEGER NOT NULL,
		REV INTEGER NOT NULL REFERENCES REVINFO (REV),
		NAME TEXT,
		PRIMARY KEY (ID, REV)
	)`,
}

var chainTables = []config.Table{
	{Content: "ENTITY", Audit: "ENTITY_AUD"},
	{Content: "PERSON", Audit: "PERSON_AUD", Parent: "ENTITY", ContentOnlyColumns: []string{"CACHE"}},
}

// addPerson writes a person in one revision, audited in both tables.
func addPerson(f *testutil.EnversFixture, id int64, name string) int64 {
	rev := f.Audit("ENTITY_AUD", testutil.RevAdd, map[string]any{"ID": id, "CREATED": "2024-01-01"})
	f.Insert("PERSON_AUD", []string{"ID", "REV", "NAME"}, []any{id, rev, name})
	f.Put("ENTITY", map[string]any{"ID": id, "CREATED": "2024-01-01"})
	f.Put("PERSON", map[string]any{"ID": id, "NAME": name, "CACHE": "warm"})
	return rev
}

// renamePerson records a Modify revision and updates the content row.
func renamePerson(f *testutil.EnversFixture, id int64, name string) int64 {
	rev := f.Audit("ENTITY_AUD", testutil.RevModify, map[string]any{"ID": id, "CREATED": "2024-01-01"})
	f.Insert("PERSON_AUD", []string{"ID", "REV", "NAME"}, []any{id, rev, name})
	f.Exec(`UPDATE PERSON SET NAME = ? WHERE ID = ?`, name, id)
	return rev
}

func newEnv(t *testing.T, f *testutil.EnversFixture, tables ...config.Table) *Env {
	t.Helper()
	s, err := store.Open(context.Background(), "sqlite3", f.Path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return newEnvWith(t, s, f, tables...)
}

func newEnvWith(t *testing.T, acc Accessor, f *testutil.EnversFixture, tables ...config.Table) *Env {
	t.Helper()
	cfg := config.Default()
	cfg.Database.DSN = f.Path
	cfg.Tables = tables
	require.NoError(t, cfg.Validate())

	env, err := NewEnv(acc, &cfg, nil)
	require.NoError(t, err)
	return env
}

func runReport(t *testing.T, env *Env, opts ...Option) []string {
	t.Helper()
	opts = append([]Option{WithRunIDGenerator(testutil.NewFixedRunIDGenerator(""))}, opts...)
	rep, err := NewRunner(env, opts...).Run(context.Background())
	require.NoError(t, err)

	lines := make([]string, len(rep.Outcomes))
	for i, o := range rep.Outcomes {
		lines[i] = string(o.Status) + " " + o.Phase + "/" + o.Validator + " " + o.Table
	}
	return lines
}
