package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// Envers revision types.
const (
	RevAdd    = 0
	RevModify = 1
	RevRemove = 2
)

// EnversFixture is a writable SQLite database laid out the way Hibernate
// Envers writes audit data: a REVINFO table plus <TABLE>_AUD tables keyed by
// (id, REV) with a REVTYPE column.
type EnversFixture struct {
	t     *testing.T
	db    *sql.DB
	clock *RevisionClock

	// Path is the database file, suitable as a sqlite3 DSN.
	Path string
}

// NewEnversFixture creates the database with REVINFO and runs ddl.
func NewEnversFixture(t *testing.T, ddl ...string) *EnversFixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &EnversFixture{t: t, db: db, clock: NewRevisionClock(), Path: path}
	f.Exec(`CREATE TABLE REVINFO (REV INTEGER PRIMARY KEY, REVTSTMP INTEGER NOT NULL)`)
	for _, stmt := range ddl {
		f.Exec(stmt)
	}
	return f
}

// DB returns the writable connection.
func (f *EnversFixture) DB() *sql.DB {
	return f.db
}

// Exec runs a statement and fails the test on error.
func (f *EnversFixture) Exec(query string, args ...any) {
	f.t.Helper()
	if _, err := f.db.Exec(query, args...); err != nil {
		f.t.Fatalf("fixture exec %q: %v", query, err)
	}
}

// Revision records a new REVINFO row and returns its id.
func (f *EnversFixture) Revision() int64 {
	f.t.Helper()
	rev := f.clock.Next()
	f.Exec(`INSERT INTO REVINFO (REV, REVTSTMP) VALUES (?, ?)`, rev, 1700000000000+rev)
	return rev
}

// Audit writes one audit row in a new revision and returns the revision.
func (f *EnversFixture) Audit(table string, revType int, values map[string]any) int64 {
	f.t.Helper()
	rev := f.Revision()
	f.AuditAt(rev, table, revType, values)
	return rev
}

// AuditAt writes one audit row in an existing revision, for chained tables
// whose parent and child rows share a revision.
func (f *EnversFixture) AuditAt(rev int64, table string, revType int, values map[string]any) {
	f.t.Helper()
	cols := []string{"REV", "REVTYPE"}
	args := []any{rev, revType}
	for _, k := range sortedKeys(values) {
		cols = append(cols, k)
		args = append(args, values[k])
	}
	f.Insert(table, cols, args)
}

// Put inserts a content row.
func (f *EnversFixture) Put(table string, values map[string]any) {
	f.t.Helper()
	keys := sortedKeys(values)
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = values[k]
	}
	f.Insert(table, keys, args)
}

// Insert inserts one row with explicit columns.
func (f *EnversFixture) Insert(table string, cols []string, args []any) {
	f.t.Helper()
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	f.Exec(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), marks), args...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
