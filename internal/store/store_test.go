package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revaudit/internal/testutil"
)

// createTestStore opens a read-only store over a fixture with one audited
// table and a content-only helper table.
func createTestStore(t *testing.T) (*Store, *testutil.EnversFixture) {
	t.Helper()
	f := testutil.NewEnversFixture(t,
		`CREATE TABLE account (id INTEGER NOT NULL, tenant TEXT NOT NULL, amount INTEGER, note TEXT, PRIMARY KEY (tenant, id))`,
		`CREATE TABLE account_aud (
			id INTEGER NOT NULL,
			tenant TEXT NOT NULL,
			rev INTEGER NOT NULL REFERENCES REVINFO (REV),
			revtype INTEGER,
			amount INTEGER,
			note TEXT,
			PRIMARY KEY (tenant, id, rev)
		)`,
		`CREATE TABLE settings (k TEXT PRIMARY KEY, v TEXT)`,
	)
	s, err := Open(context.Background(), "sqlite3", f.Path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, f
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x", nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(context.Background(), "sqlite3", "/nonexistent/dir/test.db", nil)
	assert.Error(t, err)
}

func TestOpen_InvalidPostgresURL(t *testing.T) {
	_, err := Open(context.Background(), "pgx", "postgres://%zz", nil)
	assert.Error(t, err)
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("SQLite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d.Name)

	d, err = DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "pgx", d.Name)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestStore_IsReadOnly(t *testing.T) {
	s, _ := createTestStore(t)
	_, err := s.db.Exec(`INSERT INTO settings (k, v) VALUES ('a', 'b')`)
	assert.Error(t, err)
}

func TestTableExists(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	ok, err := s.TableExists(ctx, "ACCOUNT_AUD")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.TableExists(ctx, "missing_aud")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrimaryKeyColumns_KeyOrder(t *testing.T) {
	s, _ := createTestStore(t)

	cols, err := s.PrimaryKeyColumns(context.Background(), "account_aud")
	require.NoError(t, err)
	assert.Equal(t, []string{"TENANT", "ID", "REV"}, cols)
}

func TestAllAndNonNullColumns(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	all, err := s.AllColumns(ctx, "ACCOUNT")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Contains(t, all, "NOTE")

	nonNull, err := s.NonNullColumns(ctx, "ACCOUNT_AUD")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"ID": {}, "TENANT": {}, "REV": {}}, nonNull)

	missing, err := s.AllColumns(ctx, "NOPE")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestTablesWithForeignKeyTo(t *testing.T) {
	s, _ := createTestStore(t)

	tables, err := s.TablesWithForeignKeyTo(context.Background(), "revinfo")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"ACCOUNT_AUD": {}}, tables)
}

func TestTablesMatchingSuffix(t *testing.T) {
	s, _ := createTestStore(t)

	tables, err := s.TablesMatchingSuffix(context.Background(), "_aud")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"ACCOUNT_AUD": {}}, tables)
}

func TestExecuteQuery_ReturnsMetadataAndRows(t *testing.T) {
	s, f := createTestStore(t)
	f.Put("account", map[string]any{"id": 1, "tenant": "t1", "amount": 100, "note": nil})
	f.Put("account", map[string]any{"id": 2, "tenant": "t1", "amount": 5, "note": "x"})

	res, err := s.ExecuteQuery(context.Background(), "ACCOUNT", `select * from account account order by id`)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "tenant", "amount", "note"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, int64(1), res.Rows[0][0])
	assert.Nil(t, res.Rows[0][3])
}

func TestExecuteQuery_ErrorNamesTable(t *testing.T) {
	s, _ := createTestStore(t)
	_, err := s.ExecuteQuery(context.Background(), "NOPE", `select * from nope`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query NOPE")
}
