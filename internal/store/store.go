package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/revaudit/internal/record"
	"github.com/roach88/revaudit/internal/row"
)

// Column describes one column of a table.
type Column struct {
	Name    string
	NotNull bool
	// PK is the 1-based position in the primary key, 0 if not a key column.
	PK int
}

// Store provides read-only schema and query access to the audited database.
//
// Thread-safety: Store is safe for concurrent use; it only wraps *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
	log     *slog.Logger
}

// Open connects to the database and applies the dialect's read-only session
// settings. driver is "sqlite3" or "pgx" (see DialectFor).
func Open(ctx context.Context, driver, dsn string, log *slog.Logger) (*Store, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	var db *sql.DB
	switch d.Name {
	case Postgres.Name:
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse database URL: %w", err)
		}
		if cfg.RuntimeParams == nil {
			cfg.RuntimeParams = make(map[string]string)
		}
		cfg.RuntimeParams["default_transaction_read_only"] = "on"
		db = stdlib.OpenDB(*cfg)
	default:
		db, err = sql.Open(d.Name, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// Pragmas are per connection; keep one so query_only always applies.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if d.Name == SQLite.Name {
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	log.Debug("database connected", "driver", d.Name)
	return &Store{db: db, dialect: d, log: log}, nil
}

// New wraps an already open database.
func New(db *sql.DB, d Dialect, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, dialect: d, log: log}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dialect returns the store's dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// applyPragmas sets the SQLite session configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA query_only = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// ExecuteQuery runs a statement and materializes every row.
// hint names the table being read and only appears in logs and errors.
func (s *Store) ExecuteQuery(ctx context.Context, hint, query string) (*record.Result, error) {
	s.log.Debug("executing query", "table", hint, "sql", query)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", hint, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", hint, err)
	}

	res := &record.Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", hint, err)
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", hint, err)
	}
	return res, nil
}

// Tables returns every base table name.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	return s.queryNames(ctx, "list tables", s.dialect.listTables)
}

// TableExists reports whether a table exists.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return false, err
	}
	want := row.Normalize(name)
	for _, t := range tables {
		if t == want {
			return true, nil
		}
	}
	return false, nil
}

// Columns returns a table's columns in declaration order.
// A missing table yields an empty slice.
func (s *Store) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.columns, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			c  Column
			pk int64
		)
		if err := rows.Scan(&c.Name, &c.NotNull, &pk); err != nil {
			return nil, fmt.Errorf("scan columns of %s: %w", table, err)
		}
		c.Name = row.Normalize(c.Name)
		c.PK = int(pk)
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %s: %w", table, err)
	}
	return cols, nil
}

// PrimaryKeyColumns returns the primary key columns in key order.
func (s *Store) PrimaryKeyColumns(ctx context.Context, table string) ([]string, error) {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	var keyed []Column
	for _, c := range cols {
		if c.PK > 0 {
			keyed = append(keyed, c)
		}
	}
	sort.Slice(keyed, func(i, j int) bool { return keyed[i].PK < keyed[j].PK })
	out := make([]string, len(keyed))
	for i, c := range keyed {
		out[i] = c.Name
	}
	return out, nil
}

// AllColumns returns the set of a table's column names.
func (s *Store) AllColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		out[c.Name] = struct{}{}
	}
	return out, nil
}

// NonNullColumns returns the set of columns declared NOT NULL.
func (s *Store) NonNullColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{})
	for _, c := range cols {
		if c.NotNull {
			out[c.Name] = struct{}{}
		}
	}
	return out, nil
}

// TablesWithForeignKeyTo returns the tables holding a foreign key to ref.
func (s *Store) TablesWithForeignKeyTo(ctx context.Context, ref string) (map[string]struct{}, error) {
	names, err := s.queryNames(ctx, "foreign keys to "+ref, s.dialect.referencing, ref)
	if err != nil {
		return nil, err
	}
	return toSet(names), nil
}

// TablesMatchingSuffix returns the tables whose name ends with suffix,
// compared case-insensitively.
func (s *Store) TablesMatchingSuffix(ctx context.Context, suffix string) (map[string]struct{}, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}
	want := row.Normalize(suffix)
	out := make(map[string]struct{})
	for _, t := range tables {
		if strings.HasSuffix(t, want) && t != want {
			out[t] = struct{}{}
		}
	}
	return out, nil
}

func (s *Store) queryNames(ctx context.Context, what, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		names = append(names, row.Normalize(name))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return names, nil
}

func toSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
