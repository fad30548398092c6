package store

import (
	"fmt"
	"strings"
)

// Dialect holds the vendor-specific schema queries.
//
// Each query takes the table name (compared case-insensitively) as its only
// parameter, except listTables which takes none.
type Dialect struct {
	// Name is the database/sql driver name.
	Name string

	listTables string

	// columns returns (name, not_null, pk_position) ordered by column
	// position; pk_position is 0 for non-key columns.
	columns string

	// referencing returns the names of tables with a foreign key to the
	// parameter table.
	referencing string
}

// SQLite is the dialect for github.com/mattn/go-sqlite3.
var SQLite = Dialect{
	Name: "sqlite3",
	listTables: `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`,
	columns: `
		SELECT name, "notnull", pk FROM pragma_table_info(?)
		ORDER BY cid`,
	referencing: `
		SELECT DISTINCT m.name
		FROM sqlite_master m, pragma_foreign_key_list(m.name) f
		WHERE m.type = 'table' AND upper(f."table") = upper(?)
		ORDER BY m.name`,
}

// Postgres is the dialect for github.com/jackc/pgx/v5/stdlib.
var Postgres = Dialect{
	Name: "pgx",
	listTables: `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
	columns: `
		SELECT c.column_name, c.is_nullable = 'NO', COALESCE(k.ordinal_position, 0)
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.column_name, kcu.ordinal_position
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
				AND tc.table_name = kcu.table_name
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = current_schema()
				AND upper(tc.table_name) = upper($1)
		) k ON k.column_name = c.column_name
		WHERE c.table_schema = current_schema() AND upper(c.table_name) = upper($1)
		ORDER BY c.ordinal_position`,
	referencing: `
		SELECT DISTINCT tc.table_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = current_schema()
			AND upper(ccu.table_name) = upper($1)
		ORDER BY tc.table_name`,
}

// DialectFor returns the dialect for a driver name.
// "sqlite" and "postgres" are accepted as aliases.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q: must be sqlite3 or pgx", driver)
	}
}
