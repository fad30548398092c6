// Package store provides read-only access to the audited database.
//
// A Store answers the schema questions the checks need (table existence,
// primary keys, columns, NOT NULL declarations, foreign keys) and executes
// the chain queries built by internal/querysql, returning results with their
// column metadata.
//
// # Dialects
//
//   - sqlite3: github.com/mattn/go-sqlite3, schema from sqlite_master,
//     pragma_table_info and pragma_foreign_key_list.
//   - pgx: github.com/jackc/pgx/v5/stdlib, schema from information_schema
//     restricted to current_schema().
//
// # Read-only guarantees
//
//   - sqlite3: PRAGMA query_only = ON on a single pooled connection
//   - pgx: default_transaction_read_only = on for every session
//
// All table and column names returned by a Store are upper-cased.
package store
