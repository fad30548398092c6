// Package queryir is the small relational IR the query builder emits before
// it is rendered to SQL text.
//
// The fragment is deliberately narrow: one base table, a chain of inner
// joins whose conditions are conjunctions of column equalities, and an
// optional ascending order. That is everything needed to read a table
// together with its ancestors in a joined-inheritance chain.
//
// Query and Predicate are sealed with marker methods so the compiler in
// internal/querysql can switch exhaustively over them.
package queryir
