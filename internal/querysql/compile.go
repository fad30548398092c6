// Package querysql builds the SQL that reads a table together with all of
// its ancestors in a table chain, and renders queryir statements to text.
package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/revaudit/internal/chain"
	"github.com/roach88/revaudit/internal/queryir"
	"github.com/roach88/revaudit/internal/row"
)

// ErrNoKeyColumns is returned when a node with a parent is built without
// key columns: the join would have no predicate.
var ErrNoKeyColumns = errors.New("no primary key columns to join on")

// Side selects which table of a pair a statement reads.
type Side int

const (
	// Content reads the live content tables.
	Content Side = iota
	// Audit reads the audit tables.
	Audit
)

// Builder produces the snapshot and history statements for chain nodes.
//
// Thread-safety: Builder is stateless and safe for concurrent use.
type Builder struct{}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Snapshot returns the statement reading the current content of node idx
// joined with its ancestors on the key columns. No ordering is applied.
func (b *Builder) Snapshot(c *chain.Chain, idx int, keyColumns []string) (string, error) {
	q, err := b.Plan(c, idx, Content, keyColumns, "")
	if err != nil {
		return "", err
	}
	return Compile(q)
}

// History returns the statement reading the audit rows of node idx joined
// with the audit rows of its ancestors, ordered by revision id ascending.
//
// Ancestors are joined on the key columns plus the revision id column, so a
// row only meets the ancestor row written in the same revision.
func (b *Builder) History(c *chain.Chain, idx int, keyColumns []string, revisionIDColumn string) (string, error) {
	if strings.TrimSpace(revisionIDColumn) == "" {
		return "", errors.New("revision id column is required for history queries")
	}
	q, err := b.Plan(c, idx, Audit, keyColumns, revisionIDColumn)
	if err != nil {
		return "", err
	}
	return Compile(q)
}

// Plan builds the IR for node idx. revisionIDColumn is only used on the
// Audit side; when set it is added to the join and becomes the order key.
func (b *Builder) Plan(c *chain.Chain, idx int, side Side, keyColumns []string, revisionIDColumn string) (queryir.Select, error) {
	if idx < 0 || idx >= c.Len() {
		return queryir.Select{}, fmt.Errorf("chain node %d out of range", idx)
	}
	node := c.Node(idx)
	table := tableName(node, side)

	if node.HasParent() && len(keyColumns) == 0 {
		return queryir.Select{}, fmt.Errorf("%s: %w", table, ErrNoKeyColumns)
	}

	joinColumns := make([]string, 0, len(keyColumns)+1)
	for _, col := range keyColumns {
		joinColumns = append(joinColumns, row.Normalize(col))
	}
	rev := row.Normalize(revisionIDColumn)
	if side == Audit && rev != "" && !contains(joinColumns, rev) {
		joinColumns = append(joinColumns, rev)
	}

	q := queryir.Select{From: table, Alias: table}
	child := table
	for _, a := range c.Ancestors(idx) {
		ancestor := tableName(c.Node(a), side)
		on := queryir.And{Predicates: make([]queryir.Predicate, 0, len(joinColumns))}
		for _, col := range joinColumns {
			on.Predicates = append(on.Predicates, queryir.ColumnEquals{
				Left:  queryir.Column{Alias: ancestor, Name: col},
				Right: queryir.Column{Alias: child, Name: col},
			})
		}
		q.Joins = append(q.Joins, queryir.Join{Table: ancestor, Alias: ancestor, On: on})
		child = ancestor
	}

	if side == Audit && rev != "" {
		q.OrderBy = []queryir.Column{{Alias: table, Name: rev}}
	}

	if err := queryir.Validate(q); err != nil {
		return queryir.Select{}, fmt.Errorf("%s: %w", table, err)
	}
	return q, nil
}

// Compile renders a queryir statement as SQL text.
func Compile(q queryir.Query) (string, error) {
	if q == nil {
		return "", errors.New("cannot compile nil query")
	}

	switch query := q.(type) {
	case queryir.Select:
		return compileSelect(query)
	case *queryir.Select:
		return compileSelect(*query)
	default:
		return "", fmt.Errorf("unsupported query type: %T", q)
	}
}

func compileSelect(q queryir.Select) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "select * from %s %s", q.From, q.Alias)

	for _, j := range q.Joins {
		on, err := compilePredicate(j.On)
		if err != nil {
			return "", fmt.Errorf("compile join %s: %w", j.Alias, err)
		}
		fmt.Fprintf(&sb, " inner join %s %s on %s", j.Table, j.Alias, on)
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, len(q.OrderBy))
		for i, col := range q.OrderBy {
			terms[i] = column(col) + " asc"
		}
		sb.WriteString(" order by ")
		sb.WriteString(strings.Join(terms, ", "))
	}
	return sb.String(), nil
}

func compilePredicate(p queryir.Predicate) (string, error) {
	switch pred := p.(type) {
	case queryir.ColumnEquals:
		return column(pred.Left) + " = " + column(pred.Right), nil
	case queryir.And:
		if len(pred.Predicates) == 0 {
			return "", queryir.ErrEmptyJoinCondition
		}
		parts := make([]string, 0, len(pred.Predicates))
		for _, sub := range pred.Predicates {
			s, err := compilePredicate(sub)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, " and "), nil
	default:
		return "", fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func column(c queryir.Column) string {
	return c.Alias + "." + c.Name
}

func tableName(n chain.Node, side Side) string {
	if side == Audit {
		return n.AuditName
	}
	return n.ContentName
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
