// Package record executes chain queries and groups the resulting rows by
// identity: one current row per identity for content snapshots, and an
// ordered list of audit rows per identity for histories.
package record

import (
	"context"
	"fmt"

	"github.com/roach88/revaudit/internal/chain"
	"github.com/roach88/revaudit/internal/identity"
	"github.com/roach88/revaudit/internal/querysql"
	"github.com/roach88/revaudit/internal/row"
)

// Result is a tabular query result. Columns come from the result metadata
// because ancestor joins add columns unknown until execution.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Executor runs a SQL statement. hint names the table being read and is
// only used for diagnostics.
type Executor interface {
	ExecuteQuery(ctx context.Context, hint, query string) (*Result, error)
}

// Snapshot maps identity to the current content row.
type Snapshot map[string]row.Row

// History maps identity to its audit rows in ascending revision order.
type History map[string][]row.Row

// Identities returns the snapshot's identities in no particular order.
func (s Snapshot) Identities() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Latest returns the last row of an identity's history.
func (h History) Latest(id string) (row.Row, bool) {
	rows := h[id]
	if len(rows) == 0 {
		return nil, false
	}
	return rows[len(rows)-1], true
}

// Loader materializes snapshots and histories.
type Loader struct {
	exec     Executor
	builder  *querysql.Builder
	identity identity.Encoder
}

// NewLoader creates a Loader over exec using enc to compute identities.
func NewLoader(exec Executor, enc identity.Encoder) *Loader {
	return &Loader{
		exec:     exec,
		builder:  querysql.NewBuilder(),
		identity: enc,
	}
}

// LoadSnapshot reads the current content of node idx.
//
// If the result holds several rows for one identity, the last row in result
// order wins.
func (l *Loader) LoadSnapshot(ctx context.Context, c *chain.Chain, idx int, keyColumns []string) (Snapshot, error) {
	query, err := l.builder.Snapshot(c, idx, keyColumns)
	if err != nil {
		return nil, err
	}
	res, err := l.exec.ExecuteQuery(ctx, c.Node(idx).ContentName, query)
	if err != nil {
		return nil, fmt.Errorf("load snapshot of %s: %w", c.Node(idx).ContentName, err)
	}

	snap := make(Snapshot, len(res.Rows))
	for _, r := range Rows(res) {
		snap[l.identity.Encode(keyColumns, r)] = r
	}
	return snap, nil
}

// LoadHistory reads the audit rows of node idx. Rows are appended per
// identity in result order, which the statement orders by revision id.
func (l *Loader) LoadHistory(ctx context.Context, c *chain.Chain, idx int, keyColumns []string, revisionIDColumn string) (History, error) {
	query, err := l.builder.History(c, idx, keyColumns, revisionIDColumn)
	if err != nil {
		return nil, err
	}
	res, err := l.exec.ExecuteQuery(ctx, c.Node(idx).AuditName, query)
	if err != nil {
		return nil, fmt.Errorf("load history of %s: %w", c.Node(idx).AuditName, err)
	}

	hist := make(History)
	for _, r := range Rows(res) {
		id := l.identity.Encode(keyColumns, r)
		hist[id] = append(hist[id], r)
	}
	return hist, nil
}

// Rows converts a Result into rows keyed by normalized column name.
// When a join yields the same column name twice, the first occurrence wins,
// so the queried table's own value shadows its ancestors'.
func Rows(res *Result) []row.Row {
	if res == nil {
		return nil
	}
	cols := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		cols[i] = row.Normalize(c)
	}

	out := make([]row.Row, 0, len(res.Rows))
	for _, values := range res.Rows {
		r := make(row.Row, len(cols))
		for i, col := range cols {
			if _, seen := r[col]; seen {
				continue
			}
			if i < len(values) {
				r[col] = row.Value(values[i])
			} else {
				r[col] = nil
			}
		}
		out = append(out, r)
	}
	return out
}
