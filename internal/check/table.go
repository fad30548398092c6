package check

import (
	"context"

	"github.com/roach88/revaudit/internal/audit"
	"github.com/roach88/revaudit/internal/chain"
	"github.com/roach88/revaudit/internal/record"
)

// Table is the per-run state of one configured audit table. Key columns,
// history and snapshot are loaded on first use and shared by every
// validator of the table, including load errors.
//
// Thread-safety: a Table is used by one goroutine at a time; the runner
// hands it to a single goroutine per phase.
type Table struct {
	Index int
	Node  chain.Node

	env *Env

	keys    []string
	keysErr error
	hasKeys bool

	history    record.History
	historyErr error
	hasHistory bool

	snapshot    record.Snapshot
	snapshotErr error
	hasSnapshot bool
}

func newTable(env *Env, idx int) *Table {
	return &Table{Index: idx, Node: env.Chain.Node(idx), env: env}
}

// Name returns the audit table name.
func (t *Table) Name() string {
	return t.Node.AuditName
}

// KeyColumns returns the primary key columns of the content table. A table
// without a primary key is a configuration defect.
func (t *Table) KeyColumns(ctx context.Context) ([]string, error) {
	if t.hasKeys {
		return t.keys, t.keysErr
	}
	keys, err := t.env.Accessor.PrimaryKeyColumns(ctx, t.Node.ContentName)
	if err == nil && len(keys) == 0 {
		err = audit.NewConfigError(audit.ErrCodeMissingPrimaryKey, t.Name(),
			"content table %s has no primary key", t.Node.ContentName)
	}
	if ctx.Err() != nil {
		return nil, err
	}
	t.keys, t.keysErr, t.hasKeys = keys, err, true
	return keys, err
}

// History loads the audit rows of the table and its ancestors.
func (t *Table) History(ctx context.Context) (record.History, error) {
	if t.hasHistory {
		return t.history, t.historyErr
	}
	keys, err := t.KeyColumns(ctx)
	if err != nil {
		return nil, err
	}
	h, err := t.env.Loader.LoadHistory(ctx, t.env.Chain, t.Index, keys, t.env.RevisionIDColumn)
	if ctx.Err() != nil {
		return nil, err
	}
	t.history, t.historyErr, t.hasHistory = h, err, true
	return h, err
}

// Snapshot loads the live content of the table and its ancestors.
func (t *Table) Snapshot(ctx context.Context) (record.Snapshot, error) {
	if t.hasSnapshot {
		return t.snapshot, t.snapshotErr
	}
	keys, err := t.KeyColumns(ctx)
	if err != nil {
		return nil, err
	}
	s, err := t.env.Loader.LoadSnapshot(ctx, t.env.Chain, t.Index, keys)
	if ctx.Err() != nil {
		return nil, err
	}
	t.snapshot, t.snapshotErr, t.hasSnapshot = s, err, true
	return s, err
}

// lineageColumns returns the union of the columns of every content or
// audit table in the lineage of t.
func (t *Table) lineageColumns(ctx context.Context, auditSide bool) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, i := range t.env.Chain.Lineage(t.Index) {
		n := t.env.Chain.Node(i)
		name := n.ContentName
		if auditSide {
			name = n.AuditName
		}
		cols, err := t.env.Accessor.AllColumns(ctx, name)
		if err != nil {
			return nil, err
		}
		for c := range cols {
			out[c] = struct{}{}
		}
	}
	return out, nil
}

func (t *Table) release() {
	t.history, t.snapshot = nil, nil
	t.hasHistory, t.hasSnapshot = false, false
}
