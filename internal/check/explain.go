package check

import (
	"context"

	"github.com/roach88/revaudit/internal/querysql"
)

// Statements are the queries the loader issues for one table.
type Statements struct {
	Table      string   `json:"table"`
	KeyColumns []string `json:"key_columns"`
	Snapshot   string   `json:"snapshot"`
	History    string   `json:"history"`
}

// Explain builds the snapshot and history statements of node idx without
// running them. Only the content table's primary key is read.
func Explain(ctx context.Context, env *Env, idx int) (Statements, error) {
	t := newTable(env, idx)
	keys, err := t.KeyColumns(ctx)
	if err != nil {
		return Statements{}, err
	}

	b := querysql.NewBuilder()
	snap, err := b.Snapshot(env.Chain, idx, keys)
	if err != nil {
		return Statements{}, err
	}
	hist, err := b.History(env.Chain, idx, keys, env.RevisionIDColumn)
	if err != nil {
		return Statements{}, err
	}
	return Statements{Table: t.Name(), KeyColumns: keys, Snapshot: snap, History: hist}, nil
}
