package check

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/revaudit/internal/audit"
	"github.com/roach88/revaudit/internal/chain"
	"github.com/roach88/revaudit/internal/config"
	"github.com/roach88/revaudit/internal/record"
	"github.com/roach88/revaudit/internal/row"
)

// Accessor is the read-only view of the audited database the validators
// need. *store.Store implements it.
type Accessor interface {
	record.Executor
	TableExists(ctx context.Context, name string) (bool, error)
	PrimaryKeyColumns(ctx context.Context, table string) ([]string, error)
	AllColumns(ctx context.Context, table string) (map[string]struct{}, error)
	NonNullColumns(ctx context.Context, table string) (map[string]struct{}, error)
	TablesWithForeignKeyTo(ctx context.Context, ref string) (map[string]struct{}, error)
	TablesMatchingSuffix(ctx context.Context, suffix string) (map[string]struct{}, error)
}

// Env is everything a validator may read. It is shared by all goroutines
// of a run and never mutated after NewEnv.
type Env struct {
	Accessor Accessor
	Config   *config.Config
	Chain    *chain.Chain
	Types    audit.RevisionTypes
	Loader   *record.Loader
	Log      *slog.Logger

	// RevisionIDColumn is the normalized revision id column name.
	RevisionIDColumn string
}

// NewEnv links the configured tables and prepares the record loader.
func NewEnv(acc Accessor, cfg *config.Config, log *slog.Logger) (*Env, error) {
	if log == nil {
		log = slog.Default()
	}
	c, err := cfg.Chain()
	if err != nil {
		return nil, fmt.Errorf("invalid table configuration: %w", err)
	}
	return &Env{
		Accessor:         acc,
		Config:           cfg,
		Chain:            c,
		Types:            cfg.RevisionTypes(),
		Loader:           record.NewLoader(acc, cfg.Encoder()),
		Log:              log,
		RevisionIDColumn: row.Normalize(cfg.Audit.RevisionIDColumn),
	}, nil
}
