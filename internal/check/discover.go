package check

import (
	"context"
	"sort"

	"github.com/roach88/revaudit/internal/row"
)

// Discovered is an audit table found in the database.
type Discovered struct {
	Table string `json:"table"`

	// BySuffix is set when the name ends with the configured audit suffix.
	BySuffix bool `json:"by_suffix"`

	// ByForeignKey is set when the table references the revision table.
	ByForeignKey bool `json:"by_foreign_key"`

	Configured bool `json:"configured"`
}

// Discover lists the audit tables of the database, found by name suffix or
// by a foreign key to the revision table, sorted by name. The revision
// table itself is never listed.
func Discover(ctx context.Context, env *Env) ([]Discovered, error) {
	bySuffix, err := env.Accessor.TablesMatchingSuffix(ctx, env.Config.Audit.Suffix)
	if err != nil {
		return nil, err
	}
	byFK, err := env.Accessor.TablesWithForeignKeyTo(ctx, env.Config.Audit.RevisionTable)
	if err != nil {
		return nil, err
	}

	revisionTable := row.Normalize(env.Config.Audit.RevisionTable)
	found := make(map[string]*Discovered)
	entry := func(name string) *Discovered {
		d, ok := found[name]
		if !ok {
			_, configured := env.Chain.Lookup(name)
			d = &Discovered{Table: name, Configured: configured}
			found[name] = d
		}
		return d
	}
	for name := range bySuffix {
		if name != revisionTable {
			entry(name).BySuffix = true
		}
	}
	for name := range byFK {
		if name != revisionTable {
			entry(name).ByForeignKey = true
		}
	}

	out := make([]Discovered, 0, len(found))
	for _, d := range found {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out, nil
}
