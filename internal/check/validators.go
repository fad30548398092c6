package check

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/revaudit/internal/audit"
)

func tablesExist(ctx context.Context, env *Env, t *Table) (Finding, error) {
	for _, name := range []string{t.Node.ContentName, t.Node.AuditName} {
		ok, err := env.Accessor.TableExists(ctx, name)
		if err != nil {
			return Finding{}, err
		}
		if !ok {
			return Finding{}, audit.NewConfigError(audit.ErrCodeMissingTable, t.Name(), "table %s does not exist", name)
		}
	}
	if _, err := t.KeyColumns(ctx); err != nil {
		return Finding{}, err
	}
	return Finding{}, nil
}

// revisionColumns requires the revision id column on the audit table itself.
// The revision type column may live on an ancestor's audit table, as with
// joined inheritance.
func revisionColumns(ctx context.Context, env *Env, t *Table) (Finding, error) {
	cols, err := env.Accessor.AllColumns(ctx, t.Node.AuditName)
	if err != nil {
		return Finding{}, err
	}
	if _, ok := cols[env.RevisionIDColumn]; !ok {
		return Finding{}, audit.NewConfigError(audit.ErrCodeMissingRevisionColumn, t.Name(),
			"audit table has no %s column", env.RevisionIDColumn)
	}

	lineage, err := t.lineageColumns(ctx, true)
	if err != nil {
		return Finding{}, err
	}
	if _, ok := lineage[env.Types.Column]; !ok {
		return Finding{}, audit.NewConfigError(audit.ErrCodeMissingRevisionColumn, t.Name(),
			"no audit table in its lineage has a %s column", env.Types.Column)
	}
	return Finding{}, nil
}

func unconfiguredAuditTables(ctx context.Context, env *Env, _ *Table) (Finding, error) {
	found, err := Discover(ctx, env)
	if err != nil {
		return Finding{}, err
	}
	var missing []string
	for _, d := range found {
		if !d.Configured {
			missing = append(missing, d.Table)
		}
	}
	if len(missing) == 0 {
		return Finding{}, nil
	}
	return Finding{
		Failed:  true,
		Message: fmt.Sprintf("audit tables not covered by the configuration: %s", strings.Join(missing, ", ")),
	}, nil
}

// auditColumns checks that the audit table records every column of its own
// content table that is not declared content-only.
func auditColumns(ctx context.Context, env *Env, t *Table) (Finding, error) {
	content, err := env.Accessor.AllColumns(ctx, t.Node.ContentName)
	if err != nil {
		return Finding{}, err
	}
	audited, err := env.Accessor.AllColumns(ctx, t.Node.AuditName)
	if err != nil {
		return Finding{}, err
	}

	var missing []string
	for col := range content {
		if t.Node.IsContentOnly(col) {
			continue
		}
		if _, ok := audited[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return Finding{}, nil
	}
	sort.Strings(missing)
	return Finding{
		Failed: true,
		Message: fmt.Sprintf("audit table %s does not record columns of %s: %s (declare them content-only to skip)",
			t.Name(), t.Node.ContentName, strings.Join(missing, ", ")),
	}, nil
}

func removeNullability(ctx context.Context, env *Env, t *Table) (Finding, error) {
	h, err := t.History(ctx)
	if err != nil {
		return Finding{}, err
	}
	keys, err := t.KeyColumns(ctx)
	if err != nil {
		return Finding{}, err
	}

	exempt := audit.ExemptColumns(keys, []string{env.Types.Column, env.RevisionIDColumn})
	for _, i := range env.Chain.Lineage(t.Index) {
		nonNull, err := env.Accessor.NonNullColumns(ctx, env.Chain.Node(i).AuditName)
		if err != nil {
			return Finding{}, err
		}
		for col := range nonNull {
			exempt[col] = struct{}{}
		}
	}

	res, err := audit.CheckRemoveNullability(t.Name(), h, env.Types, exempt, env.RevisionIDColumn)
	if err != nil {
		return Finding{}, err
	}
	return Finding{Failed: res.Failed(), Message: res.Message(), Identities: res.Identities()}, nil
}

func revisionFlow(ctx context.Context, env *Env, t *Table) (Finding, error) {
	h, err := t.History(ctx)
	if err != nil {
		return Finding{}, err
	}
	res, err := audit.ValidateFlow(t.Name(), h, env.Types)
	if err != nil {
		return Finding{}, err
	}
	return Finding{Failed: res.Failed(), Message: res.Message(), Identities: res.Invalid}, nil
}

// reconciliation compares live content with the latest revisions. Content
// columns that no audit table of the lineage records are left out; the
// audit-columns validator reports those.
func reconciliation(ctx context.Context, env *Env, t *Table) (Finding, error) {
	h, err := t.History(ctx)
	if err != nil {
		return Finding{}, err
	}
	s, err := t.Snapshot(ctx)
	if err != nil {
		return Finding{}, err
	}

	content, err := t.lineageColumns(ctx, false)
	if err != nil {
		return Finding{}, err
	}
	audited, err := t.lineageColumns(ctx, true)
	if err != nil {
		return Finding{}, err
	}
	exclude := make(map[string]struct{}, len(t.Node.ContentOnly))
	for col := range t.Node.ContentOnly {
		exclude[col] = struct{}{}
	}
	for col := range content {
		if _, ok := audited[col]; !ok {
			exclude[col] = struct{}{}
		}
	}

	res, err := audit.Reconcile(t.Name(), h, s, env.Types, exclude)
	if err != nil {
		return Finding{}, err
	}
	return Finding{Failed: res.Failed(), Message: res.Message(), Identities: res.Identities()}, nil
}
