package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/revaudit/internal/record"
	"github.com/roach88/revaudit/internal/row"
)

// Diff holds, for one identity, the columns whose live value differs from
// the latest audited value. Both rows carry only the differing columns.
type Diff struct {
	Actual row.Row
	Audit  row.Row
}

// ReconcileResult is the outcome of comparing latest revisions with content.
type ReconcileResult struct {
	Table string

	// MissingAddOrModify lists identities with live content whose history is
	// empty or ends with a Remove.
	MissingAddOrModify []string

	// MissingContent lists identities whose history ends with Add or Modify
	// but which have no live content row.
	MissingContent []string

	// Diffs holds value differences keyed by identity.
	Diffs map[string]Diff
}

// Failed reports whether any inconsistency was found.
func (r ReconcileResult) Failed() bool {
	return len(r.MissingAddOrModify) > 0 || len(r.MissingContent) > 0 || len(r.Diffs) > 0
}

// Identities returns every offending identity, sorted and de-duplicated.
func (r ReconcileResult) Identities() []string {
	seen := make(map[string]struct{})
	for _, id := range r.MissingAddOrModify {
		seen[id] = struct{}{}
	}
	for _, id := range r.MissingContent {
		seen[id] = struct{}{}
	}
	for id := range r.Diffs {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Message renders the failure: offending identities first, then one line
// per differing identity listing actual and audited values per column.
func (r ReconcileResult) Message() string {
	if !r.Failed() {
		return ""
	}
	var lines []string
	if len(r.MissingAddOrModify) > 0 {
		lines = append(lines, fmt.Sprintf(
			"identities %s in %s should have an Add/Modify revision as their latest, or have none at all (content exists but the audit trail is missing or ends with Remove)",
			strings.Join(r.MissingAddOrModify, ", "), r.Table))
	}
	if len(r.MissingContent) > 0 {
		lines = append(lines, fmt.Sprintf(
			"identities %s in %s should have an Add/Modify revision as their latest, or have none at all (latest revision is Add/Modify but no content row exists)",
			strings.Join(r.MissingContent, ", "), r.Table))
	}

	ids := make([]string, 0, len(r.Diffs))
	for id := range r.Diffs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d := r.Diffs[id]
		cols := d.Actual.Columns()
		sort.Strings(cols)
		parts := make([]string, len(cols))
		for i, col := range cols {
			parts[i] = fmt.Sprintf("%s actual=%s audit=%s", col, row.Format(d.Actual[col]), row.Format(d.Audit[col]))
		}
		lines = append(lines, fmt.Sprintf("identity %s in %s differs from its latest revision: %s",
			id, r.Table, strings.Join(parts, "; ")))
	}
	return strings.Join(lines, "\n")
}

// Reconcile compares every identity's latest revision with its content row.
//
// For identities in the snapshot, a missing history or a Remove as latest
// revision is reported as missing Add/Modify; otherwise every snapshot
// column not in exclude is compared with row.Compare. For identities only
// in the history, an Add or Modify as latest revision is reported as missing
// content; a Remove is the consistent end of a deleted row.
func Reconcile(table string, h record.History, s record.Snapshot, types RevisionTypes, exclude map[string]struct{}) (ReconcileResult, error) {
	result := ReconcileResult{Table: table, Diffs: make(map[string]Diff)}

	snapIDs := s.Identities()
	sort.Strings(snapIDs)
	for _, id := range snapIDs {
		latest, ok := h.Latest(id)
		if !ok {
			result.MissingAddOrModify = append(result.MissingAddOrModify, id)
			continue
		}
		switch types.Of(latest) {
		case RevisionUnknown:
			return ReconcileResult{}, unmappedRevisionType(table, id, types)
		case RevisionRemove:
			result.MissingAddOrModify = append(result.MissingAddOrModify, id)
			continue
		}

		if d, differs := diffRows(s[id], latest, exclude); differs {
			result.Diffs[id] = d
		}
	}

	for _, id := range sortedIdentities(h) {
		if _, live := s[id]; live {
			continue
		}
		latest, ok := h.Latest(id)
		if !ok {
			continue
		}
		switch types.Of(latest) {
		case RevisionUnknown:
			return ReconcileResult{}, unmappedRevisionType(table, id, types)
		case RevisionAdd, RevisionModify:
			result.MissingContent = append(result.MissingContent, id)
		}
	}

	return result, nil
}

// diffRows compares the columns of actual against audit. Columns only
// present in audit are not looked at.
func diffRows(actual, audit row.Row, exclude map[string]struct{}) (Diff, bool) {
	d := Diff{Actual: row.Row{}, Audit: row.Row{}}
	for col, v := range actual {
		if _, skip := exclude[col]; skip {
			continue
		}
		av := audit[col]
		if row.Compare(v, av) != 0 {
			d.Actual[col] = v
			d.Audit[col] = av
		}
	}
	return d, len(d.Actual) > 0
}
