package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/revaudit/internal/record"
	"github.com/roach88/revaudit/internal/row"
)

// NullabilityResult lists, per identity, the revision ids of Remove rows
// that still carry data.
type NullabilityResult struct {
	Table     string
	Offending map[string][]string
}

// Failed reports whether any Remove row carries residual data.
func (r NullabilityResult) Failed() bool {
	return len(r.Offending) > 0
}

// Identities returns the offending identities, sorted.
func (r NullabilityResult) Identities() []string {
	ids := make([]string, 0, len(r.Offending))
	for id := range r.Offending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Message lists offending revision ids per identity.
func (r NullabilityResult) Message() string {
	if !r.Failed() {
		return ""
	}
	ids := r.Identities()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s (revisions %s)", id, strings.Join(r.Offending[id], ", "))
	}
	return fmt.Sprintf("audit table %s has Remove revisions with non-null columns for identities: %s",
		r.Table, strings.Join(parts, "; "))
}

// CheckRemoveNullability checks that Remove rows only carry values in
// exempt columns. exempt should hold the key columns, the revision type and
// revision id columns, and every column declared NOT NULL. The revision id
// of each offending row is taken from revisionIDColumn.
func CheckRemoveNullability(table string, h record.History, types RevisionTypes, exempt map[string]struct{}, revisionIDColumn string) (NullabilityResult, error) {
	result := NullabilityResult{Table: table, Offending: make(map[string][]string)}

	for _, id := range sortedIdentities(h) {
		for _, r := range h[id] {
			t := types.Of(r)
			if t == RevisionUnknown {
				return NullabilityResult{}, unmappedRevisionType(table, id, types)
			}
			if t != RevisionRemove {
				continue
			}
			if hasResidualData(r, exempt) {
				rev, _ := r.Get(revisionIDColumn)
				result.Offending[id] = append(result.Offending[id], row.Format(rev))
			}
		}
	}
	return result, nil
}

func hasResidualData(r row.Row, exempt map[string]struct{}) bool {
	for col, v := range r {
		if _, ok := exempt[col]; ok {
			continue
		}
		if v != nil {
			return true
		}
	}
	return false
}

// ExemptColumns builds the exempt set for CheckRemoveNullability from
// column lists, normalizing names.
func ExemptColumns(lists ...[]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, list := range lists {
		for _, col := range list {
			out[row.Normalize(col)] = struct{}{}
		}
	}
	return out
}
