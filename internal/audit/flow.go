package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/revaudit/internal/record"
)

// FlowResult lists identities whose revision types do not follow
// Add (Modify)* (Remove)?.
type FlowResult struct {
	Table   string
	Invalid []string
}

// Failed reports whether any identity has an invalid flow.
func (r FlowResult) Failed() bool {
	return len(r.Invalid) > 0
}

// Message describes the failure, or is empty when the flow is valid.
func (r FlowResult) Message() string {
	if !r.Failed() {
		return ""
	}
	return fmt.Sprintf("audit table %s has an invalid revision flow (expected Add, Modify*, Remove?) for %d identities: %s",
		r.Table, len(r.Invalid), strings.Join(r.Invalid, ", "))
}

// ValidateFlow scans every identity's history once.
//
// A record starts closed. Only Add opens it; Add on an open record or any
// other type on a closed one is a violation. A Remove closes the record for
// good: nothing may follow it, so an id reused after deletion is reported.
// Scanning of an identity stops at its first violation. A row with an
// unknown revision type aborts the whole table with a *ConfigError.
func ValidateFlow(table string, h record.History, types RevisionTypes) (FlowResult, error) {
	result := FlowResult{Table: table}

	for _, id := range sortedIdentities(h) {
		open, removed := false, false
		for _, r := range h[id] {
			t := types.Of(r)
			if t == RevisionUnknown {
				return FlowResult{}, unmappedRevisionType(table, id, types)
			}
			if removed || (!open && t != RevisionAdd) || (open && t == RevisionAdd) {
				result.Invalid = append(result.Invalid, id)
				break
			}
			removed = open && t == RevisionRemove
			open = !removed
		}
	}
	return result, nil
}

func sortedIdentities(h record.History) []string {
	ids := make([]string, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
