package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/revaudit/internal/report"
)

// EvaluateAssertions checks every assertion against the report and returns
// one message per failed assertion.
func EvaluateAssertions(rep *report.Report, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertOutcome:
			err = assertOutcome(rep, a)
		case AssertSummary:
			err = assertSummary(rep, a)
		case AssertDropped:
			err = assertDropped(rep, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return failures
}

func assertOutcome(rep *report.Report, a Assertion) error {
	for _, o := range rep.Outcomes {
		if o.Validator != a.Validator || o.Table != a.Table {
			continue
		}
		if string(o.Status) != a.Status {
			return fmt.Errorf("%s on %q: expected status %s, got %s (%s)", a.Validator, a.Table, a.Status, o.Status, o.Message)
		}
		if a.Identities != nil && !slices.Equal(o.Identities, a.Identities) {
			return fmt.Errorf("%s on %q: expected identities %v, got %v", a.Validator, a.Table, a.Identities, o.Identities)
		}
		if a.MessageContains != "" && !strings.Contains(o.Message, a.MessageContains) {
			return fmt.Errorf("%s on %q: message %q does not contain %q", a.Validator, a.Table, o.Message, a.MessageContains)
		}
		return nil
	}
	return fmt.Errorf("no outcome for %s on %q", a.Validator, a.Table)
}

func assertSummary(rep *report.Report, a Assertion) error {
	var mismatches []string
	for _, status := range sortedKeys(a.Counts) {
		want := a.Counts[status]
		if got := rep.Summary[report.Status(status)]; got != want {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %d, got %d", status, want, got))
		}
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%s", strings.Join(mismatches, "; "))
	}
	return nil
}

func assertDropped(rep *report.Report, a Assertion) error {
	want := append([]string(nil), a.Tables...)
	sort.Strings(want)
	if len(want) == 0 && len(rep.Dropped) == 0 {
		return nil
	}
	if !slices.Equal(rep.Dropped, want) {
		return fmt.Errorf("expected dropped tables %v, got %v", want, rep.Dropped)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
