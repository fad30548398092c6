// Package report folds validator outcomes into a run report and renders it
// as text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Status is the verdict of one validator invocation.
type Status string

const (
	// StatusPass means no violation was found.
	StatusPass Status = "pass"
	// StatusFail means consistency violations were found.
	StatusFail Status = "fail"
	// StatusConfigDefect means the table is misconfigured; it is dropped
	// from later phases.
	StatusConfigDefect Status = "config-defect"
	// StatusError means the validator could not run (database failure).
	StatusError Status = "error"
	// StatusSkipped means the table was dropped by an earlier phase.
	StatusSkipped Status = "skipped"
)

// statusOrder fixes the order of summary lines.
var statusOrder = []Status{StatusPass, StatusFail, StatusConfigDefect, StatusError, StatusSkipped}

// Outcome is the immutable result of one validator on one table (or on the
// whole run when Table is empty).
type Outcome struct {
	Validator  string   `json:"validator"`
	Phase      string   `json:"phase"`
	Table      string   `json:"table,omitempty"`
	Status     Status   `json:"status"`
	Message    string   `json:"message,omitempty"`
	Identities []string `json:"identities,omitempty"`
}

// Report is the folded result of a run.
type Report struct {
	RunID    string         `json:"run_id"`
	Outcomes []Outcome      `json:"outcomes"`
	Dropped  []string       `json:"dropped_tables,omitempty"`
	Summary  map[Status]int `json:"summary"`
}

// Fold builds a report from outcomes in the given order. It is the single
// aggregation step of a run; validators never share counters.
func Fold(runID string, outcomes []Outcome) *Report {
	r := &Report{
		RunID:    runID,
		Outcomes: make([]Outcome, 0, len(outcomes)),
		Summary:  make(map[Status]int),
	}
	dropped := make(map[string]struct{})
	for _, o := range outcomes {
		r.Outcomes = append(r.Outcomes, o)
		r.Summary[o.Status]++
		if o.Status == StatusConfigDefect && o.Table != "" {
			dropped[o.Table] = struct{}{}
		}
	}
	for t := range dropped {
		r.Dropped = append(r.Dropped, t)
	}
	sort.Strings(r.Dropped)
	return r
}

// Failed reports whether anything other than pass or skipped was recorded.
func (r *Report) Failed() bool {
	return r.Summary[StatusFail]+r.Summary[StatusConfigDefect]+r.Summary[StatusError] > 0
}

// WriteText renders a human-readable report.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s\n", r.RunID)
	for _, o := range r.Outcomes {
		scope := o.Table
		if scope == "" {
			scope = "*"
		}
		fmt.Fprintf(&b, "[%s] %s/%s %s\n", strings.ToUpper(string(o.Status)), o.Phase, o.Validator, scope)
		if o.Message != "" {
			for _, line := range strings.Split(o.Message, "\n") {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
	}
	if len(r.Dropped) > 0 {
		fmt.Fprintf(&b, "Dropped tables: %s\n", strings.Join(r.Dropped, ", "))
	}
	parts := make([]string, 0, len(statusOrder))
	for _, s := range statusOrder {
		parts = append(parts, fmt.Sprintf("%s=%d", s, r.Summary[s]))
	}
	fmt.Fprintf(&b, "Summary: %s\n", strings.Join(parts, " "))

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
