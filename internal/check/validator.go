package check

import (
	"context"
	"fmt"
)

// Phase orders validators. Phases run one after the other.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseStructure
	PhaseConstraints
	PhaseContent
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseSetup, PhaseStructure, PhaseConstraints, PhaseContent}

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseStructure:
		return "structure"
	case PhaseConstraints:
		return "constraints"
	case PhaseContent:
		return "content"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Scope says whether a validator runs once per table or once per run.
type Scope int

const (
	ScopeTable Scope = iota
	ScopeRun
)

// Finding is what a validator reports when it ran to completion.
type Finding struct {
	Failed     bool
	Message    string
	Identities []string
}

// RunFunc evaluates one table, or the whole run when t is nil.
//
// A returned *audit.ConfigError marks the table as misconfigured; any other
// error means the validator could not run.
type RunFunc func(ctx context.Context, env *Env, t *Table) (Finding, error)

// Validator is a registered check.
type Validator struct {
	Name  string
	Phase Phase
	Scope Scope
	Run   RunFunc
}

// Validators returns the built-in validators in registration order.
func Validators() []Validator {
	return []Validator{
		{Name: "tables-exist", Phase: PhaseSetup, Scope: ScopeTable, Run: tablesExist},
		{Name: "revision-columns", Phase: PhaseSetup, Scope: ScopeTable, Run: revisionColumns},
		{Name: "unconfigured-audit-tables", Phase: PhaseSetup, Scope: ScopeRun, Run: unconfiguredAuditTables},
		{Name: "audit-columns", Phase: PhaseStructure, Scope: ScopeTable, Run: auditColumns},
		{Name: "remove-nullability", Phase: PhaseConstraints, Scope: ScopeTable, Run: removeNullability},
		{Name: "revision-flow", Phase: PhaseContent, Scope: ScopeTable, Run: revisionFlow},
		{Name: "reconciliation", Phase: PhaseContent, Scope: ScopeTable, Run: reconciliation},
	}
}

// Lookup returns the built-in validator with the given name.
func Lookup(name string) (Validator, bool) {
	for _, v := range Validators() {
		if v.Name == name {
			return v, true
		}
	}
	return Validator{}, false
}
