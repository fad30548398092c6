package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/revaudit/internal/config"
	"github.com/roach88/revaudit/internal/identity"
)

// Scenario defines one end-to-end audit check.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description"`

	// Schema holds the DDL for content and audit tables. REVINFO is
	// created by the harness.
	Schema []string `yaml:"schema"`

	// Tables is the table configuration under test.
	Tables []config.Table `yaml:"tables"`

	// Identity optionally selects the identity encoding.
	Identity string `yaml:"identity,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the report.
	Assertions []Assertion `yaml:"assertions"`

	// RunID is the fixed run id; empty means "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// Step is one unit of change. Audit rows of a step share one new revision;
// content rows and statements are applied after them.
type Step struct {
	Audit []AuditRow   `yaml:"audit,omitempty"`
	Put   []ContentRow `yaml:"put,omitempty"`
	Exec  []string     `yaml:"exec,omitempty"`
}

// AuditRow is one row of an audit table.
type AuditRow struct {
	Table string `yaml:"table"`

	// Type is add, modify, remove, or a raw numeric REVTYPE value. Empty
	// writes no REVTYPE, for child tables of a joined hierarchy.
	Type string `yaml:"type,omitempty"`

	Values map[string]any `yaml:"values"`
}

// ContentRow is one row inserted into a content table.
type ContentRow struct {
	Table  string         `yaml:"table"`
	Values map[string]any `yaml:"values"`
}

// Assertion validates the report.
type Assertion struct {
	// Type is one of outcome, summary or dropped.
	Type string `yaml:"type"`

	// Validator and Table select the outcome (outcome). An empty Table
	// selects a run-scoped outcome.
	Validator string `yaml:"validator,omitempty"`
	Table     string `yaml:"table,omitempty"`

	// Status is the expected outcome status (outcome).
	Status string `yaml:"status,omitempty"`

	// Identities, when set, must equal the outcome's identities (outcome).
	Identities []string `yaml:"identities,omitempty"`

	// MessageContains must be a substring of the message (outcome).
	MessageContains string `yaml:"message_contains,omitempty"`

	// Counts maps status names to expected counts (summary).
	Counts map[string]int `yaml:"counts,omitempty"`

	// Tables is the expected dropped table list (dropped).
	Tables []string `yaml:"tables,omitempty"`
}

// Assertion type constants.
const (
	AssertOutcome = "outcome"
	AssertSummary = "summary"
	AssertDropped = "dropped"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Schema) == 0 {
		return fmt.Errorf("schema list is required and must be non-empty")
	}
	if len(s.Tables) == 0 {
		return fmt.Errorf("tables list is required and must be non-empty")
	}
	if s.Identity != "" {
		if _, err := identity.ParseEncoding(s.Identity); err != nil {
			return err
		}
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		for j, row := range step.Audit {
			if row.Table == "" {
				return fmt.Errorf("steps[%d].audit[%d]: table is required", i, j)
			}
			if _, _, err := revisionType(row.Type); err != nil {
				return fmt.Errorf("steps[%d].audit[%d]: %w", i, j, err)
			}
		}
		for j, row := range step.Put {
			if row.Table == "" {
				return fmt.Errorf("steps[%d].put[%d]: table is required", i, j)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertOutcome:
		if a.Validator == "" {
			return fmt.Errorf("assertions[%d]: validator is required for outcome", index)
		}
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: status is required for outcome", index)
		}
	case AssertSummary:
		if len(a.Counts) == 0 {
			return fmt.Errorf("assertions[%d]: counts is required for summary", index)
		}
	case AssertDropped:
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q (valid: outcome, summary, dropped)", index, a.Type)
	}
	return nil
}
