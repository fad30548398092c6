// Package config loads the audit check configuration from a YAML or CUE
// file and turns its table list into a validated chain.Chain.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/revaudit/internal/audit"
	"github.com/roach88/revaudit/internal/chain"
	"github.com/roach88/revaudit/internal/identity"
	"github.com/roach88/revaudit/internal/row"
)

// DefaultParallelism bounds how many tables are checked at once.
const DefaultParallelism = 4

// Config is the complete configuration of a check run.
type Config struct {
	Database    Database `yaml:"database" json:"database"`
	Audit       Audit    `yaml:"audit" json:"audit"`
	Identity    Identity `yaml:"identity" json:"identity"`
	Parallelism int      `yaml:"parallelism" json:"parallelism"`
	Tables      []Table  `yaml:"tables" json:"tables"`
}

// Database selects the driver and connection string.
type Database struct {
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn" json:"dsn"`
}

// Audit describes the audit table convention in use.
type Audit struct {
	Suffix             string        `yaml:"suffix" json:"suffix"`
	RevisionTable      string        `yaml:"revision_table" json:"revision_table"`
	RevisionIDColumn   string        `yaml:"revision_id_column" json:"revision_id_column"`
	RevisionTypeColumn string        `yaml:"revision_type_column" json:"revision_type_column"`
	RevisionTypes      RevisionTypes `yaml:"revision_types" json:"revision_types"`
}

// RevisionTypes holds the raw values stored for each revision type.
type RevisionTypes struct {
	Add    string `yaml:"add" json:"add"`
	Modify string `yaml:"modify" json:"modify"`
	Remove string `yaml:"remove" json:"remove"`
}

// Identity selects the identity encoding ("delimited" or "tuple").
type Identity struct {
	Encoding string `yaml:"encoding" json:"encoding"`
}

// Table is one audited content table.
type Table struct {
	Content string `yaml:"content" json:"content"`
	// Audit defaults to Content + Audit.Suffix.
	Audit string `yaml:"audit,omitempty" json:"audit,omitempty"`
	// Parent names the parent entry's content table.
	Parent             string   `yaml:"parent,omitempty" json:"parent,omitempty"`
	ContentOnlyColumns []string `yaml:"content_only_columns,omitempty" json:"content_only_columns,omitempty"`
}

// Default returns a configuration with the Hibernate Envers conventions.
func Default() Config {
	return Config{
		Database: Database{Driver: "sqlite3"},
		Audit: Audit{
			Suffix:             "_AUD",
			RevisionTable:      "REVINFO",
			RevisionIDColumn:   "REV",
			RevisionTypeColumn: audit.EnversRevisionTypes.Column,
			RevisionTypes: RevisionTypes{
				Add:    audit.EnversRevisionTypes.Add,
				Modify: audit.EnversRevisionTypes.Modify,
				Remove: audit.EnversRevisionTypes.Remove,
			},
		},
		Identity:    Identity{Encoding: string(identity.Delimited)},
		Parallelism: DefaultParallelism,
	}
}

// Load reads a configuration file. Files ending in .cue are evaluated with
// CUE; anything else is parsed as YAML with unknown fields rejected.
// Defaults are applied and the result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		cfg, err = parseCUE(path, data)
	} else {
		cfg, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseYAML(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

func parseCUE(path string, data []byte) (Config, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return Config{}, fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("CUE config is not concrete: %w", err)
	}
	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode CUE: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields from Default and derives missing audit
// table names from the suffix.
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.Audit.Suffix == "" {
		c.Audit.Suffix = d.Audit.Suffix
	}
	if c.Audit.RevisionTable == "" {
		c.Audit.RevisionTable = d.Audit.RevisionTable
	}
	if c.Audit.RevisionIDColumn == "" {
		c.Audit.RevisionIDColumn = d.Audit.RevisionIDColumn
	}
	if c.Audit.RevisionTypeColumn == "" {
		c.Audit.RevisionTypeColumn = d.Audit.RevisionTypeColumn
	}
	if c.Audit.RevisionTypes == (RevisionTypes{}) {
		c.Audit.RevisionTypes = d.Audit.RevisionTypes
	}
	if c.Identity.Encoding == "" {
		c.Identity.Encoding = d.Identity.Encoding
	}
	if c.Parallelism == 0 {
		c.Parallelism = d.Parallelism
	}
	for i := range c.Tables {
		if c.Tables[i].Audit == "" && c.Tables[i].Content != "" {
			c.Tables[i].Audit = c.Tables[i].Content + c.Audit.Suffix
		}
	}
}

// Validate checks required fields and value ranges. The table chain itself
// is validated by Chain.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if _, err := identity.ParseEncoding(c.Identity.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("identity.encoding: %w", err))
	}
	if c.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism))
	}
	rt := c.Audit.RevisionTypes
	if rt.Add == "" || rt.Modify == "" || rt.Remove == "" {
		errs = append(errs, errors.New("audit.revision_types must set add, modify and remove"))
	} else if rt.Add == rt.Modify || rt.Add == rt.Remove || rt.Modify == rt.Remove {
		errs = append(errs, errors.New("audit.revision_types values must be distinct"))
	}
	if len(c.Tables) == 0 {
		errs = append(errs, errors.New("at least one table is required"))
	}
	for i, t := range c.Tables {
		if strings.TrimSpace(t.Content) == "" {
			errs = append(errs, fmt.Errorf("tables[%d].content is required", i))
		}
	}
	return errors.Join(errs...)
}

// RevisionTypes returns the revision type mapping for the validators.
func (c *Config) RevisionTypes() audit.RevisionTypes {
	return audit.RevisionTypes{
		Column: row.Normalize(c.Audit.RevisionTypeColumn),
		Add:    c.Audit.RevisionTypes.Add,
		Modify: c.Audit.RevisionTypes.Modify,
		Remove: c.Audit.RevisionTypes.Remove,
	}
}

// Encoder returns the configured identity encoder.
func (c *Config) Encoder() identity.Encoder {
	enc, err := identity.ParseEncoding(c.Identity.Encoding)
	if err != nil {
		return identity.Encoder{}
	}
	return identity.Encoder{Encoding: enc}
}

// Chain links the configured tables. Parents are resolved by content name.
func (c *Config) Chain() (*chain.Chain, error) {
	auditByContent := make(map[string]string, len(c.Tables))
	for _, t := range c.Tables {
		auditByContent[row.Normalize(t.Content)] = t.Audit
	}

	defs := make([]chain.Def, len(c.Tables))
	for i, t := range c.Tables {
		def := chain.Def{
			AuditName:          t.Audit,
			ContentName:        t.Content,
			ContentOnlyColumns: t.ContentOnlyColumns,
		}
		if t.Parent != "" {
			parent, ok := auditByContent[row.Normalize(t.Parent)]
			if !ok {
				return nil, fmt.Errorf("table %s: parent %s is not a configured content table", t.Content, t.Parent)
			}
			def.Parent = parent
		}
		defs[i] = def
	}
	return chain.New(defs)
}
