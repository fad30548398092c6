package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/revaudit/internal/check"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	ConfigPath string
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain [AUDIT_TABLE]",
		Short: "Print the snapshot and history queries",
		Long: `Print the SQL the checker runs to load live content (snapshot) and
audit rows (history) for one configured audit table, or for all of them.
Only primary key metadata is read; no audit data is queried.

Example:
  revaudit explain --config revaudit.yaml PERSON_AUD`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := ""
			if len(args) == 1 {
				table = args[0]
			}
			return runExplain(cmd, opts, table)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML or CUE config (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runExplain(cmd *cobra.Command, opts *ExplainOptions, table string) error {
	ctx := commandContext(cmd.Context())
	log := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	env, closeEnv, err := openEnv(ctx, opts.ConfigPath, log)
	if err != nil {
		return err
	}
	defer closeEnv()

	var indices []int
	if table != "" {
		idx, ok := env.Chain.Lookup(table)
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("audit table %s is not configured", table))
		}
		indices = []int{idx}
	} else {
		for i := 0; i < env.Chain.Len(); i++ {
			indices = append(indices, i)
		}
	}

	statements := make([]check.Statements, 0, len(indices))
	for _, idx := range indices {
		st, err := check.Explain(ctx, env, idx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to build queries for "+env.Chain.Node(idx).AuditName, err)
		}
		statements = append(statements, st)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return formatter.Success(statements)
	}
	return formatter.Success(formatStatements(statements))
}

func formatStatements(statements []check.Statements) string {
	blocks := make([]string, len(statements))
	for i, st := range statements {
		blocks[i] = fmt.Sprintf("%s\n  key columns: %s\n  snapshot: %s\n  history:  %s",
			st.Table, strings.Join(st.KeyColumns, ", "), st.Snapshot, st.History)
	}
	return strings.Join(blocks, "\n\n")
}
