package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/revaudit/internal/check"
)

// DiscoverOptions holds flags for the discover command.
type DiscoverOptions struct {
	*RootOptions
	ConfigPath string
}

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiscoverOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List audit tables found in the database",
		Long: `List the audit tables of the database, found either by the configured
name suffix or by a foreign key to the revision table, and whether each
one is covered by the configuration.

Example:
  revaudit discover --config revaudit.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML or CUE config (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runDiscover(cmd *cobra.Command, opts *DiscoverOptions) error {
	ctx := commandContext(cmd.Context())
	log := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	env, closeEnv, err := openEnv(ctx, opts.ConfigPath, log)
	if err != nil {
		return err
	}
	defer closeEnv()

	found, err := check.Discover(ctx, env)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to discover audit tables", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(found)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tCONFIGURED\tFOUND BY")
	for _, d := range found {
		var by []string
		if d.BySuffix {
			by = append(by, "suffix")
		}
		if d.ByForeignKey {
			by = append(by, "foreign key")
		}
		configured := "no"
		if d.Configured {
			configured = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Table, configured, strings.Join(by, ", "))
	}
	return tw.Flush()
}
