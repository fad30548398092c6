package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/revaudit/internal/check"
	"github.com/roach88/revaudit/internal/report"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	ConfigPath string

	// RunIDs overrides the run id generator (for testing).
	// If nil, defaults to check.UUIDv7Generator.
	RunIDs check.RunIDGenerator
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return newCheckCommand(&CheckOptions{RootOptions: rootOpts})
}

func newCheckCommand(opts *CheckOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every audit validator",
		Long: `Run every audit validator against the configured database.

Validators run in phases: setup (tables and revision columns exist),
structure (audit tables record the content columns), constraints (Remove
rows hold no data) and content (revision flow and reconciliation). A table
with a configuration defect is skipped in later phases.

Exit codes:
  0  every validator passed
  1  violations or configuration defects were found
  2  the command could not run (bad config, unreachable database, query errors)

Example:
  revaudit check --config revaudit.yaml
  revaudit check --config revaudit.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML or CUE config (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	log := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(commandContext(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, closeEnv, err := openEnv(ctx, opts.ConfigPath, log)
	if err != nil {
		return err
	}
	defer closeEnv()

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = check.UUIDv7Generator{}
	}
	rep, err := check.NewRunner(env, check.WithRunIDGenerator(runIDs)).Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return WrapExitError(ExitCommandError, "check interrupted", err)
		}
		return WrapExitError(ExitCommandError, "check failed", err)
	}

	if opts.Format == "json" {
		err = rep.WriteJSON(cmd.OutOrStdout())
	} else {
		err = rep.WriteText(cmd.OutOrStdout())
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	return checkExit(rep)
}

// checkExit maps a report to the command's exit status. Query errors mean
// the check is incomplete and take precedence over violations.
func checkExit(rep *report.Report) error {
	if n := rep.Summary[report.StatusError]; n > 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("%d validators could not run", n))
	}
	if n := rep.Summary[report.StatusFail] + rep.Summary[report.StatusConfigDefect]; n > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validators reported violations or configuration defects", n))
	}
	return nil
}

