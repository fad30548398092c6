package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/roach88/revaudit/internal/check"
	"github.com/roach88/revaudit/internal/config"
	"github.com/roach88/revaudit/internal/report"
	"github.com/roach88/revaudit/internal/store"
	"github.com/roach88/revaudit/internal/testutil"
)

// Result is the outcome of running a scenario.
type Result struct {
	Report *report.Report

	// Failures lists assertion failures; empty means the scenario passed.
	Failures []string
}

// Passed reports whether every assertion held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Run builds the scenario's database in a fresh SQLite file, checks it and
// evaluates the assertions.
func Run(t *testing.T, s *Scenario) (*Result, error) {
	t.Helper()

	f := testutil.NewEnversFixture(t, s.Schema...)
	for _, step := range s.Steps {
		if err := applyStep(f, step); err != nil {
			return nil, err
		}
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(ctx, "sqlite3", f.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario database: %w", err)
	}
	defer st.Close()

	cfg := config.Default()
	cfg.Database.DSN = f.Path
	cfg.Tables = s.Tables
	if s.Identity != "" {
		cfg.Identity.Encoding = s.Identity
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario configuration: %w", err)
	}

	env, err := check.NewEnv(st, &cfg, logger)
	if err != nil {
		return nil, err
	}
	rep, err := check.NewRunner(env,
		check.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(s.RunID)),
	).Run(ctx)
	if err != nil {
		return nil, err
	}

	return &Result{Report: rep, Failures: EvaluateAssertions(rep, s.Assertions)}, nil
}

func applyStep(f *testutil.EnversFixture, step Step) error {
	if len(step.Audit) > 0 {
		rev := f.Revision()
		for _, row := range step.Audit {
			revType, ok, err := revisionType(row.Type)
			if err != nil {
				return err
			}
			if ok {
				f.AuditAt(rev, row.Table, revType, row.Values)
				continue
			}
			cols := []string{"REV"}
			args := []any{rev}
			for _, k := range sortedKeys(row.Values) {
				cols = append(cols, k)
				args = append(args, row.Values[k])
			}
			f.Insert(row.Table, cols, args)
		}
	}
	for _, row := range step.Put {
		f.Put(row.Table, row.Values)
	}
	for _, stmt := range step.Exec {
		f.Exec(stmt)
	}
	return nil
}

// revisionType maps a scenario revision type to its Envers value. ok is
// false when no REVTYPE should be written.
func revisionType(s string) (value int, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, false, nil
	case "add":
		return testutil.RevAdd, true, nil
	case "modify":
		return testutil.RevModify, true, nil
	case "remove":
		return testutil.RevRemove, true, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("unknown revision type %q (valid: add, modify, remove, or a number)", s)
	}
	return n, true, nil
}
