package check

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/revaudit/internal/audit"
	"github.com/roach88/revaudit/internal/report"
)

// Runner executes validators phase by phase.
type Runner struct {
	env         *Env
	validators  []Validator
	ids         RunIDGenerator
	parallelism int
}

// Option configures a Runner.
type Option func(*Runner)

// WithValidators replaces the built-in validator list.
func WithValidators(vs ...Validator) Option {
	return func(r *Runner) { r.validators = vs }
}

// WithRunIDGenerator sets the run id source. Tests use a fixed generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(r *Runner) { r.ids = g }
}

// WithParallelism bounds how many tables are evaluated at once.
func WithParallelism(n int) Option {
	return func(r *Runner) { r.parallelism = n }
}

// NewRunner creates a runner over env with the built-in validators.
func NewRunner(env *Env, opts ...Option) *Runner {
	r := &Runner{
		env:         env,
		validators:  Validators(),
		ids:         UUIDv7Generator{},
		parallelism: env.Config.Parallelism,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.parallelism < 1 {
		r.parallelism = 1
	}
	return r
}

// Run evaluates every configured table and returns the folded report.
//
// Validator failures of any kind end up in the report. Run only returns an
// error when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	runID := r.ids.Generate()
	log := r.env.Log.With("run_id", runID)

	tables := make([]*Table, r.env.Chain.Len())
	for i := range tables {
		tables[i] = newTable(r.env, i)
	}
	// dropped maps a table index to the audit table whose defect dropped it.
	dropped := make(map[int]string)

	var outcomes []report.Outcome
	for _, phase := range Phases {
		perTable, perRun := r.partition(phase)
		if len(perTable)+len(perRun) == 0 {
			continue
		}
		log.Debug("phase started", "phase", phase.String(), "validators", len(perTable)+len(perRun))

		slots := make([][]report.Outcome, len(tables))
		defects := make([]bool, len(tables))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.parallelism)
		for i, t := range tables {
			if len(perTable) == 0 {
				break
			}
			if cause, ok := r.droppedBy(i, dropped); ok {
				slots[i] = skipAll(perTable, t, cause)
				continue
			}
			i, t := i, t
			g.Go(func() error {
				out, defect, err := r.runTable(gctx, perTable, t)
				if err != nil {
					return err
				}
				slots[i], defects[i] = out, defect
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i, out := range slots {
			outcomes = append(outcomes, out...)
			if defects[i] {
				dropped[i] = tables[i].Name()
				log.Debug("table dropped", "phase", phase.String(), "table", tables[i].Name())
			}
		}

		for _, v := range perRun {
			o, err := r.invoke(ctx, v, nil)
			if err != nil {
				return nil, err
			}
			outcomes = append(outcomes, o)
		}
		log.Debug("phase finished", "phase", phase.String())
	}

	for _, t := range tables {
		t.release()
	}

	rep := report.Fold(runID, outcomes)
	log.Info("check finished",
		"pass", rep.Summary[report.StatusPass],
		"fail", rep.Summary[report.StatusFail],
		"config_defect", rep.Summary[report.StatusConfigDefect],
		"error", rep.Summary[report.StatusError],
		"skipped", rep.Summary[report.StatusSkipped],
	)
	return rep, nil
}

func (r *Runner) partition(phase Phase) (perTable, perRun []Validator) {
	for _, v := range r.validators {
		if v.Phase != phase {
			continue
		}
		if v.Scope == ScopeRun {
			perRun = append(perRun, v)
		} else {
			perTable = append(perTable, v)
		}
	}
	return perTable, perRun
}

// droppedBy reports whether node i or one of its ancestors was dropped.
func (r *Runner) droppedBy(i int, dropped map[int]string) (string, bool) {
	for _, n := range r.env.Chain.Lineage(i) {
		if cause, ok := dropped[n]; ok {
			return cause, true
		}
	}
	return "", false
}

// runTable runs the validators of one phase on t in registration order.
// After a configuration defect the remaining validators are skipped.
func (r *Runner) runTable(ctx context.Context, vs []Validator, t *Table) ([]report.Outcome, bool, error) {
	out := make([]report.Outcome, 0, len(vs))
	for i, v := range vs {
		o, err := r.invoke(ctx, v, t)
		if err != nil {
			return nil, false, err
		}
		out = append(out, o)
		if o.Status == report.StatusConfigDefect {
			return append(out, skipAll(vs[i+1:], t, t.Name())...), true, nil
		}
	}
	return out, false, nil
}

// invoke runs one validator and classifies its result. The error return is
// reserved for cancellation.
func (r *Runner) invoke(ctx context.Context, v Validator, t *Table) (report.Outcome, error) {
	o := report.Outcome{Validator: v.Name, Phase: v.Phase.String()}
	if t != nil {
		o.Table = t.Name()
	}

	f, err := v.Run(ctx, r.env, t)
	switch {
	case err == nil && f.Failed:
		o.Status = report.StatusFail
		o.Message = f.Message
		o.Identities = f.Identities
	case err == nil:
		o.Status = report.StatusPass
	case ctx.Err() != nil:
		return report.Outcome{}, ctx.Err()
	case audit.IsConfigError(err):
		o.Status = report.StatusConfigDefect
		o.Message = err.Error()
	default:
		o.Status = report.StatusError
		o.Message = err.Error()
		r.env.Log.Warn("validator failed to run", "validator", v.Name, "table", o.Table, "error", err)
	}
	return o, nil
}

func skipAll(vs []Validator, t *Table, cause string) []report.Outcome {
	msg := "skipped after a configuration defect"
	if cause != t.Name() {
		msg = fmt.Sprintf("skipped after a configuration defect in ancestor table %s", cause)
	}
	out := make([]report.Outcome, len(vs))
	for i, v := range vs {
		out[i] = report.Outcome{
			Validator: v.Name,
			Phase:     v.Phase.String(),
			Table:     t.Name(),
			Status:    report.StatusSkipped,
			Message:   msg,
		}
	}
	return out
}
