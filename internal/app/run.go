package app

import (
	"context"
	"errors"
	"time"

	"cpv/internal/domain"
	"cpv/internal/logging"
)

// Runner wires the planner, executor and applicator into the single entry
// point the CLI uses.
type Runner struct {
	Planner    *Planner
	Executor   *Executor
	Applicator *Applicator
	Logger     logging.Logger
	// OnPlan is called with the finished plan before anything is written.
	OnPlan func(domain.CopyPlan)
}

// NewRunner builds a Runner whose components share fsys and logger.
func NewRunner(fsys FileSystem, logger logging.Logger) *Runner {
	return &Runner{
		Planner:    &Planner{FS: fsys, Logger: logger},
		Executor:   &Executor{FS: fsys, Logger: logger},
		Applicator: &Applicator{FS: fsys, Logger: logger},
		Logger:     logger,
	}
}

// Run plans and executes req. Only planning problems are returned as errors;
// per-operation failures and cancellation are reported through the summary.
func (r *Runner) Run(ctx context.Context, req domain.CopyRequest, reporter Reporter) (domain.CopySummary, error) {
	plan, err := r.Planner.Plan(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.CopySummary{Cancelled: true}, nil
		}
		return domain.CopySummary{}, err
	}
	if r.OnPlan != nil {
		r.OnPlan(plan)
	}
	return r.Execute(ctx, plan, reporter), nil
}

// Execute runs an already built plan and applies preserved attributes when
// the request asks for them.
func (r *Runner) Execute(ctx context.Context, plan domain.CopyPlan, reporter Reporter) domain.CopySummary {
	now := r.Executor.Now
	if now == nil {
		now = time.Now
	}
	start := now()
	summary := r.Executor.Execute(ctx, plan, reporter)
	if plan.Request.PreserveAttributes && r.Applicator != nil {
		summary.Results = r.Applicator.ApplyAll(summary.Results)
		summary.Recount()
		summary.Elapsed = now().Sub(start)
	}
	r.Logger.Verbosef("Copied %d of %d files, %d failed, %d skipped in %s",
		summary.SucceededCount, summary.TotalFiles, summary.FailedCount, summary.SkippedCount, summary.Elapsed)
	return summary
}
