package seqopt

import (
	"context"
	"time"

	"jcdp/internal/jchain"
	"jcdp/internal/opt"
	"jcdp/internal/schedule"
)

// Solver adapts the outer branch-and-bound search to opt.Optimizer,
// binding a Config and scheduler factory once and constructing a fresh
// Optimizer per chain at Solve time, the way ga.Solver/sa.Solver bind a
// Config and *rand.Rand once and accept the instance to optimise per call.
type Solver struct {
	Cfg         Config
	NewSchedule func() schedule.Scheduler
	UpperBound  int // schedule.Unlimited if unset
}

func (s Solver) Solve(ctx context.Context, chain *jchain.Chain) (opt.Result, error) {
	start := time.Now()

	o := New(chain, s.Cfg, s.NewSchedule)
	if s.UpperBound > 0 {
		o.SetUpperBound(s.UpperBound)
	}

	seq := o.Solve(ctx)
	return opt.Result{
		Sequence:       seq,
		Makespan:       seq.Makespan(),
		FinishedInTime: o.FinishedInTime(),
		Duration:       time.Since(start),
	}, nil
}
