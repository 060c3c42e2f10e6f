package dp

import (
	"context"
	"time"

	"jcdp/internal/jchain"
	"jcdp/internal/opt"
)

// Solver adapts Solve to opt.Optimizer. The DP baseline never searches,
// so it finishes in time and ignores cancellation once started; ctx is
// only checked before work begins.
type Solver struct{}

func (Solver) Solve(ctx context.Context, chain *jchain.Chain) (opt.Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return opt.Result{}, err
	}
	seq := Solve(chain)
	return opt.Result{
		Sequence:       seq,
		Makespan:       seq.SequentialMakespan(),
		FinishedInTime: true,
		Duration:       time.Since(start),
	}, nil
}
