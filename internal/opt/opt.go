// Package opt defines the common interface shared by every sequence
// optimiser in this module (the DP baseline and the outer
// branch-and-bound search), so that the coordinator and any future
// caller can treat them interchangeably.
package opt

import (
	"context"
	"time"

	"jcdp/internal/jchain"
	"jcdp/internal/jcseq"
)

// Optimizer produces an elimination sequence for chain, respecting
// ctx's cancellation.
type Optimizer interface {
	Solve(ctx context.Context, chain *jchain.Chain) (Result, error)
}

// Result is the outcome of one Optimizer run.
type Result struct {
	Sequence       *jcseq.Sequence
	Makespan       int
	FinishedInTime bool
	Duration       time.Duration
	Meta           map[string]any
}
