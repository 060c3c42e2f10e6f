package coordinator

import (
	"context"
	"testing"
	"time"

	"jcdp/internal/jchain"
	"jcdp/internal/op"
)

// threeFactorChain gives every factor 1x1 dimensions (multiplication
// cost 1) and a cheaper adjoint accumulation cost of 10, so its optimal
// 3-thread makespan (10 + 1 + 1 = 12) is computable by hand.
func threeFactorChain() *jchain.Chain {
	c := jchain.New(3, true, 0)
	for j := 0; j < 3; j++ {
		for i := 0; i <= j; i++ {
			jac := c.Jac(j, i)
			jac.M, jac.N = 1, 1
		}
		diag := c.Jac(j, j)
		diag.TangentFMA = 15
		diag.AdjointFMA = 10
	}
	return c
}

func TestSolvePipelineMonotonicallyImproves(t *testing.T) {
	c := threeFactorChain()
	out, err := Solve(context.Background(), c, Config{TimeBudget: 2 * time.Second, ScheduleTimeBudget: time.Second}, 3)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	if out.ListMakespan > out.DPMakespan {
		t.Errorf("BnB+list makespan %d should never exceed the DP-seeded upper bound %d", out.ListMakespan, out.DPMakespan)
	}
	if out.BnBMakespan > out.ListMakespan {
		t.Errorf("BnB+BnB makespan %d should never exceed the BnB+list makespan %d", out.BnBMakespan, out.ListMakespan)
	}
	if out.BnBMakespan != 12 {
		t.Errorf("BnBMakespan = %d, want 12", out.BnBMakespan)
	}
	if !out.BnBFinished {
		t.Errorf("an unbounded 3-factor search should finish within its time budget")
	}
}

func TestSolveDPBnBNeverExceedsSequentialDP(t *testing.T) {
	c := threeFactorChain()
	out, err := Solve(context.Background(), c, Config{TimeBudget: 2 * time.Second, ScheduleTimeBudget: time.Second}, 3)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if out.DPBnBMakespan > out.DP.SequentialMakespan() {
		t.Errorf("scheduling the DP order onto multiple threads (%d) should never be worse than running it on one (%d)", out.DPBnBMakespan, out.DP.SequentialMakespan())
	}
}

func TestSolveSingleThreadStillFindsAFeasibleSchedule(t *testing.T) {
	c := threeFactorChain()
	out, err := Solve(context.Background(), c, Config{TimeBudget: 2 * time.Second, ScheduleTimeBudget: time.Second}, 1)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	// A single processor rules out parallelism, but every operation must
	// still end up scheduled with no thread overlap (there is only one
	// thread, so this is equivalent to being fully sequential).
	if got := out.BnB.CountAccumulations(); got == 0 {
		t.Fatalf("expected a non-empty solved sequence")
	}
	for i := 0; i < out.BnB.Len(); i++ {
		if out.BnB.At(i).Thread != 0 {
			t.Errorf("operation %d landed on thread %d, want 0 (only one usable thread)", i, out.BnB.At(i).Thread)
		}
	}
}

func TestSolveMatrixFreeOffNeverProducesElimination(t *testing.T) {
	c := jchain.New(3, false, 0)
	for j := 0; j < 3; j++ {
		for i := 0; i <= j; i++ {
			jac := c.Jac(j, i)
			jac.M, jac.N = 2, 2
		}
		diag := c.Jac(j, j)
		diag.TangentFMA, diag.AdjointFMA = 8, 6
	}

	out, err := Solve(context.Background(), c, Config{TimeBudget: 2 * time.Second, ScheduleTimeBudget: time.Second}, 3)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	for i := 0; i < out.BnB.Len(); i++ {
		if out.BnB.At(i).Action == op.Elimination {
			t.Errorf("operation %d is an ELIMINATION but matrix_free is disabled", i)
		}
	}
}
