// Package coordinator wires together the DP baseline, the list-schedule
// heuristic, and the two outer/inner branch-and-bound searches into the
// pipeline described by spec.md §1's data flow, matching the phase
// sequence of src/jcdp.cpp and src/jcdp_batch.cpp: DP baseline feeds an
// upper bound to BnB-outer coupled with the list scheduler, whose
// makespan in turn seeds BnB-outer coupled with the exact BnB-inner
// scheduler.
package coordinator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"jcdp/internal/dp"
	"jcdp/internal/jchain"
	"jcdp/internal/jcseq"
	"jcdp/internal/opt"
	"jcdp/internal/sa"
	"jcdp/internal/schedule"
	"jcdp/internal/seqopt"
)

// InnerScheduler selects which schedule.Scheduler the final BnB-outer
// phase couples to, in the manner of internal/sa.Neighborhood: a small
// string enum rather than a class hierarchy. It stands in for the
// dropped BnbInnerGpu variant (see DESIGN.md) as the third concrete
// Scheduler the coordinator can select between.
type InnerScheduler string

const (
	// InnerSchedulerBnB is the exact branch-and-bound scheduler (C5).
	// It is the default when InnerScheduler is left at its zero value.
	InnerSchedulerBnB InnerScheduler = "bnb"
	// InnerSchedulerAnnealing runs schedule.SimulatedAnnealing instead,
	// for instances too large for BnBInner to finish within budget.
	InnerSchedulerAnnealing InnerScheduler = "annealing"
)

// Config carries the resource limits applied to every phase of the
// pipeline. TimeBudget and ScheduleTimeBudget are each independent,
// per-phase budgets: the DP solver itself never runs a search, and only
// the BnB scheduling of its order is bounded by ScheduleTimeBudget.
type Config struct {
	TimeBudget         time.Duration
	ScheduleTimeBudget time.Duration
	Workers            int

	// InnerScheduler picks the exact-phase scheduler; "" behaves as
	// InnerSchedulerBnB.
	InnerScheduler InnerScheduler
	SAConfig       sa.Config // used only when InnerScheduler == InnerSchedulerAnnealing
	SASeed         int64
}

func (cfg Config) newInnerScheduler() func() schedule.Scheduler {
	if cfg.InnerScheduler == InnerSchedulerAnnealing {
		saCfg := cfg.SAConfig
		seed := cfg.SASeed
		return func() schedule.Scheduler {
			return schedule.NewSimulatedAnnealing(saCfg, rand.New(rand.NewSource(seed)))
		}
	}
	return func() schedule.Scheduler { return schedule.NewBnBInner() }
}

// Outcome is the result of running every phase of the pipeline for one
// processor count.
type Outcome struct {
	DP            *jcseq.Sequence // list-scheduled; Makespan() == DPMakespan
	DPMakespan    int
	DPBnBMakespan int

	List         *jcseq.Sequence
	ListMakespan int

	BnB         *jcseq.Sequence
	BnBMakespan int
	BnBFinished bool
}

// Solve runs the full pipeline against chain for the given processor
// count (0 means unconstrained, capped to count_accumulations by each
// scheduler in turn), stopping early if ctx is cancelled.
func Solve(ctx context.Context, chain *jchain.Chain, cfg Config, threads int) (Outcome, error) {
	var out Outcome

	var dpSolver opt.Optimizer = dp.Solver{}
	dpResult, err := dpSolver.Solve(ctx, chain)
	if err != nil {
		return out, fmt.Errorf("coordinator: dp phase: %w", err)
	}
	dpSeq := dpResult.Sequence
	dpThreads := schedule.UsableThreads(dpSeq, threads)

	listSched := schedule.NewPriorityList()
	dpForList := dpSeq.Clone()
	out.DPMakespan = listSched.Schedule(dpForList, dpThreads, schedule.Unlimited)

	bnbInnerForDP := schedule.NewBnBInner()
	bnbInnerForDP.SetTimeBudget(cfg.ScheduleTimeBudget)
	dpForBnB := dpSeq.Clone()
	out.DPBnBMakespan = bnbInnerForDP.Schedule(dpForBnB, dpThreads, out.DPMakespan)

	// out.DP must carry the schedule that produced DPMakespan: callers
	// (report.WriteSchedule in particular) call Makespan() on it, which
	// panics on an unscheduled sequence.
	out.DP = dpForList

	var listSolver opt.Optimizer = seqopt.Solver{
		Cfg: seqopt.Config{
			UsableThreads:      threads,
			TimeBudget:         cfg.TimeBudget,
			ScheduleTimeBudget: cfg.ScheduleTimeBudget,
			Workers:            cfg.Workers,
		},
		NewSchedule: func() schedule.Scheduler { return schedule.NewPriorityList() },
		UpperBound:  out.DPMakespan,
	}
	listResult, err := listSolver.Solve(ctx, chain)
	if err != nil {
		return out, fmt.Errorf("coordinator: bnb+list phase: %w", err)
	}
	out.List = listResult.Sequence
	out.ListMakespan = listResult.Makespan

	var bnbSolver opt.Optimizer = seqopt.Solver{
		Cfg: seqopt.Config{
			UsableThreads:      threads,
			TimeBudget:         cfg.TimeBudget,
			ScheduleTimeBudget: cfg.ScheduleTimeBudget,
			Workers:            cfg.Workers,
		},
		NewSchedule: cfg.newInnerScheduler(),
		UpperBound:  out.ListMakespan,
	}
	bnbResult, err := bnbSolver.Solve(ctx, chain)
	if err != nil {
		return out, fmt.Errorf("coordinator: bnb+bnb phase: %w", err)
	}
	out.BnB = bnbResult.Sequence
	out.BnBMakespan = bnbResult.Makespan
	out.BnBFinished = bnbResult.FinishedInTime

	return out, nil
}
