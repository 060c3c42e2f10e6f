// Package seqopt implements the outer branch-and-bound search (C4) over
// elimination sequences for a Jacobian chain. Phase A commits to a number
// of ACCUMULATION operations and picks their mode; phase B completes each
// partial sequence with MULTIPLICATION/ELIMINATION operations down to a
// single accumulated range, coupling to a schedule.Scheduler at every
// leaf to turn the sequence into a makespan.
package seqopt

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"jcdp/internal/jchain"
	"jcdp/internal/jcseq"
	"jcdp/internal/op"
	"jcdp/internal/schedule"
	"jcdp/internal/taskpool"
)

// Config controls the outer search's resource limits. A zero Config is
// usable: threads are capped only by each leaf's accumulation count, the
// task pool uses NumCPU workers, and there is no deadline.
type Config struct {
	UsableThreads      int
	TimeBudget         time.Duration // wall-clock budget for the whole search; 0 disables it
	ScheduleTimeBudget time.Duration // per-leaf budget handed to the scheduler
	Workers            int           // task pool size; 0 defaults to NumCPU
}

// Optimizer owns one search over one chain. It is not safe to reuse
// across chains; construct a fresh Optimizer per chain.
type Optimizer struct {
	chain       *jchain.Chain
	cfg         Config
	newSchedule func() schedule.Scheduler

	pool *taskpool.Pool
	ctx  context.Context

	bestAtomic atomic.Int64 // fast unlocked reads for pruning checks
	bestMu     sync.Mutex
	bestValue  int
	bestSeq    *jcseq.Sequence
	upperBound int

	deadline       time.Time
	noDeadline     bool
	deadlineMissed atomic.Bool

	leaves         atomic.Int64
	improvements   atomic.Int64
	prunedPerDepth []atomic.Int64
}

// New returns an Optimizer for chain. newSchedule must return a fresh,
// unshared Scheduler on every call: search branches run concurrently and
// each needs its own scheduler state (in particular its own time budget
// latch).
func New(chain *jchain.Chain, cfg Config, newSchedule func() schedule.Scheduler) *Optimizer {
	o := &Optimizer{
		chain:          chain,
		cfg:            cfg,
		newSchedule:    newSchedule,
		upperBound:     schedule.Unlimited,
		prunedPerDepth: make([]atomic.Int64, chain.Length()+2),
	}
	return o
}

// SetUpperBound seeds the search with a known-feasible makespan, e.g.
// from the DP baseline or a prior priority-list run. Branches whose
// lower bound exceeds it are pruned without descending further.
func (o *Optimizer) SetUpperBound(u int) {
	o.upperBound = u
}

func (o *Optimizer) remaining() bool {
	if o.deadlineMissed.Load() {
		return false
	}
	if o.ctx != nil && o.ctx.Err() != nil {
		o.deadlineMissed.Store(true)
		return false
	}
	if o.noDeadline {
		return true
	}
	if time.Now().After(o.deadline) {
		o.deadlineMissed.Store(true)
		return false
	}
	return true
}

// FinishedInTime reports whether the search completed before its
// deadline elapsed (always true when no deadline was set).
func (o *Optimizer) FinishedInTime() bool {
	return !o.deadlineMissed.Load()
}

// Solve runs the full two-phase search and returns the best elimination
// sequence found, fully scheduled. It blocks until every search branch
// has either exhausted itself, been pruned, run out of time budget, or
// ctx has been cancelled.
func (o *Optimizer) Solve(ctx context.Context) *jcseq.Sequence {
	o.ctx = ctx
	o.bestSeq = jcseq.MaxSentinel()
	sentinel := o.bestSeq.Makespan()
	o.bestValue = sentinel
	o.bestAtomic.Store(int64(sentinel))

	if o.cfg.TimeBudget > 0 {
		o.deadline = time.Now().Add(o.cfg.TimeBudget)
	} else {
		o.noDeadline = true
	}

	o.pool = taskpool.New(o.cfg.Workers)

	n := o.chain.Length()
	minAccumulations := 1
	if !o.chain.MatrixFree {
		minAccumulations = n
	}

	for accumulations := minAccumulations; accumulations <= n; accumulations++ {
		if !o.remaining() {
			break
		}
		seq := jcseq.New()
		chain := o.chain.Clone()
		o.addAccumulation(seq, chain, &candidateList{}, accumulations, 0)
	}

	o.pool.Wait()
	return o.bestSeq
}

// addAccumulation is phase A: it chooses, for each of accsRemaining
// remaining factors starting at j, whether and in which mode to
// accumulate it, then hands the fixed set of accumulations to phase B.
func (o *Optimizer) addAccumulation(seq *jcseq.Sequence, chain *jchain.Chain, elims *candidateList, accsRemaining, j int) {
	if !o.remaining() {
		return
	}

	if accsRemaining == 0 {
		leafSeq := seq.Clone()
		leafChain := chain.Clone()
		leafElims := elims.clone()
		o.pool.Go(func() {
			o.addElimination(leafSeq, leafChain, leafElims, 0)
		})
		return
	}

	n := chain.Length()
	// Not enough factors left to reach accsRemaining accumulations.
	if n-j < accsRemaining {
		return
	}

	for ; j < n; j++ {
		operation := cheapestAccumulation(chain, j)
		if !chain.Apply(operation) {
			continue
		}

		row := pushPossibleEliminations(chain, operation.J, operation.I)
		elims.push(row)
		seq.PushBack(operation)

		o.addAccumulation(seq, chain, elims, accsRemaining-1, j+1)

		seq.PopBack()
		elims.pop()
		chain.Revert(operation)
	}
}

// addElimination is phase B: it repeatedly consumes one of the pending
// candidates (a MULTIPLICATION or a matrix-free ELIMINATION) until the
// whole chain [0, n-1] is accumulated, at which point the sequence is
// complete and handed to a scheduler.
func (o *Optimizer) addElimination(seq *jcseq.Sequence, chain *jchain.Chain, elims *candidateList, from int) {
	if !o.remaining() {
		return
	}

	n := chain.Length()
	if chain.Jac(n-1, 0).IsAccumulated {
		o.scheduleLeaf(seq)
		return
	}

	lowerBound := seq.CriticalPath()
	best := int(o.bestAtomic.Load())
	if lowerBound >= best || lowerBound > o.upperBound {
		o.prunedPerDepth[seq.Len()].Add(1)
		return
	}

	for idx := from; idx < len(elims.rows); idx++ {
		row := elims.rows[idx]
		for _, candidate := range [2]*op.Operation{row.Left, row.Right} {
			if candidate == nil {
				continue
			}
			if !chain.Apply(*candidate) {
				continue
			}

			next := pushPossibleEliminations(chain, candidate.J, candidate.I)
			elims.push(next)
			seq.PushBack(*candidate)

			o.addElimination(seq, chain, elims, idx+1)

			seq.PopBack()
			elims.pop()
			chain.Revert(*candidate)
		}
	}
}

// scheduleLeaf schedules a copy of the completed sequence, never the
// live DFS sequence itself: both schedulers write StartTime/IsScheduled
// back into whatever they're given, and seq keeps being mutated by
// PushBack/PopBack as the search backtracks past this leaf. Scheduling
// seq in place would leave stale StartTime values on the shared prefix
// for every sibling leaf visited afterwards, inflating their
// CriticalPath lower bound.
func (o *Optimizer) scheduleLeaf(seq *jcseq.Sequence) {
	leaf := seq.Clone()

	sched := o.newSchedule()
	sched.SetTimeBudget(o.cfg.ScheduleTimeBudget)

	threads := schedule.UsableThreads(leaf, o.cfg.UsableThreads)
	currentBest := int(o.bestAtomic.Load())
	makespan := sched.Schedule(leaf, threads, currentBest)

	if !sched.FinishedInTime() {
		o.deadlineMissed.Store(true)
	}
	o.leaves.Add(1)

	o.bestMu.Lock()
	if makespan < o.bestValue {
		o.bestValue = makespan
		o.bestSeq = leaf
		o.bestAtomic.Store(int64(makespan))
		o.improvements.Add(1)
	}
	o.bestMu.Unlock()
}

// PrintStats writes leaf, improvement, and per-depth pruning counters to
// w, for diagnostic reporting alongside a solved sequence.
func (o *Optimizer) PrintStats(w io.Writer) {
	fmt.Fprintf(w, "leaves visited:      %d\n", o.leaves.Load())
	fmt.Fprintf(w, "best-makespan updates: %d\n", o.improvements.Load())
	fmt.Fprintln(w, "branches pruned by depth:")
	for depth := range o.prunedPerDepth {
		if n := o.prunedPerDepth[depth].Load(); n > 0 {
			fmt.Fprintf(w, "  depth %2d: %d\n", depth, n)
		}
	}
}
