// Package schedule assigns a processor and start time to every operation
// of a complete elimination sequence, minimising the makespan. It
// provides three Scheduler implementations: a fast priority-list heuristic
// (C6), an exact branch-and-bound search (C5), and a simulated-annealing
// heuristic.
package schedule

import (
	"time"

	"jcdp/internal/jcseq"
)

// Unlimited is the default upper bound for a search that hasn't yet been
// seeded with a feasible makespan from a baseline heuristic.
const Unlimited = int(^uint(0) >> 1)

// Scheduler assigns (thread, start_time) to every operation of seq and
// returns the resulting makespan. usableThreads is already capped by the
// caller to count_accumulations(seq); a Scheduler never uses more.
//
// Implementations are intentionally not an inheritance hierarchy: the
// source's class hierarchy is re-expressed as this narrow interface with
// concrete variants (PriorityList, BnBInner, SimulatedAnnealing) selected
// by the coordinator.
type Scheduler interface {
	Schedule(seq *jcseq.Sequence, usableThreads int, upperBound int) int
	SetTimeBudget(d time.Duration)
	FinishedInTime() bool
}

// UsableThreads caps the caller-requested thread count to the number of
// accumulations in seq: more processors than root operations can never
// be put to use.
func UsableThreads(seq *jcseq.Sequence, threads int) int {
	usable := seq.CountAccumulations()
	if threads > 0 && threads < usable {
		usable = threads
	}
	if usable == 0 {
		usable = 1
	}
	return usable
}

func resetSchedule(seq *jcseq.Sequence) {
	for i := 0; i < seq.Len(); i++ {
		o := seq.At(i)
		o.IsScheduled = false
		seq.Set(i, o)
	}
}
