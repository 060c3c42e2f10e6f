package schedule

import (
	"math"
	"math/rand"
	"time"

	"jcdp/internal/jcseq"
	"jcdp/internal/sa"
)

// SimulatedAnnealing is a heuristic Scheduler that searches over
// per-operation thread assignments by simulated annealing, using the
// cooling schedule of an internal/sa.Config and Metropolis acceptance,
// annealing over a thread-assignment vector: each candidate vector is turned
// into an actual schedule by walking the sequence in ready-operation
// order and placing each operation on its assigned thread at the
// earliest time its producers and that thread allow. Useful for
// instances too large for BnBInner to finish and too irregular for
// PriorityList's single greedy pass to do well on.
type SimulatedAnnealing struct {
	Cfg sa.Config
	Rng *rand.Rand

	b budget
}

// NewSimulatedAnnealing returns a scheduler using cfg's cooling
// schedule (IterationsPerJob scales with the number of operations in
// the sequence, not "jobs") and rng as its only source of randomness.
func NewSimulatedAnnealing(cfg sa.Config, rng *rand.Rand) *SimulatedAnnealing {
	if rng == nil {
		panic("schedule: nil random source")
	}
	return &SimulatedAnnealing{Cfg: cfg, Rng: rng}
}

func (s *SimulatedAnnealing) SetTimeBudget(d time.Duration) {
	s.b.start(d)
}

func (s *SimulatedAnnealing) FinishedInTime() bool {
	return s.b.finishedInTime()
}

func (s *SimulatedAnnealing) Schedule(seq *jcseq.Sequence, usableThreads, upperBound int) int {
	if usableThreads <= 0 {
		return seq.SequentialMakespan()
	}
	n := seq.Len()

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerJob * n
	}

	curr := make([]int, n)
	for i := range curr {
		curr[i] = s.Rng.Intn(usableThreads)
	}
	currCost := simulate(seq, curr, usableThreads)

	best := append([]int(nil), curr...)
	bestCost := currCost

	cand := make([]int, n)
	T := s.Cfg.InitialTemp

	for iter := 0; iter < maxIter && T > s.Cfg.FinalTemp; iter++ {
		if !s.b.remaining() {
			break
		}
		if bestCost <= upperBound && bestCost <= seq.CriticalPath() {
			break
		}

		copy(cand, curr)
		switch s.Cfg.Neighborhood {
		case sa.NeighborhoodInsert:
			neighborReassign(cand, usableThreads, s.Rng)
		default:
			neighborSwapThreads(cand, s.Rng)
		}

		candCost := simulate(seq, cand, usableThreads)

		delta := candCost - currCost
		accept := delta <= 0
		if !accept {
			p := math.Exp(-float64(delta) / T)
			accept = s.Rng.Float64() < p
		}
		if accept {
			curr, cand = cand, curr
			currCost = candCost
			if currCost < bestCost {
				bestCost = currCost
				copy(best, curr)
			}
		}

		T *= s.Cfg.Alpha
	}

	simulate(seq, best, usableThreads)
	return bestCost
}

// simulate turns a thread-assignment vector into an actual schedule by
// repeatedly placing the highest-level ready operation on its assigned
// thread, and returns the resulting makespan.
func simulate(seq *jcseq.Sequence, threadOf []int, usableThreads int) int {
	resetSchedule(seq)
	n := seq.Len()
	scheduled := make([]bool, n)
	threadLoads := make([]int, usableThreads)
	level := make([]int, n)
	for i := range level {
		level[i] = seq.Level(i)
	}

	for remaining := n; remaining > 0; remaining-- {
		best := -1
		for idx := 0; idx < n; idx++ {
			if scheduled[idx] || !seq.IsSchedulable(idx) {
				continue
			}
			if best == -1 || level[idx] > level[best] {
				best = idx
			}
		}
		if best == -1 {
			break
		}

		t := threadOf[best] % usableThreads
		earliest := seq.EarliestStart(best)
		o := seq.At(best)
		o.Thread = t
		o.StartTime = max(threadLoads[t], earliest)
		o.IsScheduled = true
		seq.Set(best, o)
		threadLoads[t] = o.StartTime + o.FMA
		scheduled[best] = true
	}

	return seq.Makespan()
}

// neighborSwapThreads swaps the thread assignments of two random
// operations.
func neighborSwapThreads(t []int, rng *rand.Rand) {
	if len(t) < 2 {
		return
	}
	i := rng.Intn(len(t))
	j := rng.Intn(len(t))
	t[i], t[j] = t[j], t[i]
}

// neighborReassign moves a single random operation to a random thread,
// which may be the one it is already on.
func neighborReassign(t []int, usableThreads int, rng *rand.Rand) {
	if len(t) == 0 || usableThreads < 2 {
		return
	}
	i := rng.Intn(len(t))
	t[i] = rng.Intn(usableThreads)
}
