package schedule

import (
	"math/rand"
	"testing"

	"jcdp/internal/jcseq"
	"jcdp/internal/op"
	"jcdp/internal/sa"
)

// twoAccOneMult builds acc(0, fma=2) -> acc(1, fma=3) -> mult(1,0,0, fma=4),
// the smallest sequence with a genuine fan-in.
func twoAccOneMult() *jcseq.Sequence {
	s := jcseq.New()
	s.PushBack(op.Operation{Action: op.Accumulation, J: 0, K: 0, I: 0, FMA: 2})
	s.PushBack(op.Operation{Action: op.Accumulation, J: 1, K: 1, I: 1, FMA: 3})
	s.PushBack(op.Operation{Action: op.Multiplication, J: 1, K: 0, I: 0, FMA: 4})
	return s
}

func TestUsableThreadsCapsToAccumulations(t *testing.T) {
	seq := twoAccOneMult()
	if got := UsableThreads(seq, 8); got != 2 {
		t.Errorf("UsableThreads(seq, 8) = %d, want 2 (only 2 accumulations)", got)
	}
	if got := UsableThreads(seq, 1); got != 1 {
		t.Errorf("UsableThreads(seq, 1) = %d, want 1", got)
	}
	if got := UsableThreads(seq, 0); got != 2 {
		t.Errorf("UsableThreads(seq, 0) = %d, want 2 (non-positive threads means no cap)", got)
	}
}

func TestUsableThreadsNeverZero(t *testing.T) {
	seq := jcseq.New()
	if got := UsableThreads(seq, 4); got != 1 {
		t.Errorf("UsableThreads on an empty sequence = %d, want 1", got)
	}
}

func TestPriorityListProducesNonOverlappingSchedule(t *testing.T) {
	seq := twoAccOneMult()
	p := NewPriorityList()

	makespan := p.Schedule(seq, 2, Unlimited)

	// acc(0)=2 and acc(1)=3 can run in parallel; mult needs both done,
	// so it cannot start before time 3. Best possible makespan is 7.
	if makespan != 7 {
		t.Errorf("Schedule() makespan = %d, want 7", makespan)
	}
	for i := 0; i < seq.Len(); i++ {
		if !seq.At(i).IsScheduled {
			t.Errorf("operation %d left unscheduled", i)
		}
	}
	mult := seq.At(2)
	if mult.StartTime < 3 {
		t.Errorf("multiplication started at %d before both its producers finished (need >= 3)", mult.StartTime)
	}
}

func TestPriorityListNeverDoubleBooksAThread(t *testing.T) {
	seq := twoAccOneMult()
	NewPriorityList().Schedule(seq, 1, Unlimited)

	// With a single thread every operation lands on thread 0, back to
	// back: 2 + 3 + 4 = 9.
	if got := seq.Makespan(); got != 9 {
		t.Errorf("single-thread makespan = %d, want 9", got)
	}
}

func TestBnBInnerFindsOptimalMakespan(t *testing.T) {
	seq := twoAccOneMult()
	b := NewBnBInner()

	makespan := b.Schedule(seq, 2, Unlimited)
	if makespan != 7 {
		t.Errorf("BnBInner makespan = %d, want 7", makespan)
	}
	if !b.FinishedInTime() {
		t.Errorf("an unbudgeted search should always report finished")
	}
}

func TestBnBInnerPrunesAboveUpperBound(t *testing.T) {
	seq := twoAccOneMult()
	b := NewBnBInner()

	// An upper bound already at (or below) the true lower bound should
	// be returned immediately without improving it.
	lb := seq.Clone().CriticalPath()
	got := b.Schedule(seq, 2, lb)
	if got != lb {
		t.Errorf("Schedule with upperBound == lowerBound = %d, want %d", got, lb)
	}
}

func TestSimulatedAnnealingSchedulesEveryOperation(t *testing.T) {
	seq := twoAccOneMult()
	cfg := sa.DefaultConfig()
	cfg.Iterations = 20
	rng := rand.New(rand.NewSource(1))

	s := NewSimulatedAnnealing(cfg, rng)
	makespan := s.Schedule(seq, 2, Unlimited)

	if makespan < 7 {
		t.Errorf("makespan %d is below the true optimum of 7", makespan)
	}
	for i := 0; i < seq.Len(); i++ {
		if !seq.At(i).IsScheduled {
			t.Errorf("operation %d left unscheduled", i)
		}
	}
}

func TestNewSimulatedAnnealingPanicsOnNilRng(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewSimulatedAnnealing(nil) should panic")
		}
	}()
	NewSimulatedAnnealing(sa.DefaultConfig(), nil)
}
