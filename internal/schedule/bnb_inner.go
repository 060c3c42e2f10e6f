package schedule

import (
	"time"

	"jcdp/internal/jcseq"
)

// BnBInner is an exact depth-first branch-and-bound schedule optimiser.
// It explores (thread, start_time) assignments for a fixed elimination
// sequence, pruning with a composite critical-path / work-idleness lower
// bound, and honours its own wall-clock deadline.
type BnBInner struct {
	b budget
}

func NewBnBInner() *BnBInner {
	return &BnBInner{}
}

func (s *BnBInner) SetTimeBudget(d time.Duration) {
	s.b.start(d)
}

func (s *BnBInner) FinishedInTime() bool {
	return s.b.finishedInTime()
}

// Schedule returns the best makespan found for seq within usableThreads
// processors and upperBound as the initial best-known value, writing the
// winning (thread, start_time, is_scheduled) assignment back into seq.
func (s *BnBInner) Schedule(seq *jcseq.Sequence, usableThreads, upperBound int) int {
	if usableThreads <= 0 {
		return seq.SequentialMakespan()
	}

	n := seq.Len()
	working := seq.Clone()
	resetSchedule(working)

	sequentialMakespan := seq.SequentialMakespan()
	lowerBound := working.CriticalPath()
	if lowerBound >= upperBound {
		return lowerBound
	}

	best := upperBound
	threadLoads := make([]int, usableThreads)
	idling := 0
	makespan := 0

	var recurse func() bool
	recurse = func() bool {
		if !s.b.remaining() {
			return true
		}

		everythingScheduled := true
		for opIdx := 0; opIdx < n; opIdx++ {
			if working.At(opIdx).IsScheduled {
				continue
			}
			everythingScheduled = false
			if !working.IsSchedulable(opIdx) {
				continue
			}

			markScheduled(working, opIdx, true)
			start := working.EarliestStart(opIdx)
			triedEmptyProcessor := false

			for t := 0; t < usableThreads; t++ {
				if threadLoads[t] == 0 {
					if triedEmptyProcessor {
						break
					}
					triedEmptyProcessor = true
				}

				oldStart := working.At(opIdx).StartTime
				startTime := max(threadLoads[t], start)
				setStartTime(working, opIdx, startTime)

				oldLoad := threadLoads[t]
				threadLoads[t] = startTime + working.At(opIdx).FMA

				oldIdling := idling
				idling += startTime - oldLoad

				oldMakespan := makespan
				if threadLoads[t] > makespan {
					makespan = threadLoads[t]
				}

				lb := max((idling+sequentialMakespan)/usableThreads, working.CriticalPath())
				if max(lb, makespan) < best {
					setThread(working, opIdx, t)
					if recurse() {
						return true
					}
				}

				threadLoads[t] = oldLoad
				idling = oldIdling
				makespan = oldMakespan
				setStartTime(working, opIdx, oldStart)
			}

			markScheduled(working, opIdx, false)
		}

		if everythingScheduled && makespan < best {
			best = makespan
			for i := 0; i < n; i++ {
				wi := working.At(i)
				oi := seq.At(i)
				oi.Thread = wi.Thread
				oi.StartTime = wi.StartTime
				oi.IsScheduled = true
				seq.Set(i, oi)
			}
			if best <= lowerBound {
				return true
			}
		}

		return false
	}

	recurse()
	return best
}

func markScheduled(s *jcseq.Sequence, idx int, scheduled bool) {
	o := s.At(idx)
	o.IsScheduled = scheduled
	s.Set(idx, o)
}

func setStartTime(s *jcseq.Sequence, idx, t int) {
	o := s.At(idx)
	o.StartTime = t
	s.Set(idx, o)
}

func setThread(s *jcseq.Sequence, idx, t int) {
	o := s.At(idx)
	o.Thread = t
	s.Set(idx, o)
}
