package schedule

import (
	"time"

	"jcdp/internal/jcseq"
)

// PriorityList is a one-pass greedy scheduler: operations are sorted by
// descending level (distance to root), ties broken by descending FMA,
// and each is placed on the processor that lets it start earliest. It
// never revisits a decision, so it carries no time budget of its own.
type PriorityList struct{}

func NewPriorityList() *PriorityList {
	return &PriorityList{}
}

func (p *PriorityList) SetTimeBudget(time.Duration) {}

func (p *PriorityList) FinishedInTime() bool { return true }

func (p *PriorityList) Schedule(seq *jcseq.Sequence, usableThreads, _ int) int {
	resetSchedule(seq)

	n := seq.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	level := make([]int, n)
	for i := range order {
		level[i] = seq.Level(i)
	}

	threadLoads := make([]int, usableThreads)
	scheduled := make([]bool, n)

	for remaining := n; remaining > 0; remaining-- {
		// Pick the highest-priority ready operation: highest level,
		// ties broken by highest FMA.
		best := -1
		for _, idx := range order {
			if scheduled[idx] || !seq.IsSchedulable(idx) {
				continue
			}
			if best == -1 {
				best = idx
				continue
			}
			a, b := seq.At(idx), seq.At(best)
			if level[idx] > level[best] || (level[idx] == level[best] && a.FMA > b.FMA) {
				best = idx
			}
		}
		if best == -1 {
			break
		}

		earliest := seq.EarliestStart(best)
		o := seq.At(best)

		o.Thread = 0
		o.StartTime = max(threadLoads[0], earliest)
		currentIdle := o.StartTime - threadLoads[0]

		for t := 1; t < usableThreads; t++ {
			startOnT := max(threadLoads[t], earliest)
			idleOnT := startOnT - threadLoads[t]
			if startOnT < o.StartTime || (startOnT == o.StartTime && idleOnT < currentIdle) {
				o.Thread = t
				o.StartTime = startOnT
				currentIdle = idleOnT
			}
		}

		threadLoads[o.Thread] = o.StartTime + o.FMA
		o.IsScheduled = true
		seq.Set(best, o)
		scheduled[best] = true
	}

	return seq.Makespan()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
