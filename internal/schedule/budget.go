package schedule

import "time"

// budget tracks a scheduler's own wall-clock deadline, mirroring the
// teacher's pattern of threading a context/deadline through a Solve
// loop (see internal/ts.Solver.Solve's ctx.Err() checks) but expressed
// as a plain deadline since the inner DFS is polled far more often than
// a context can cheaply be checked.
type budget struct {
	deadline time.Time
	unset    bool
	expired  bool
}

func (b *budget) start(d time.Duration) {
	if d <= 0 {
		b.unset = true
		b.expired = false
		return
	}
	b.unset = false
	b.expired = false
	b.deadline = time.Now().Add(d)
}

// remaining reports whether the scheduler may keep searching. It also
// latches expired so FinishedInTime can report it after the fact.
func (b *budget) remaining() bool {
	if b.unset || b.deadline.IsZero() {
		return true
	}
	if b.expired {
		return false
	}
	if time.Now().After(b.deadline) {
		b.expired = true
		return false
	}
	return true
}

func (b *budget) finishedInTime() bool {
	return !b.expired
}
