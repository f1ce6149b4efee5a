package timex

import (
	"sort"
	"time"
)

// Timers is a cooperative one-shot timer queue. Callbacks run inside Run,
// on the caller's goroutine, so they may touch loop-owned state.
type Timers struct {
	seq     uint64
	pending []timer
}

type timer struct {
	id  uint64
	due time.Time
	fn  func(now time.Time)
}

// After schedules fn to run on the first Run at or after now+d.
// It returns an id usable with Cancel.
func (t *Timers) After(now time.Time, d time.Duration, fn func(now time.Time)) uint64 {
	t.seq++
	t.pending = append(t.pending, timer{id: t.seq, due: now.Add(d), fn: fn})
	sort.SliceStable(t.pending, func(i, j int) bool { return t.pending[i].due.Before(t.pending[j].due) })
	return t.seq
}

// Cancel drops a pending timer. Unknown ids are ignored.
func (t *Timers) Cancel(id uint64) {
	for i, p := range t.pending {
		if p.id == id {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}

// Run fires every timer due at now, in due order, and reports how many ran.
// Timers scheduled by a callback are not fired in the same Run.
func (t *Timers) Run(now time.Time) int {
	n := 0
	for n < len(t.pending) && !t.pending[n].due.After(now) {
		n++
	}
	if n == 0 {
		return 0
	}
	due := make([]timer, n)
	copy(due, t.pending[:n])
	t.pending = append(t.pending[:0], t.pending[n:]...)
	for _, d := range due {
		d.fn(now)
	}
	return n
}

// Len reports the number of pending timers.
func (t *Timers) Len() int { return len(t.pending) }
