// Package dispatchtest provides a deterministic Dispatcher with virtual time.
package dispatchtest

import (
	"sort"
	"time"

	"github.com/rigado/gap/dispatch"
)

var epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Fake runs tasks only when the test asks it to.
type Fake struct {
	now    time.Duration
	tasks  []func()
	timers []*timer
	seq    int
}

func New() *Fake {
	return &Fake{}
}

func (f *Fake) Post(fn func()) {
	f.tasks = append(f.tasks, fn)
}

func (f *Fake) PostDelayed(d time.Duration, fn func()) dispatch.Timer {
	f.seq++
	t := &timer{f: f, deadline: f.now + d, fn: fn, seq: f.seq}
	f.timers = append(f.timers, t)
	return t
}

func (f *Fake) Now() time.Time {
	return epoch.Add(f.now)
}

// Elapsed returns the virtual time since the fake was created.
func (f *Fake) Elapsed() time.Duration {
	return f.now
}

// RunUntilIdle runs posted tasks, including ones they post, until none remain.
// Timers due at the current virtual time are fired as well.
func (f *Fake) RunUntilIdle() {
	for {
		if len(f.tasks) > 0 {
			t := f.tasks[0]
			f.tasks = f.tasks[1:]
			t()
			continue
		}
		if t := f.nextDue(f.now); t != nil {
			t.fire()
			continue
		}
		return
	}
}

// Advance moves virtual time forward by d, firing timers in deadline order.
func (f *Fake) Advance(d time.Duration) {
	end := f.now + d
	f.RunUntilIdle()
	for {
		t := f.nextDue(end)
		if t == nil {
			break
		}
		f.now = t.deadline
		t.fire()
		f.RunUntilIdle()
	}
	f.now = end
	f.RunUntilIdle()
}

// PendingTimers returns the number of armed timers.
func (f *Fake) PendingTimers() int {
	return len(f.timers)
}

func (f *Fake) nextDue(limit time.Duration) *timer {
	if len(f.timers) == 0 {
		return nil
	}
	sort.SliceStable(f.timers, func(i, j int) bool {
		if f.timers[i].deadline == f.timers[j].deadline {
			return f.timers[i].seq < f.timers[j].seq
		}
		return f.timers[i].deadline < f.timers[j].deadline
	})
	if f.timers[0].deadline > limit {
		return nil
	}
	return f.timers[0]
}

func (f *Fake) remove(t *timer) bool {
	for i, v := range f.timers {
		if v == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return true
		}
	}
	return false
}

type timer struct {
	f        *Fake
	deadline time.Duration
	fn       func()
	seq      int
}

func (t *timer) fire() {
	t.f.remove(t)
	t.fn()
}

func (t *timer) Stop() bool {
	return t.f.remove(t)
}
