// Package dispatch provides the single logical thread every state machine in the stack runs on.
package dispatch

import (
	"sync"
	"time"
)

// Timer is a task scheduled with PostDelayed.
type Timer interface {
	// Stop cancels the task. It reports false if the task already ran or was stopped.
	Stop() bool
}

// Dispatcher runs posted tasks one at a time, in order.
type Dispatcher interface {
	Post(fn func())
	PostDelayed(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Loop is a Dispatcher backed by one goroutine.
type Loop struct {
	mu      sync.Mutex
	tasks   []func()
	wake    chan struct{}
	done    chan struct{}
	stopped bool
}

// NewLoop creates a loop; Run must be called to start processing.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Run processes tasks until Stop is called. It is normally started with `go l.Run()`.
func (l *Loop) Run() {
	for {
		l.mu.Lock()
		if l.stopped {
			l.mu.Unlock()
			close(l.done)
			return
		}
		tasks := l.tasks
		l.tasks = nil
		l.mu.Unlock()

		for _, t := range tasks {
			t()
		}

		if len(tasks) == 0 {
			<-l.wake
		}
	}
}

// Stop ends Run after the current task and waits for it to return.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.mu.Unlock()
	l.signal()
	<-l.done
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Post queues fn. Safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.signal()
}

// PostDelayed queues fn after d. The returned Timer must only be stopped from the loop.
func (l *Loop) PostDelayed(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped || t.fired {
				return
			}
			t.fired = true
			fn()
		})
	})
	return t
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

type loopTimer struct {
	t       *time.Timer
	stopped bool
	fired   bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.t.Stop()
	return true
}
