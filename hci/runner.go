package hci

import (
	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci/cmd"
)

type queuedCommand struct {
	cmd        cmd.Command
	cb         func(Event)
	wait       bool
	complete   EventCode
	exclusions []int
}

// SequentialCommandRunner runs a batch of commands and reports a single result.
// The batch stops at the first failure. Callbacks of commands still in flight
// after a failure or Cancel are dropped.
type SequentialCommandRunner struct {
	ctrl Controller

	queue    []queuedCommand
	statusCb func(error)

	// generation invalidates callbacks from earlier batches.
	generation uint64
	running    int
	blocking   int
}

// NewSequentialCommandRunner returns a runner sending through ctrl.
func NewSequentialCommandRunner(ctrl Controller) *SequentialCommandRunner {
	return &SequentialCommandRunner{ctrl: ctrl}
}

// QueueCommand adds c to the batch. cb, if non-nil, receives the completion
// event on success. When wait is set, commands queued after c are not sent
// before c completes.
func (r *SequentialCommandRunner) QueueCommand(c cmd.Command, cb func(Event), wait bool, complete EventCode, exclusions ...int) {
	if complete == 0 {
		complete = CommandCompleteEvent
	}
	r.queue = append(r.queue, queuedCommand{cmd: c, cb: cb, wait: wait, complete: complete, exclusions: exclusions})
}

// RunCommands sends the queued batch; statusCb receives nil after the last command
// completes or the first error.
func (r *SequentialCommandRunner) RunCommands(statusCb func(error)) {
	if !r.IsReady() {
		statusCb(errors.Wrap(gap.ErrNotReady, "runner busy"))
		return
	}
	if len(r.queue) == 0 {
		statusCb(nil)
		return
	}
	r.statusCb = statusCb
	r.tryRunNext()
}

// IsReady reports whether no batch is running.
func (r *SequentialCommandRunner) IsReady() bool {
	return r.statusCb == nil
}

// HasQueuedCommands reports whether commands are waiting to be sent.
func (r *SequentialCommandRunner) HasQueuedCommands() bool {
	return len(r.queue) > 0
}

// Cancel drops the queued commands and reports ErrCanceled for a running batch.
func (r *SequentialCommandRunner) Cancel() {
	cb := r.statusCb
	r.reset()
	if cb != nil {
		cb(gap.ErrCanceled)
	}
}

func (r *SequentialCommandRunner) reset() {
	r.queue = nil
	r.statusCb = nil
	r.running = 0
	r.blocking = 0
	r.generation++
}

func (r *SequentialCommandRunner) finish(err error) {
	cb := r.statusCb
	r.reset()
	if cb != nil {
		cb(err)
	}
}

func (r *SequentialCommandRunner) tryRunNext() {
	for len(r.queue) > 0 && r.blocking == 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.running++
		if next.wait {
			r.blocking++
		}
		gen := r.generation
		cb := func(e Event) {
			if gen != r.generation {
				return
			}
			if err := e.Err(); err != nil {
				r.finish(errors.Wrapf(err, "%v", next.cmd))
				return
			}
			if e.Code != next.complete {
				// Status of an asynchronous command.
				return
			}
			r.running--
			if next.wait {
				r.blocking--
			}
			if next.cb != nil {
				next.cb(e)
				if gen != r.generation {
					return
				}
			}
			if len(r.queue) == 0 && r.running == 0 {
				r.finish(nil)
				return
			}
			r.tryRunNext()
		}
		if len(next.exclusions) > 0 {
			r.ctrl.SendExclusiveCommand(next.cmd, cb, next.complete, next.exclusions...)
		} else {
			r.ctrl.SendCommand(next.cmd, cb, next.complete)
		}
		if gen != r.generation {
			return
		}
	}
}
