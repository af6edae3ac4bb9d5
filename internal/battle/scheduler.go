package battle

import "time"

// Handle is a cancellable scheduled task.
type Handle interface {
	// Cancel stops the task if it has not run yet and reports whether it did.
	Cancel() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	After(d time.Duration, fn func()) Handle
}

// ClockScheduler schedules on the wall clock with time.AfterFunc.
type ClockScheduler struct{}

// After implements Scheduler.
func (ClockScheduler) After(d time.Duration, fn func()) Handle {
	return clockHandle{t: time.AfterFunc(d, fn)}
}

type clockHandle struct {
	t *time.Timer
}

func (h clockHandle) Cancel() bool {
	return h.t.Stop()
}

// inlineScheduler runs fn immediately on the calling goroutine.
type inlineScheduler struct{}

func (inlineScheduler) After(_ time.Duration, fn func()) Handle {
	fn()
	return doneHandle{}
}

type doneHandle struct{}

func (doneHandle) Cancel() bool { return false }
