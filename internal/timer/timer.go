// Package timer implements the focus session countdown.
package timer

import (
	"fmt"

	"github.com/verte-zerg/pomodex/internal/model"
)

// State is the countdown phase.
type State int

// Countdown phases.
const (
	Idle State = iota
	Running
	Paused
	Completed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

// Token identifies one uninterrupted run. Ticks carry the token they were
// scheduled under; any start, pause or reset issues a new one.
type Token uint64

// Timer is a one-second-resolution countdown. It is not safe for concurrent use.
type Timer struct {
	minutes   int
	next      int
	remaining int
	state     State
	run       Token
}

// New returns an idle timer for minutes, clamped to the allowed range.
func New(minutes int) *Timer {
	m := model.ClampDuration(minutes)
	return &Timer{minutes: m, next: m, remaining: m * 60}
}

// State returns the current phase.
func (t *Timer) State() State { return t.state }

// Run returns the current run token.
func (t *Timer) Run() Token { return t.run }

// Remaining returns the seconds left.
func (t *Timer) Remaining() int { return t.remaining }

// Minutes returns the duration of the current (or next) run.
func (t *Timer) Minutes() int { return t.minutes }

// ConfiguredMinutes returns the duration that applies to the next run.
func (t *Timer) ConfiguredMinutes() int { return t.next }

// Total returns the current run length in seconds.
func (t *Timer) Total() int { return t.minutes * 60 }

// Elapsed returns the seconds counted down so far.
func (t *Timer) Elapsed() int { return t.Total() - t.remaining }

// Active reports whether the countdown is running.
func (t *Timer) Active() bool { return t.state == Running }

// Snapshot returns the observable state.
func (t *Timer) Snapshot() model.TimerState {
	return model.TimerState{RemainingSeconds: t.remaining, Active: t.Active()}
}

// Progress returns the elapsed fraction in [0, 1].
func (t *Timer) Progress() float64 {
	total := t.Total()
	if total <= 0 {
		return 0
	}
	return float64(t.Elapsed()) / float64(total)
}

// Toggle starts, resumes or pauses the countdown. It returns the new run
// token when the timer starts running.
func (t *Timer) Toggle() (Token, bool) {
	switch t.state {
	case Idle, Paused:
		t.state = Running
		t.run++
		return t.run, true
	case Running:
		t.state = Paused
		t.run++
	}
	return t.run, false
}

// Tick counts down one second if run is current and the timer is running.
// It returns true exactly once per run, on the tick that reaches zero.
func (t *Timer) Tick(run Token) bool {
	if run != t.run || t.state != Running {
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.state = Completed
		t.run++
		return true
	}
	return false
}

// Reset returns to Idle with a full countdown and voids in-flight ticks.
func (t *Timer) Reset() {
	t.minutes = t.next
	t.remaining = t.minutes * 60
	t.state = Idle
	t.run++
}

// Finish moves a completed timer back to Idle.
func (t *Timer) Finish() {
	if t.state != Completed {
		return
	}
	t.Reset()
}

// SetDuration changes the session length. While inactive the countdown is
// recomputed immediately; while running only the next run is affected. An
// unchanged length leaves the countdown alone.
func (t *Timer) SetDuration(minutes int) int {
	clamped := model.ClampDuration(minutes)
	if clamped == t.next {
		return clamped
	}
	t.next = clamped
	switch t.state {
	case Idle, Paused:
		t.Reset()
	}
	return t.next
}

// Format renders seconds as MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
