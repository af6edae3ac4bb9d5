package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/pomodex/internal/battle"
)

// Dispatcher carries fired reveals from the scheduler goroutine into the
// Bubble Tea event loop.
type Dispatcher struct {
	ch chan battle.Reveal
}

// NewDispatcher returns a Dispatcher. Pass its Send method as
// battle.Deps.Dispatch.
func NewDispatcher() *Dispatcher {
	// At most one reveal is pending at a time.
	return &Dispatcher{ch: make(chan battle.Reveal, 1)}
}

// Send queues r without blocking. A reveal arriving while another is queued
// is dropped; the orchestrator would ignore the older token anyway.
func (d *Dispatcher) Send(r battle.Reveal) {
	select {
	case d.ch <- r:
	default:
		select {
		case <-d.ch:
		default:
		}
		select {
		case d.ch <- r:
		default:
		}
	}
}

type revealMsg battle.Reveal

func (d *Dispatcher) wait() tea.Cmd {
	return func() tea.Msg {
		return revealMsg(<-d.ch)
	}
}
