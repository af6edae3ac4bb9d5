package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/pomodex/internal/battle"
	"github.com/verte-zerg/pomodex/internal/encounter"
	"github.com/verte-zerg/pomodex/internal/rarity"
	"github.com/verte-zerg/pomodex/internal/store"
	"github.com/verte-zerg/pomodex/internal/timer"
)

type fixedSource struct {
	f float64
}

func (fixedSource) IntN(int) int        { return 0 }
func (s fixedSource) Float64() float64 { return s.f }

type immediateScheduler struct{}

type doneHandle struct{}

func (doneHandle) Cancel() bool { return false }

func (immediateScheduler) After(_ time.Duration, fn func()) battle.Handle {
	fn()
	return doneHandle{}
}

func newTestModel(t *testing.T, draw float64) (*Model, *Dispatcher) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "pomodex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	require.NoError(t, st.SetPref(ctx, battle.PrefDuration, "5"))
	require.NoError(t, st.SetPref(ctx, battle.PrefCreature, "25"))

	d := NewDispatcher()
	orch := battle.New(battle.Deps{
		Store:       st.ForTrainer("ash"),
		Prefs:       st,
		Sampler:     encounter.New(rarity.Default(), encounter.NewSource(7)),
		CatchSource: fixedSource{f: draw},
		Scheduler:   immediateScheduler{},
		Dispatch:    d.Send,
	})
	orch.Start(ctx)
	return NewModel(orch, d, nil), d
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestToggleStartsTicking(t *testing.T) {
	m, _ := newTestModel(t, 0)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, timer.Running, m.orch.Timer().State())

	_, cmd = m.Update(tickMsg{run: m.orch.Timer().Run()})
	assert.NotNil(t, cmd)
	assert.Equal(t, 299, m.orch.Timer().Remaining())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, timer.Paused, m.orch.Timer().State())
}

func TestStaleTickIsDropped(t *testing.T) {
	m, _ := newTestModel(t, 0)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	stale := m.orch.Timer().Run()
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := m.Update(tickMsg{run: stale})
	assert.Nil(t, cmd)
	assert.Equal(t, 300, m.orch.Timer().Remaining())
}

func TestCompletionAndReveal(t *testing.T) {
	m, d := newTestModel(t, 0)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run := m.orch.Timer().Run()
	for i := 0; i < 300; i++ {
		m.Update(tickMsg{run: run})
	}
	assert.True(t, m.catching)
	assert.Equal(t, battle.KindSuccess, m.notice.Kind)
	assert.Contains(t, m.notice.Title, "Pikachu")
	assert.Contains(t, m.View(), "throwing a ball")

	msg := d.wait()()
	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd)
	assert.False(t, m.catching)
	assert.Equal(t, "A new wild Pokemon appeared!", m.notice.Title)
	assert.Equal(t, timer.Idle, m.orch.Timer().State())
	assert.Equal(t, 1, m.orch.Session().Collection.CaughtTotal())
}

func TestResetClearsCatching(t *testing.T) {
	m, _ := newTestModel(t, 0.99)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(runes("r"))
	assert.Equal(t, "Timer reset!", m.notice.Title)
	assert.Equal(t, timer.Idle, m.orch.Timer().State())
	assert.False(t, m.catching)
}

func TestDurationKeys(t *testing.T) {
	m, _ := newTestModel(t, 0)
	m.Update(runes("+"))
	assert.Equal(t, 10, m.orch.Session().Config.DurationMinutes)
	assert.Equal(t, 600, m.orch.Timer().Remaining())
	m.Update(runes("-"))
	m.Update(runes("-"))
	assert.Equal(t, 5, m.orch.Session().Config.DurationMinutes)
}

func TestBattleStatsFollowRunningSession(t *testing.T) {
	m, _ := newTestModel(t, 0)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(runes("+"))
	require.Equal(t, timer.Running, m.orch.Timer().State())
	require.Equal(t, 10, m.orch.Session().Config.DurationMinutes)

	panel := m.renderBattleStats()
	assert.Contains(t, panel, "18.8%")
	assert.NotContains(t, panel, "29.8%")
	assert.Contains(t, panel, "5 min (next 10)")

	m.Update(runes("r"))
	panel = m.renderBattleStats()
	assert.Contains(t, panel, "29.8%")
	assert.NotContains(t, panel, "next")
}

func TestRerollShowsNotice(t *testing.T) {
	m, _ := newTestModel(t, 0)
	m.Update(runes("n"))
	assert.Contains(t, m.notice.Message, "re-rolls left today")
	assert.Equal(t, battle.DailyRerolls-1, m.orch.RerollsLeft())

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(runes("n"))
	assert.Equal(t, battle.KindWarning, m.notice.Kind)
}

func TestNoticeClearsOnMatchingSeq(t *testing.T) {
	m, _ := newTestModel(t, 0)
	m.Update(runes("r"))
	m.Update(clearNoticeMsg{seq: m.noticeSeq - 1})
	assert.NotEmpty(t, m.notice.Title)
	m.Update(clearNoticeMsg{seq: m.noticeSeq})
	assert.Empty(t, m.notice.Title)
}

func TestQuitReturnsQuitCmd(t *testing.T) {
	m, _ := newTestModel(t, 0)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewRendersBattle(t *testing.T) {
	m, _ := newTestModel(t, 0)
	out := m.View()
	for _, want := range []string{"PIKACHU", "#025", "05:00", "Catch", "Rerolls", "Pokedex 0/493", "ready"} {
		assert.Truef(t, strings.Contains(out, want), "view missing %q:\n%s", want, out)
	}
}
