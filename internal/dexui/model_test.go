package dexui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/pomodex/internal/model"
)

type fakeSource struct {
	col model.Collection
	st  model.Stats
	err error
}

func (f fakeSource) LoadCollection(context.Context) (model.Collection, error) {
	return f.col, f.err
}

func (f fakeSource) LoadStats(context.Context) (model.Stats, error) {
	return f.st, f.err
}

func newSource() fakeSource {
	col := model.NewCollection()
	col.MarkCaught(25)
	col.MarkCaught(25)
	col.MarkSeen(26)
	col.MarkSeen(1)
	return fakeSource{col: col, st: model.Stats{TotalFocusMinutes: 75, TotalSessions: 2, TotalAttempts: 2}}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMatchIDs(t *testing.T) {
	assert.Equal(t, []model.CreatureID{25}, matchIDs("25"))
	assert.Equal(t, []model.CreatureID{25}, matchIDs("#025"))
	assert.Nil(t, matchIDs("900"))
	assert.Len(t, matchIDs(""), model.RosterSize)
	assert.Contains(t, matchIDs("pika"), model.CreatureID(25))
}

func TestDexRowPadsName(t *testing.T) {
	row := dexRow(25, model.CollectionRecord{Seen: true, Caught: true, CaughtCount: 2})
	assert.Equal(t, "#025", row[0])
	assert.Equal(t, "Pikachu       ", row[1])
	assert.Equal(t, "caught", row[3])
	assert.Equal(t, "2", row[4])
}

func TestInitialSearchAndFilter(t *testing.T) {
	m := NewModel(newSource(), "pi")
	assert.Contains(t, m.rowIDs, model.CreatureID(25))
	for _, id := range m.rowIDs {
		assert.NotEqual(t, model.CreatureID(1), id)
	}

	m.Update(key("f"))
	assert.Equal(t, ShowSeen, m.show)
	assert.Contains(t, m.rowIDs, model.CreatureID(25))

	m.Update(key("f"))
	assert.Equal(t, ShowCaught, m.show)
	assert.Equal(t, []model.CreatureID{25}, m.rowIDs)
	id, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, model.CreatureID(25), id)

	m.Update(key("f"))
	assert.Equal(t, ShowAll, m.show)
}

func TestSearchModeTyping(t *testing.T) {
	m := NewModel(newSource(), "")
	assert.Len(t, m.rowIDs, model.RosterSize)

	m.Update(key("/"))
	require.True(t, m.searchMode)
	m.Update(key("2"))
	m.Update(key("6"))
	assert.Equal(t, []model.CreatureID{26}, m.rowIDs)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.searchMode)
	assert.Equal(t, []model.CreatureID{26}, m.rowIDs)

	m.Update(key("/"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, m.rowIDs, model.RosterSize)
}

func TestTabsAndView(t *testing.T) {
	m := NewModel(newSource(), "")
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	out := m.View()
	assert.Contains(t, out, "Pokedex")
	assert.Contains(t, out, "Caught: 1/493")
	assert.Contains(t, out, "Bulbasaur")

	m.Update(key("l"))
	assert.Equal(t, tabCard, m.activeTab)
	assert.Contains(t, m.View(), "Focused Trainer")

	m.Update(key("l"))
	assert.Contains(t, m.View(), "No sessions found.")

	m.Update(key("l"))
	assert.Contains(t, m.View(), "MYTHICAL")

	m.Update(key("l"))
	assert.Equal(t, tabDex, m.activeTab)
	m.Update(key("h"))
	assert.Equal(t, tabOdds, m.activeTab)
}

func TestLoadErrorShown(t *testing.T) {
	m := NewModel(fakeSource{err: errors.New("connection refused")}, "")
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	assert.Contains(t, m.View(), "connection refused")
}

func TestQuit(t *testing.T) {
	m := NewModel(newSource(), "")
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
