package stats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/pomodex/internal/model"
)

func TestRankThresholds(t *testing.T) {
	cases := map[int]string{
		0:    "Rookie Trainer",
		59:   "Rookie Trainer",
		60:   "Focused Trainer",
		199:  "Focused Trainer",
		200:  "Ace Student",
		500:  "Elite Focus",
		999:  "Elite Focus",
		1000: "Master Trainer",
		-5:   "Rookie Trainer",
	}
	for minutes, want := range cases {
		assert.Equalf(t, want, Rank(minutes), "minutes %d", minutes)
	}
}

func TestBadges(t *testing.T) {
	earned := func(bs []Badge) map[string]bool {
		out := map[string]bool{}
		for _, b := range bs {
			out[b.Name] = b.Earned
		}
		return out
	}

	none := earned(Badges(model.Stats{}, 0))
	assert.Len(t, none, 8)
	for name, ok := range none {
		assert.Falsef(t, ok, "badge %s", name)
	}

	got := earned(Badges(model.Stats{TotalSessions: 50, TotalFocusMinutes: 1440}, 150))
	assert.True(t, got["10 Sessions"])
	assert.True(t, got["50 Sessions"])
	assert.False(t, got["100 Sessions"])
	assert.True(t, got["24hr Focus"])
	assert.False(t, got["100hr Focus"])
	assert.True(t, got["50 Caught"])
	assert.True(t, got["150 Caught"])
	assert.False(t, got["Catch em All"])

	assert.True(t, earned(Badges(model.Stats{}, 493))["Catch em All"])
}

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, 0, SuccessRate(3, 0))
	assert.Equal(t, 67, SuccessRate(2, 3))
	assert.Equal(t, 100, SuccessRate(4, 4))
	assert.Equal(t, 33, SuccessRate(1, 3))
}

func TestFormatFocusTime(t *testing.T) {
	assert.Equal(t, "0h 0m", FormatFocusTime(0))
	assert.Equal(t, "0h 25m", FormatFocusTime(25))
	assert.Equal(t, "2h 5m", FormatFocusTime(125))
	assert.Equal(t, "0h 0m", FormatFocusTime(-3))
}

func TestBuildCardAndRender(t *testing.T) {
	col := model.NewCollection()
	col.MarkCaught(25)
	col.MarkCaught(25)
	col.MarkCaught(1)
	col.MarkSeen(4)
	st := model.Stats{TotalFocusMinutes: 75, TotalSessions: 4, TotalAttempts: 4}

	card := BuildCard(col, st)
	assert.Equal(t, "Focused Trainer", card.Rank)
	assert.Equal(t, "1h 15m", card.FocusTime)
	assert.Equal(t, 2, card.Caught)
	assert.Equal(t, 3, card.Seen)
	assert.Equal(t, 3, card.Catches)
	assert.Equal(t, 75, card.SuccessRate)
	assert.Equal(t, 750, card.Points)
	assert.Equal(t, 0, card.EarnedCount())

	var buf bytes.Buffer
	require.NoError(t, RenderTrainerCard(&buf, card))
	out := buf.String()
	assert.Contains(t, out, "Trainer Card")
	assert.Contains(t, out, "Focused Trainer")
	assert.Contains(t, out, "2 / 493")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "Badges (0/8)")
	assert.Contains(t, out, "[ ] Catch em All")
}
