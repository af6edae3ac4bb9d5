package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/pomodex/internal/model"
	"github.com/verte-zerg/pomodex/internal/rarity"
	"github.com/verte-zerg/pomodex/internal/store"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{0, 100, 100, 0}, 2)
	assert.Equal(t, []float64{0, 50, 100, 50}, got)
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 1))
	assert.Empty(t, MovingAverage(nil, 3))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "+++", Sparkline([]float64{4, 4, 4}))
	line := Sparkline([]float64{0, 50, 100})
	assert.Len(t, line, 3)
	assert.Equal(t, byte(' '), line[0])
	assert.Equal(t, byte('@'), line[2])
}

func TestDailyFocusBuckets(t *testing.T) {
	now := time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC)
	sessions := []model.SessionRecord{
		{EndedAt: now.Add(-50 * time.Hour), DurationMinutes: 25},
		{EndedAt: now.Add(-26 * time.Hour), DurationMinutes: 25, Caught: true},
		{EndedAt: now.Add(-25 * time.Hour), DurationMinutes: 10},
		{EndedAt: now.Add(-time.Hour), DurationMinutes: 60, Caught: true},
		{EndedAt: now.Add(-30 * 24 * time.Hour), DurationMinutes: 5},
	}
	days := DailyFocus(sessions, 3, now)
	require.Len(t, days, 3)
	assert.Equal(t, time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC), days[0].Day)
	assert.Equal(t, 25, days[0].Minutes)
	assert.Equal(t, 35, days[1].Minutes)
	assert.Equal(t, 2, days[1].Sessions)
	assert.Equal(t, 1, days[1].Catches)
	assert.Equal(t, 60, days[2].Minutes)
	assert.Nil(t, DailyFocus(sessions, 0, now))
}

func TestCatchCurve(t *testing.T) {
	sessions := []model.SessionRecord{{Caught: true}, {Caught: false}, {Caught: true}}
	assert.Equal(t, []float64{100, 50, 50}, CatchCurve(sessions, 2))
}

func TestRenderDailyFocus(t *testing.T) {
	days := []DayTotal{
		{Day: time.Date(2026, 6, 9, 0, 0, 0, 0, time.UTC), Minutes: 30},
		{Day: time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), Minutes: 60, Catches: 2},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderDailyFocus(&buf, days))
	out := buf.String()
	assert.Contains(t, out, "Daily Focus")
	assert.Contains(t, out, strings.Repeat("#", barWidth))
	assert.Contains(t, out, "2 caught")
	assert.Contains(t, out, "Trend")
}

func TestRenderOdds(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderOdds(&buf, rarity.Default()))
	out := buf.String()
	assert.Contains(t, out, "COMMON")
	assert.Contains(t, out, "60%")
	assert.Contains(t, out, "MYTHICAL")
	assert.Contains(t, out, "9 Pokemon")
}

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "pomodex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	ts := st.ForTrainer("ash")

	ctx := context.Background()
	y, m, d := time.Now().Date()
	now := time.Date(y, m, d, 12, 0, 0, 0, time.Local)
	require.NoError(t, ts.MarkCaught(ctx, 25))
	for i := 0; i < 3; i++ {
		require.NoError(t, ts.RecordSessionCompletion(ctx, 25))
		require.NoError(t, ts.AppendSession(ctx, model.SessionRecord{
			EndedAt:         now.Add(-time.Duration(i) * time.Minute),
			DurationMinutes: 25,
			Creature:        25,
			Caught:          i == 0,
			ChancePercent:   62.8,
		}))
	}

	report, err := BuildReport(ctx, ts, now)
	require.NoError(t, err)
	assert.Equal(t, 75, report.Stats.TotalFocusMinutes)
	assert.Equal(t, 1, report.Card.Caught)
	assert.Equal(t, 33, report.Card.SuccessRate)
	require.Len(t, report.Sessions, 3)
	require.Len(t, report.Daily, ReportDays)
	assert.Equal(t, 75, report.Daily[ReportDays-1].Minutes)
	assert.Len(t, report.CatchCurve, 3)

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf))
	assert.Contains(t, buf.String(), "Trainer Card")
	assert.Contains(t, buf.String(), "Daily Focus")
	assert.Contains(t, buf.String(), "Encounter Odds")
}

type plainSource struct{}

func (plainSource) LoadCollection(context.Context) (model.Collection, error) {
	return model.NewCollection(), nil
}

func (plainSource) LoadStats(context.Context) (model.Stats, error) {
	return model.Stats{}, nil
}

func TestBuildReportWithoutHistory(t *testing.T) {
	report, err := BuildReport(context.Background(), plainSource{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, report.Daily)
	assert.Equal(t, "Rookie Trainer", report.Card.Rank)
}
