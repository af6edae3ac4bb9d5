package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/pomodex/internal/model"
	"github.com/verte-zerg/pomodex/internal/rarity"
)

// Defaults for history-based charts.
const (
	ReportDays       = 14
	ReportSessions   = 200
	CatchCurveWindow = 10
)

// Source is the read side of a collection store.
type Source interface {
	LoadCollection(ctx context.Context) (model.Collection, error)
	LoadStats(ctx context.Context) (model.Stats, error)
}

// HistorySource is implemented by stores that keep a session log.
type HistorySource interface {
	ListSessions(ctx context.Context, limit int) ([]model.SessionRecord, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Collection model.Collection
	Stats      model.Stats
	Card       Card
	Sessions   []model.SessionRecord
	Daily      []DayTotal
	CatchCurve []float64
}

// BuildReport loads the trainer's data. History is optional and only read
// when src implements HistorySource.
func BuildReport(ctx context.Context, src Source, now time.Time) (Report, error) {
	col, err := src.LoadCollection(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load collection: %w", err)
	}
	st, err := src.LoadStats(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load stats: %w", err)
	}
	r := Report{Collection: col, Stats: st, Card: BuildCard(col, st)}
	if h, ok := src.(HistorySource); ok {
		sessions, err := h.ListSessions(ctx, ReportSessions)
		if err != nil {
			return Report{}, fmt.Errorf("failed to load sessions: %w", err)
		}
		r.Sessions = sessions
		r.Daily = DailyFocus(sessions, ReportDays, now)
		r.CatchCurve = CatchCurve(sessions, CatchCurveWindow)
	}
	return r, nil
}

// Render prints the full plain-text report.
func (r Report) Render(w io.Writer) error {
	if err := RenderTrainerCard(w, r.Card); err != nil {
		return err
	}
	if len(r.Daily) > 0 {
		if err := RenderDailyFocus(w, r.Daily); err != nil {
			return err
		}
	}
	if len(r.CatchCurve) > 1 {
		if _, err := fmt.Fprintf(w, "Catch rate (last %d sessions, %d-session average)\n%s\n\n",
			len(r.CatchCurve), CatchCurveWindow, Sparkline(r.CatchCurve)); err != nil {
			return err
		}
	}
	return RenderOdds(w, rarity.Default())
}
