package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/pomodex/internal/model"
	"github.com/verte-zerg/pomodex/internal/rarity"
)

const (
	sparkChars = " .:-=+*#%@"
	barWidth   = 30
)

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal-minVal < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[max(0, min(idx, len(sparkChars)-1))])
	}
	return b.String()
}

// DayTotal is the focus recorded on one local calendar day.
type DayTotal struct {
	Day      time.Time `json:"day"`
	Minutes  int       `json:"minutes"`
	Sessions int       `json:"sessions"`
	Catches  int       `json:"catches"`
}

// DailyFocus buckets sessions into the last days local calendar days ending
// on the day of now, oldest first. Days without sessions are zero.
func DailyFocus(sessions []model.SessionRecord, days int, now time.Time) []DayTotal {
	if days <= 0 {
		return nil
	}
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	out := make([]DayTotal, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-days+1)
		out[i].Day = day
		index[day.Format(time.DateOnly)] = i
	}
	for _, s := range sessions {
		i, ok := index[s.EndedAt.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		out[i].Minutes += s.DurationMinutes
		out[i].Sessions++
		if s.Caught {
			out[i].Catches++
		}
	}
	return out
}

// CatchCurve returns the moving catch rate in percent, one point per session.
func CatchCurve(sessions []model.SessionRecord, window int) []float64 {
	values := make([]float64, len(sessions))
	for i, s := range sessions {
		if s.Caught {
			values[i] = 100
		}
	}
	return MovingAverage(values, window)
}

// RenderDailyFocus prints one bar per day scaled to the busiest day.
func RenderDailyFocus(w io.Writer, days []DayTotal) error {
	if _, err := fmt.Fprintln(w, "Daily Focus"); err != nil {
		return err
	}
	peak := 0
	minutes := make([]float64, len(days))
	for i, d := range days {
		peak = max(peak, d.Minutes)
		minutes[i] = float64(d.Minutes)
	}
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("#", int(math.Round(float64(d.Minutes)/float64(peak)*barWidth)))
		}
		rows = append(rows, []string{
			d.Day.Format("Mon 01-02"),
			fmt.Sprintf("%dm", d.Minutes),
			fmt.Sprintf("%d caught", d.Catches),
			bar,
		})
	}
	for _, line := range formatTable(nil, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(days) > 1 {
		if _, err := fmt.Fprintf(w, "Trend %s\n", Sparkline(minutes)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderOdds prints the per-tier encounter odds of table.
func RenderOdds(w io.Writer, table rarity.Table) error {
	if _, err := fmt.Fprintln(w, "Encounter Odds"); err != nil {
		return err
	}
	odds := table.TierOdds()
	rows := make([][]string, 0, len(odds))
	for _, o := range odds {
		rows = append(rows, []string{
			strings.ToUpper(o.Tier.String()),
			fmt.Sprintf("%.0f%%", o.Percent),
			fmt.Sprintf("%d Pokemon", o.Count),
		})
	}
	for _, line := range formatTable([]string{"Tier", "Odds", "Pool"}, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
