package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/pomodex/internal/model"
)

// Rank thresholds in focus minutes, highest first.
var ranks = []struct {
	minutes int
	title   string
}{
	{1000, "Master Trainer"},
	{500, "Elite Focus"},
	{200, "Ace Student"},
	{60, "Focused Trainer"},
	{0, "Rookie Trainer"},
}

// Rank returns the trainer title for a lifetime focus total.
func Rank(totalFocusMinutes int) string {
	for _, r := range ranks {
		if totalFocusMinutes >= r.minutes {
			return r.title
		}
	}
	return ranks[len(ranks)-1].title
}

// Badge is a milestone and whether it has been reached.
type Badge struct {
	Name   string `json:"name"`
	Earned bool   `json:"earned"`
}

// Badges evaluates every milestone, in display order.
func Badges(st model.Stats, caughtTotal int) []Badge {
	return []Badge{
		{"10 Sessions", st.TotalSessions >= 10},
		{"50 Sessions", st.TotalSessions >= 50},
		{"100 Sessions", st.TotalSessions >= 100},
		{"24hr Focus", st.TotalFocusMinutes >= 1440},
		{"100hr Focus", st.TotalFocusMinutes >= 6000},
		{"50 Caught", caughtTotal >= 50},
		{"150 Caught", caughtTotal >= 150},
		{"Catch em All", caughtTotal >= model.RosterSize},
	}
}

// SuccessRate is catches per session as a rounded percentage.
func SuccessRate(catches, sessions int) int {
	if sessions <= 0 {
		return 0
	}
	return int(math.Round(float64(catches) / float64(sessions) * 100))
}

// FormatFocusTime renders minutes as "Xh Ym".
func FormatFocusTime(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// Points are the cosmetic score shown on the trainer card.
func Points(totalFocusMinutes int) int {
	return totalFocusMinutes * 10
}

// Card is the trainer card summary.
type Card struct {
	Rank        string  `json:"rank"`
	FocusTime   string  `json:"focus_time"`
	Stats       Totals  `json:"stats"`
	Caught      int     `json:"caught"`
	Seen        int     `json:"seen"`
	Catches     int     `json:"catches"`
	SuccessRate int     `json:"success_rate"`
	Points      int     `json:"points"`
	Badges      []Badge `json:"badges"`
}

// Totals mirrors model.Stats with JSON names.
type Totals struct {
	FocusMinutes int `json:"total_focus_minutes"`
	Sessions     int `json:"total_sessions"`
	Attempts     int `json:"total_attempts"`
}

// BuildCard summarizes a trainer's collection and counters.
func BuildCard(col model.Collection, st model.Stats) Card {
	caught := col.CaughtTotal()
	catches := col.CatchesTotal()
	return Card{
		Rank:      Rank(st.TotalFocusMinutes),
		FocusTime: FormatFocusTime(st.TotalFocusMinutes),
		Stats: Totals{
			FocusMinutes: st.TotalFocusMinutes,
			Sessions:     st.TotalSessions,
			Attempts:     st.TotalAttempts,
		},
		Caught:      caught,
		Seen:        col.SeenTotal(),
		Catches:     catches,
		SuccessRate: SuccessRate(catches, st.TotalSessions),
		Points:      Points(st.TotalFocusMinutes),
		Badges:      Badges(st, caught),
	}
}

// EarnedCount returns how many badges are earned.
func (c Card) EarnedCount() int {
	n := 0
	for _, b := range c.Badges {
		if b.Earned {
			n++
		}
	}
	return n
}

// RenderTrainerCard prints the card as plain text.
func RenderTrainerCard(w io.Writer, c Card) error {
	if _, err := fmt.Fprintln(w, "Trainer Card"); err != nil {
		return err
	}
	rows := [][]string{
		{"Rank", c.Rank},
		{"Focus Time", c.FocusTime},
		{"Pokedex Caught", fmt.Sprintf("%d / %d", c.Caught, model.RosterSize)},
		{"Pokedex Seen", fmt.Sprintf("%d / %d", c.Seen, model.RosterSize)},
		{"Sessions", fmt.Sprintf("%d", c.Stats.Sessions)},
		{"Catch Rate", fmt.Sprintf("%d%%", c.SuccessRate)},
		{"Points", fmt.Sprintf("%dP", c.Points)},
	}
	for _, line := range formatTable(nil, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Badges (%d/%d)\n", c.EarnedCount(), len(c.Badges)); err != nil {
		return err
	}
	marks := make([]string, 0, len(c.Badges))
	for _, b := range c.Badges {
		mark := "[ ]"
		if b.Earned {
			mark = "[x]"
		}
		marks = append(marks, mark+" "+b.Name)
	}
	if _, err := fmt.Fprintln(w, strings.Join(marks, "\n")); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
