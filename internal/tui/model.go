// Package tui provides the Bubble Tea battle screen.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/pomodex/internal/battle"
	"github.com/verte-zerg/pomodex/internal/catch"
	"github.com/verte-zerg/pomodex/internal/model"
	"github.com/verte-zerg/pomodex/internal/rarity"
	"github.com/verte-zerg/pomodex/internal/roster"
	"github.com/verte-zerg/pomodex/internal/timer"
)

const (
	tickInterval   = time.Second
	noticeDuration = 5 * time.Second
	hpBarWidth     = 40
)

type tickMsg struct {
	run timer.Token
}

type clearNoticeMsg struct {
	seq int
}

// Model implements the Bubble Tea battle UI.
type Model struct {
	orch     *battle.Orchestrator
	dispatch *Dispatcher
	log      *zap.Logger

	keys keyMap
	help help.Model
	hp   progress.Model

	width  int
	height int

	notice    battle.Notification
	noticeSeq int
	catching  bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	timerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCC00"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 2)
	noticeStyles = map[battle.Kind]lipgloss.Style{
		battle.KindInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		battle.KindSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true),
		battle.KindFailure: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true),
		battle.KindWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
	}
	tierStyles = map[model.Tier]lipgloss.Style{
		model.TierCommon:    lipgloss.NewStyle().Foreground(lipgloss.Color("#BFBFBF")),
		model.TierUncommon:  lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")),
		model.TierRare:      lipgloss.NewStyle().Foreground(lipgloss.Color("#1890FF")),
		model.TierLegendary: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFCC00")),
		model.TierMythical:  lipgloss.NewStyle().Foreground(lipgloss.Color("#EB2F96")),
	}
)

// NewModel constructs the battle UI around a started orchestrator whose
// Dispatch is d.Send.
func NewModel(orch *battle.Orchestrator, d *Dispatcher, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		orch:     orch,
		dispatch: d,
		log:      logger,
		keys:     defaultKeys(),
		help:     help.New(),
		hp:       progress.New(progress.WithGradient("#FF4D4F", "#52C41A"), progress.WithoutPercentage(), progress.WithWidth(hpBarWidth)),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.dispatch.wait()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		return m, m.handleTick(msg.run)
	case revealMsg:
		cmd := m.handleReveal(battle.Reveal(msg))
		return m, tea.Batch(cmd, m.dispatch.wait())
	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = battle.Notification{}
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.orch.Cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		if run, started := m.orch.Toggle(); started {
			return m, tick(run)
		}
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		m.catching = false
		return m, m.show(m.orch.Reset())
	case key.Matches(msg, m.keys.Reroll):
		n, err := m.orch.Reroll(ctx)
		if err != nil {
			m.log.Info("re-roll refused", zap.Error(err))
		}
		return m, m.show(n)
	case key.Matches(msg, m.keys.Longer):
		m.orch.SetDuration(ctx, m.orch.Session().Config.DurationMinutes+model.DurationStepMinutes)
		return m, nil
	case key.Matches(msg, m.keys.Shorter):
		m.orch.SetDuration(ctx, m.orch.Session().Config.DurationMinutes-model.DurationStepMinutes)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleTick(run timer.Token) tea.Cmd {
	if c := m.orch.Tick(context.Background(), run); c != nil {
		m.catching = true
		return m.show(c.Notification)
	}
	t := m.orch.Timer()
	if t.Active() && t.Run() == run {
		return tick(run)
	}
	return nil
}

func (m *Model) handleReveal(r battle.Reveal) tea.Cmd {
	n, applied := m.orch.ApplyReveal(context.Background(), r)
	if !applied {
		return nil
	}
	m.catching = false
	if n.Title == "" {
		return nil
	}
	return m.show(n)
}

func (m *Model) show(n battle.Notification) tea.Cmd {
	m.notice = n
	m.noticeSeq++
	seq := m.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

func tick(run timer.Token) tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{run: run} })
}

// View implements tea.Model.
func (m *Model) View() string {
	sess := m.orch.Session()
	t := m.orch.Timer()
	id := sess.Creature
	tier := rarity.TierOf(id)

	name := strings.ToUpper(roster.Name(id))
	header := titleStyle.Render("Wild "+name) + "  " +
		labelStyle.Render(fmt.Sprintf("#%03d", int(id))) + "  " +
		tierStyles[tier].Render(strings.ToUpper(tier.String()))
	if rec := sess.Collection.Record(id); rec.Caught {
		header += "  " + labelStyle.Render(fmt.Sprintf("(caught x%d)", rec.CaughtCount))
	}

	hpPct := catch.HPRemainingPercent(t.Elapsed(), t.Total(), t.Minutes())
	hpLine := labelStyle.Render("HP ") + m.hp.ViewAs(hpPct/100) + labelStyle.Render(fmt.Sprintf(" %3.0f%%", hpPct))

	clock := timerStyle.Render(timer.Format(t.Snapshot().RemainingSeconds)) + "  " + labelStyle.Render(m.stateLabel())

	lines := []string{header, hpLine, "", clock, "", panelStyle.Render(m.renderBattleStats()), ""}
	if m.notice.Title != "" {
		style, ok := noticeStyles[m.notice.Kind]
		if !ok {
			style = noticeStyles[battle.KindInfo]
		}
		lines = append(lines, style.Render(m.notice.Title), labelStyle.Render(m.notice.Message))
	} else {
		lines = append(lines, "", "")
	}
	lines = append(lines, "", m.renderFooter(), m.help.View(m.keys))
	content := lipgloss.JoinVertical(lipgloss.Left, lines...)

	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) stateLabel() string {
	if m.catching || m.orch.RevealPending() {
		return "throwing a ball..."
	}
	switch m.orch.Timer().State() {
	case timer.Running:
		return "battling"
	case timer.Paused:
		return "paused"
	case timer.Completed:
		return "battle over"
	default:
		return "ready"
	}
}

func (m *Model) renderBattleStats() string {
	sess := m.orch.Session()
	t := m.orch.Timer()
	// Odds follow the run in progress, not a length queued for the next one.
	minutes := t.Minutes()
	length := fmt.Sprintf("%d min", minutes)
	if next := t.ConfiguredMinutes(); next != minutes {
		length += fmt.Sprintf(" (next %d)", next)
	}
	rows := [][2]string{
		{"Rarity", strings.ToUpper(rarity.TierOf(sess.Creature).String())},
		{"Catch", fmt.Sprintf("%.1f%%", catch.ChancePercent(minutes))},
		{"HP Drain", fmt.Sprintf("%.1f%%", catch.HPDrainPercent(minutes))},
		{"Timer", length},
		{"Rerolls", fmt.Sprintf("%d left", m.orch.RerollsLeft())},
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = labelStyle.Render(fmt.Sprintf("%-9s", r[0])) + " " + r[1]
	}
	return strings.Join(out, "\n")
}

func (m *Model) renderFooter() string {
	sess := m.orch.Session()
	segments := []string{
		fmt.Sprintf("Pokedex %d/%d", sess.Collection.CaughtTotal(), model.RosterSize),
		fmt.Sprintf("Seen %d", sess.Collection.SeenTotal()),
		fmt.Sprintf("Sessions %d", sess.Stats.TotalSessions),
		fmt.Sprintf("Focus %dm", sess.Stats.TotalFocusMinutes),
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
