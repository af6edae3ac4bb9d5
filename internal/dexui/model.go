// Package dexui provides the Bubble Tea Pokedex browser.
package dexui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/pomodex/internal/model"
	"github.com/verte-zerg/pomodex/internal/rarity"
	"github.com/verte-zerg/pomodex/internal/roster"
	"github.com/verte-zerg/pomodex/internal/stats"
)

const (
	tabDex = iota
	tabCard
	tabHistory
	tabOdds
)

// Show restricts the Pokedex table.
type Show int

// Show modes, cycled with "f".
const (
	ShowAll Show = iota
	ShowSeen
	ShowCaught
)

func (s Show) String() string {
	switch s {
	case ShowSeen:
		return "seen"
	case ShowCaught:
		return "caught"
	default:
		return "all"
	}
}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea Pokedex UI.
type Model struct {
	src stats.Source
	now func() time.Time

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	dexTable  table.Model
	rowIDs    []model.CreatureID

	width  int
	height int

	search     textinput.Model
	searchMode bool
	show       Show
}

// NewModel constructs a Pokedex UI reading from src. term pre-fills the
// name search.
func NewModel(src stats.Source, term string) *Model {
	m := &Model{
		src:  src,
		now:  time.Now,
		tabs: []string{"Pokedex", "Trainer Card", "History", "Odds"},
	}
	m.search = textinput.New()
	m.search.Prompt = "Search: "
	m.search.Placeholder = "name or number"
	m.search.Cursor.SetMode(cursor.CursorBlink)
	m.search.SetValue(strings.TrimSpace(term))
	m.dexTable = table.New(table.WithStyles(dexTableStyles()), table.WithFocused(true))
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.searchMode {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			m.searchMode = true
			m.activeTab = tabDex
			return m, m.search.Focus()
		case "f":
			m.show = (m.show + 1) % 3
			m.applyRows()
			return m, nil
		case "R":
			m.refreshReport()
			return m, nil
		case "g", "home":
			if m.activeTab == tabDex {
				m.dexTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabDex {
				m.dexTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabDex {
				m.dexTable, cmd = m.dexTable.Update(msg)
				return m, cmd
			}
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchMode = false
		m.search.SetValue("")
		m.search.Blur()
		m.applyRows()
		return m, nil
	case tea.KeyEnter:
		m.searchMode = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyRows()
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.dexTable.SetWidth(m.width)
	// The header row and its border take two lines.
	m.dexTable.SetHeight(max(1, bodyHeight-2))
	m.search.Width = max(10, m.width-lipgloss.Width(m.search.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabDex {
		m.dexTable.Focus()
	} else {
		m.dexTable.Blur()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.src, m.now())
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load the Pokedex.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	m.applyRows()
	m.renderTabContents()
}

func (m *Model) applyRows() {
	ids := matchIDs(m.search.Value())
	rows := make([]table.Row, 0, len(ids))
	m.rowIDs = m.rowIDs[:0]
	for _, id := range ids {
		rec := m.report.Collection.Record(id)
		switch m.show {
		case ShowSeen:
			if !rec.Seen {
				continue
			}
		case ShowCaught:
			if !rec.Caught {
				continue
			}
		}
		rows = append(rows, dexRow(id, rec))
		m.rowIDs = append(m.rowIDs, id)
	}
	m.dexTable.SetColumns(dexColumns())
	m.dexTable.SetRows(rows)
	if m.dexTable.Cursor() >= len(rows) {
		m.dexTable.GotoTop()
	}
}

// matchIDs resolves a search term: a number selects that id, anything else
// is a name prefix.
func matchIDs(term string) []model.CreatureID {
	term = strings.TrimPrefix(strings.TrimSpace(term), "#")
	if n, err := strconv.Atoi(term); err == nil {
		id := model.CreatureID(n)
		if model.ValidCreature(id) {
			return []model.CreatureID{id}
		}
		return nil
	}
	return roster.Filter(term)
}

const nameWidth = 14

func dexColumns() []table.Column {
	return []table.Column{
		{Title: "No.", Width: 5},
		{Title: "Name", Width: nameWidth},
		{Title: "Tier", Width: 10},
		{Title: "Status", Width: 7},
		{Title: "Caught", Width: 6},
	}
}

func dexRow(id model.CreatureID, rec model.CollectionRecord) table.Row {
	status := "-"
	switch {
	case rec.Caught:
		status = "caught"
	case rec.Seen:
		status = "seen"
	}
	count := ""
	if rec.CaughtCount > 0 {
		count = strconv.Itoa(rec.CaughtCount)
	}
	return table.Row{
		fmt.Sprintf("#%03d", id),
		roster.PadName(roster.Name(id), nameWidth),
		rarity.TierOf(id).String(),
		status,
		count,
	}
}

func dexTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabCard].SetContent(renderCard(m.report.Card, width))
	m.viewports[tabHistory].SetContent(renderHistory(m.report))
	m.viewports[tabOdds].SetContent(renderText(func(buf *bytes.Buffer) error {
		return stats.RenderOdds(buf, rarity.Default())
	}))
}

func renderCard(c stats.Card, width int) string {
	cards := []string{
		metricCard("Rank", c.Rank),
		metricCard("Focus Time", c.FocusTime),
		metricCard("Caught", fmt.Sprintf("%d / %d", c.Caught, model.RosterSize)),
		metricCard("Seen", fmt.Sprintf("%d / %d", c.Seen, model.RosterSize)),
		metricCard("Catch Rate", fmt.Sprintf("%d%%", c.SuccessRate)),
		metricCard("Points", fmt.Sprintf("%dP", c.Points)),
	}
	var grid string
	if width < 80 {
		grid = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		grid = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	badges := make([]string, 0, len(c.Badges))
	for _, b := range c.Badges {
		mark := "[ ]"
		if b.Earned {
			mark = "[x]"
		}
		badges = append(badges, mark+" "+b.Name)
	}
	title := cardTitleStyle.Render(fmt.Sprintf("Badges (%d/%d)", c.EarnedCount(), len(c.Badges)))
	return grid + "\n\n" + title + "\n" + strings.Join(badges, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderHistory(r stats.Report) string {
	if len(r.Sessions) == 0 {
		return "No sessions found."
	}
	return renderText(func(buf *bytes.Buffer) error {
		if err := stats.RenderDailyFocus(buf, r.Daily); err != nil {
			return err
		}
		if len(r.CatchCurve) > 1 {
			_, err := fmt.Fprintf(buf, "Catch rate (%d-session average)\n%s\n", stats.CatchCurveWindow, stats.Sparkline(r.CatchCurve))
			return err
		}
		return nil
	})
}

func renderText(fn func(*bytes.Buffer) error) string {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	if m.searchMode {
		return tabs + "\n" + m.search.View()
	}
	term := m.search.Value()
	if term == "" {
		term = "any"
	}
	summary := fmt.Sprintf("Search: %s  Show: %s  Entries: %d  Caught: %d/%d",
		term, m.show, len(m.rowIDs), m.report.Collection.CaughtTotal(), model.RosterSize)
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderBody() string {
	if m.activeTab == tabDex {
		if len(m.rowIDs) == 0 {
			return "No Pokemon match."
		}
		return tableMutedStyle.Render(m.dexTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down  Search: /  Filter: f  Reload: R  Quit: q"
	if m.searchMode {
		help = "enter: keep search  esc: clear  ctrl+c: quit"
	}
	out := headerStyle.Render(help)
	if m.errMsg != "" {
		out += "\n" + errorStyle.Render(m.errMsg)
	}
	return out
}

// Selected returns the creature under the table cursor.
func (m *Model) Selected() (model.CreatureID, bool) {
	i := m.dexTable.Cursor()
	if i < 0 || i >= len(m.rowIDs) {
		return 0, false
	}
	return m.rowIDs[i], true
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
