package summary

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/dailyfix/internal/session"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	recentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model renders streak and ledger totals in a scrollable viewport.
type Model struct {
	viewport viewport.Model
	stats    *session.Stats
	recent   []session.DaySummary
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.stats == nil {
		return "No progress loaded."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetStats(stats session.Stats, recent []session.DaySummary) {
	m.stats = &stats
	m.recent = recent
	m.Render()
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func (m *Model) Render() {
	if m.stats == nil {
		m.viewport.SetContent("No progress loaded.")
		return
	}
	st := m.stats

	var b strings.Builder
	b.WriteString(row("Current streak", fmt.Sprintf("%d days", st.Current)))
	b.WriteString(row("Best streak", fmt.Sprintf("%d days", st.Best)))
	b.WriteString(row("Completed today", humanize.Comma(int64(st.Today))))
	b.WriteString(row("Total solved", humanize.Comma(int64(st.Total))))
	b.WriteString(row("Days practiced", humanize.Comma(int64(st.Days))))

	grace := "off"
	switch {
	case !st.GraceEnabled:
	case st.GracePending != nil:
		grace = "armed for " + st.GracePending.String()
	case st.GraceAvailable:
		grace = "available"
	default:
		grace = "used"
	}
	b.WriteString(row("Grace", grace))

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, d := range m.recent {
			b.WriteString(recentStyle.Render(fmt.Sprintf("%s  %d solved", d.Day, len(d.Records))))
			b.WriteString("\n")
		}
	}
	m.viewport.SetContent(b.String())
}
