package settings

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dailyfix/internal/session"
)

type EditSettingsMsg struct{}

type ResetMsg struct{}

type Model struct {
	stats  session.Stats
	width  int
	height int
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(25)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			MarginTop(1).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			MarginTop(2)
)

func New(stats session.Stats, width, height int) Model {
	return Model{stats: stats, width: width, height: height}
}

func (m *Model) SetStats(stats session.Stats) {
	m.stats = stats
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "e":
			return m, func() tea.Msg { return EditSettingsMsg{} }
		case "R":
			return m, func() tea.Msg { return ResetMsg{} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	graceLeft := "no"
	if m.stats.GraceAvailable {
		graceLeft = "yes"
	}

	title := titleStyle.Render("Streak Settings")
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		fmt.Sprintf("%s %s", labelStyle.Render("Grace enabled:"), valueStyle.Render(fmt.Sprintf("%t", m.stats.GraceEnabled))),
		fmt.Sprintf("%s %s", labelStyle.Render("Grace remaining:"), valueStyle.Render(graceLeft)),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		sectionStyle.Render(title+"\n"+content),
		helpStyle.Render("Press 'e' to edit settings, 'R' to reset all progress"),
	)
}
