package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateHome:
		content = docStyle.Render(m.summaryModel.View())
	case StateToday:
		content = docStyle.Render(m.practiceModel.View())
	case StateHistory:
		content = docStyle.Render(m.historyModel.View())
	case StateSettings:
		content = docStyle.Render(m.settingsModel.View())
	case StateEditSettings:
		content = docStyle.Render(m.form.View())
	case StateConfirmReset:
		content = m.viewConfirmReset()
	}

	var banner string
	if m.err != nil {
		banner = warningStyle.Render("⚠ " + m.err.Error())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		banner,
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	active := m.state
	switch active {
	case StateEditSettings, StateConfirmReset:
		active = StateSettings
	}
	for i, title := range []string{"Home", "Today", "History", "Settings"} {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewConfirmReset() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Erase every completion and your streak?"),
			"",
			"Export first with 'dailyfix export' if you want a copy.",
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
