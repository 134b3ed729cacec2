package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dailyfix/internal/cli"
	"github.com/julianstephens/dailyfix/internal/tui/components/practice"
	"github.com/julianstephens/dailyfix/internal/tui/components/settings"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle Edit Settings State
	if m.state == StateEditSettings {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
			m.state = StateSettings
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		switch m.form.State {
		case huh.StateCompleted:
			m.err = m.session.SetGraceEnabled(m.settingsForm.GraceEnabled)
			m.refresh()
			m.nextChallenge()
			m.state = StateSettings
		case huh.StateAborted:
			m.state = StateSettings
		}
		return m, cmd
	}

	// Handle Confirm Reset State
	if m.state == StateConfirmReset {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, m.keys.Confirm):
				m.err = m.session.Reset()
				m.refresh()
				m.nextChallenge()
				m.state = StateSettings
			case key.Matches(msg, m.keys.Cancel):
				m.state = StateSettings
			}
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		w, h := msg.Width-4, msg.Height-6
		m.summaryModel.SetSize(w, h)
		m.practiceModel.SetSize(w, h)
		m.historyModel.SetSize(w, h)
		m.settingsModel.SetSize(w, h)
		return m, nil

	case practice.SubmitMsg:
		out, err := m.session.Submit(msg.Today, msg.Submission)
		if err != nil {
			m.practiceModel.SetStatus(warningStyle.Render(err.Error()))
			return m, nil
		}
		if out.Recorded {
			m.refresh()
			m.nextChallenge()
		}
		m.practiceModel.SetStatus(cli.RenderOutcome(out))
		return m, nil

	case practice.HintMsg:
		ch := m.practiceModel.Today().Challenge
		m.practiceModel.SetStatus(fmt.Sprintf("Hint %d: %s", msg.N, m.session.Hint(ch, msg.N-1)))
		return m, nil

	case practice.SolutionMsg:
		ch := m.practiceModel.Today().Challenge
		m.practiceModel.SetStatus("Solution:\n" + cli.CodeStyle.Render(m.session.Solution(ch)))
		return m, nil

	case practice.GraceMsg:
		armed, err := m.session.ArmGrace()
		m.err = err
		m.refresh()
		m.nextChallenge()
		if armed {
			m.practiceModel.SetStatus(cli.SuccessStyle.Render("Grace armed. Solve today's challenge to keep your streak."))
		}
		return m, nil

	case settings.EditSettingsMsg:
		m.settingsForm = &SettingsFormModel{GraceEnabled: m.session.Stats().GraceEnabled}
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Enable grace").
					Description("Keep a streak alive once after a single missed day.").
					Affirmative("On").
					Negative("Off").
					Value(&m.settingsForm.GraceEnabled),
			),
		)
		m.state = StateEditSettings
		return m, m.form.Init()

	case settings.ResetMsg:
		m.state = StateConfirmReset
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		// Text entry and list filtering capture every other key
		if (m.state == StateToday && m.practiceModel.Focused()) ||
			(m.state == StateHistory && m.historyModel.Filtering()) {
			return m.updateActive(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.Right):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab), key.Matches(msg, m.keys.Left):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	return m.updateActive(msg)
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case StateHome:
		m.summaryModel, cmd = m.summaryModel.Update(msg)
	case StateToday:
		m.practiceModel, cmd = m.practiceModel.Update(msg)
	case StateHistory:
		m.historyModel, cmd = m.historyModel.Update(msg)
	case StateSettings:
		m.settingsModel, cmd = m.settingsModel.Update(msg)
	}
	return m, cmd
}
