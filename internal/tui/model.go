package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dailyfix/internal/session"
	"github.com/julianstephens/dailyfix/internal/tui/components/history"
	"github.com/julianstephens/dailyfix/internal/tui/components/practice"
	"github.com/julianstephens/dailyfix/internal/tui/components/settings"
	"github.com/julianstephens/dailyfix/internal/tui/components/summary"
)

type SessionState int

const (
	StateHome SessionState = iota
	StateToday
	StateHistory
	StateSettings
	StateEditSettings
	StateConfirmReset
)

// tabCount is the number of states reachable with tab.
const tabCount = 4

const recentDays = 7

type SettingsFormModel struct {
	GraceEnabled bool
}

type Model struct {
	session       *session.Session
	state         SessionState
	keys          KeyMap
	help          help.Model
	summaryModel  summary.Model
	practiceModel practice.Model
	historyModel  history.Model
	settingsModel settings.Model
	form          *huh.Form
	settingsForm  *SettingsFormModel
	err           error
	quitting      bool
	width         int
	height        int
}

func NewModel(sess *session.Session) Model {
	m := Model{
		session:       sess,
		state:         StateToday,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		summaryModel:  summary.New(0, 0),
		practiceModel: practice.New(0, 0),
		historyModel:  history.New(nil, 0, 0),
		settingsModel: settings.New(sess.Stats(), 0, 0),
	}
	m.refresh()
	m.nextChallenge()
	return m
}

// refresh reloads every tab from the session.
func (m *Model) refresh() {
	stats := m.session.Stats()
	m.summaryModel.SetStats(stats, m.session.History(recentDays))
	m.historyModel.SetDays(m.session.History(0))
	m.settingsModel.SetStats(stats)
}

// nextChallenge moves the Today tab on to the current pick.
func (m *Model) nextChallenge() {
	m.practiceModel.SetToday(m.session.Today())
}

func (m Model) ShortHelp() []key.Binding {
	if m.state == StateToday && m.practiceModel.Focused() {
		return m.practiceModel.ShortHelp()
	}
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateToday:
		keys = append(keys, m.practiceModel.ShortHelp()...)
	case StateSettings:
		keys = append(keys, m.keys.Edit, m.keys.Reset)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right}

	var actions []key.Binding
	switch m.state {
	case StateToday:
		actions = m.practiceModel.ShortHelp()
	case StateSettings:
		actions = []key.Binding{m.keys.Edit, m.keys.Reset}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
