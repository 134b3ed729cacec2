package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dailyfix/internal/session"
)

type Item struct {
	Summary session.DaySummary
}

func (i Item) Title() string {
	n := len(i.Summary.Records)
	if n == 1 {
		return fmt.Sprintf("%s  1 completion", i.Summary.Day)
	}
	return fmt.Sprintf("%s  %d completions", i.Summary.Day, n)
}

func (i Item) Description() string {
	ids := make([]string, len(i.Summary.Records))
	for j, r := range i.Summary.Records {
		ids[j] = fmt.Sprintf("%s (%s)", r.ChallengeID, r.Difficulty)
	}
	return strings.Join(ids, ", ")
}

func (i Item) FilterValue() string { return i.Summary.Day.String() }

// Model lists days with completions, newest first.
type Model struct {
	list list.Model
}

func New(days []session.DaySummary, width, height int) Model {
	l := list.New(items(days), list.NewDefaultDelegate(), width, height)
	l.Title = "History"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	return Model{list: l}
}

func items(days []session.DaySummary) []list.Item {
	out := make([]list.Item, len(days))
	for i, d := range days {
		out[i] = Item{Summary: d}
	}
	return out
}

func (m *Model) SetDays(days []session.DaySummary) {
	m.list.SetItems(items(days))
}

// Filtering reports whether the list is capturing keys for its filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No completions yet.\n  Solve today's challenge to start a streak."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
