package practice

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dailyfix/internal/cli"
	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/session"
	"github.com/julianstephens/dailyfix/internal/verify"
)

// SubmitMsg asks the parent to check an answer against today's pick.
type SubmitMsg struct {
	Today      session.Today
	Submission verify.Submission
}

// HintMsg asks for hint N, counting from 1.
type HintMsg struct{ N int }

type SolutionMsg struct{}

type GraceMsg struct{}

type KeyMap struct {
	Edit     key.Binding
	Submit   key.Binding
	Blur     key.Binding
	Up       key.Binding
	Down     key.Binding
	Choose   key.Binding
	Hint     key.Binding
	Solution key.Binding
	Grace    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Edit: key.NewBinding(
			key.WithKeys("enter", "i"),
			key.WithHelp("enter", "answer"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop editing"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev choice"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next choice"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Hint: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hint"),
		),
		Solution: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "solution"),
		),
		Grace: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "use grace"),
		),
	}
}

var (
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			MarginTop(1)
)

// Model shows today's challenge and collects an answer for it. fix_code
// answers are edited in a textarea prefilled with the broken code,
// fill_blank answers in a single-line input, and mcq answers by moving a
// cursor over the choices.
type Model struct {
	today   session.Today
	editor  textarea.Model
	input   textinput.Model
	cursor  int
	focused bool
	hints   int
	status  string
	keys    KeyMap
	width   int
	height  int
}

func New(width, height int) Model {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0

	ti := textinput.New()
	ti.Placeholder = "answer"
	ti.Prompt = "› "

	m := Model{editor: ta, input: ti, keys: DefaultKeyMap()}
	m.SetSize(width, height)
	return m
}

// SetToday loads a new pick and clears any previous answer. Reloading the
// same pick only refreshes the streak notices.
func (m *Model) SetToday(t session.Today) {
	same := t.Day == m.today.Day && t.Ordinal == m.today.Ordinal && t.Challenge.ID == m.today.Challenge.ID
	m.today = t
	if same {
		return
	}
	m.cursor = 0
	m.hints = 0
	m.status = ""
	m.Blur()
	m.input.SetValue("")
	m.editor.SetValue(strings.TrimRight(t.Challenge.Broken, "\n"))
}

func (m Model) Today() session.Today {
	return m.today
}

// SetStatus shows a message under the challenge.
func (m *Model) SetStatus(s string) {
	m.status = s
}

func (m Model) Status() string {
	return m.status
}

// Focused reports whether keystrokes go to the answer editor.
func (m Model) Focused() bool {
	return m.focused
}

func (m *Model) Focus() tea.Cmd {
	m.focused = true
	switch m.today.Challenge.Type {
	case constants.ChallengeFixCode:
		return m.editor.Focus()
	case constants.ChallengeFillBlank:
		return m.input.Focus()
	}
	return nil
}

func (m *Model) Blur() {
	m.focused = false
	m.editor.Blur()
	m.input.Blur()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if width > 4 {
		m.editor.SetWidth(width - 4)
		m.input.Width = width - 8
	}
	if height > 16 {
		m.editor.SetHeight(height - 16)
	}
}

// ShortHelp lists the bindings that apply in the current mode.
func (m Model) ShortHelp() []key.Binding {
	if m.focused {
		return []key.Binding{m.keys.Submit, m.keys.Blur}
	}
	keys := []key.Binding{m.keys.Hint, m.keys.Solution}
	if m.today.Challenge.Type == constants.ChallengeMCQ {
		keys = append([]key.Binding{m.keys.Up, m.keys.Down, m.keys.Choose}, keys...)
	} else {
		keys = append([]key.Binding{m.keys.Edit}, keys...)
	}
	if m.today.GraceOffered {
		keys = append(keys, m.keys.Grace)
	}
	return keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if m.focused {
		if ok {
			switch {
			case key.Matches(keyMsg, m.keys.Blur):
				m.Blur()
				return m, nil
			case key.Matches(keyMsg, m.keys.Submit):
				return m, m.submit(verify.Submission{Text: m.answerText()})
			}
		}
		var cmd tea.Cmd
		if m.today.Challenge.Type == constants.ChallengeFixCode {
			m.editor, cmd = m.editor.Update(msg)
		} else {
			m.input, cmd = m.input.Update(msg)
		}
		return m, cmd
	}

	if !ok {
		return m, nil
	}

	if m.today.Challenge.Type == constants.ChallengeMCQ {
		switch {
		case key.Matches(keyMsg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(keyMsg, m.keys.Down):
			if m.cursor < len(m.today.Challenge.Choices)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(keyMsg, m.keys.Choose):
			choice := m.cursor
			return m, m.submit(verify.Submission{Choice: &choice})
		}
	} else if key.Matches(keyMsg, m.keys.Edit) {
		return m, m.Focus()
	}

	switch {
	case key.Matches(keyMsg, m.keys.Hint):
		m.hints++
		n := m.hints
		return m, func() tea.Msg { return HintMsg{N: n} }
	case key.Matches(keyMsg, m.keys.Solution):
		return m, func() tea.Msg { return SolutionMsg{} }
	case key.Matches(keyMsg, m.keys.Grace):
		if m.today.GraceOffered {
			return m, func() tea.Msg { return GraceMsg{} }
		}
	}
	return m, nil
}

func (m Model) answerText() string {
	if m.today.Challenge.Type == constants.ChallengeFixCode {
		return m.editor.Value()
	}
	return m.input.Value()
}

func (m Model) submit(sub verify.Submission) tea.Cmd {
	t := m.today
	return func() tea.Msg { return SubmitMsg{Today: t, Submission: sub} }
}

func (m Model) View() string {
	ch := m.today.Challenge
	if ch.ID == "" {
		return "No challenge loaded."
	}

	var b strings.Builder
	for _, n := range cli.Notices(m.today) {
		fmt.Fprintln(&b, n)
	}

	header := fmt.Sprintf("%s  #%d today", m.today.Day, m.today.Ordinal+1)
	fmt.Fprintln(&b, cli.DimStyle.Render(header))
	fmt.Fprintln(&b, cli.TitleStyle.Render(ch.Title))
	fmt.Fprintln(&b, cli.DimStyle.Render(fmt.Sprintf("%s · %s · %s", ch.Language, ch.Type, ch.Difficulty)))
	fmt.Fprintln(&b)
	if ch.Prompt != "" {
		fmt.Fprintln(&b, ch.Prompt)
		fmt.Fprintln(&b)
	}

	switch ch.Type {
	case constants.ChallengeFixCode:
		b.WriteString(m.editor.View())
	case constants.ChallengeFillBlank:
		fmt.Fprintln(&b, cli.CodeStyle.Render(strings.TrimRight(ch.Template, "\n")))
		fmt.Fprintln(&b)
		b.WriteString(m.input.View())
	case constants.ChallengeMCQ:
		if ch.Code != "" {
			fmt.Fprintln(&b, cli.CodeStyle.Render(strings.TrimRight(ch.Code, "\n")))
			fmt.Fprintln(&b)
		}
		for i, choice := range ch.Choices {
			if i == m.cursor {
				fmt.Fprintln(&b, cursorStyle.Render(fmt.Sprintf("> %d) %s", i+1, choice)))
			} else {
				fmt.Fprintf(&b, "  %d) %s\n", i+1, choice)
			}
		}
	}

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	}
	return b.String()
}
