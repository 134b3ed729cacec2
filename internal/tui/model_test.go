package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dailyfix/internal/calendar"
	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/models"
	"github.com/julianstephens/dailyfix/internal/session"
	"github.com/julianstephens/dailyfix/internal/storage"
	"github.com/julianstephens/dailyfix/internal/tui/components/practice"
)

var blankChallenge = models.Challenge{
	ID: "blank-1", Type: constants.ChallengeFillBlank, Language: "py", Difficulty: "easy",
	Title: "Length", Template: "n = __BLANK__(xs)", Answer: "len", Hints: []string{"A builtin."},
}

func newModel(t *testing.T) (Model, *session.Session) {
	t.Helper()
	clock := &calendar.FixedClock{T: time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)}
	sess, err := session.Open(session.Options{
		Storage: storage.NewJSONStore(filepath.Join(t.TempDir(), "dailyfix.json")),
		Clock:   clock,
		Catalog: []models.Challenge{blankChallenge},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sess.Close() })

	m := NewModel(sess)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), sess
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// answer focuses the input, types text and submits it.
func answer(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.practiceModel.Focused() {
		t.Fatal("expected the answer input to be focused")
	}
	m, _ = send(t, m, runes(text))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	msg, ok := cmd().(practice.SubmitMsg)
	if !ok {
		t.Fatal("expected a SubmitMsg")
	}
	m, _ = send(t, m, msg)
	return m
}

func TestTabNavigation(t *testing.T) {
	m, _ := newModel(t)
	if m.state != StateToday {
		t.Fatalf("expected to start on Today, got %d", m.state)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateHistory {
		t.Errorf("tab: got %d, want %d", m.state, StateHistory)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateHome {
		t.Errorf("tab should wrap to Home, got %d", m.state)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.state != StateSettings {
		t.Errorf("shift+tab should wrap to Settings, got %d", m.state)
	}

	if !strings.Contains(m.View(), "Settings") {
		t.Error("view should render the tab bar")
	}
}

func TestSubmitCorrectAnswer(t *testing.T) {
	m, sess := newModel(t)

	m = answer(t, m, "len")

	if got := sess.Stats().Today; got != 1 {
		t.Fatalf("completed today = %d, want 1", got)
	}
	if !strings.Contains(m.practiceModel.Status(), "Correct!") {
		t.Errorf("status = %q, want a success message", m.practiceModel.Status())
	}
	if m.practiceModel.Focused() {
		t.Error("input should be reset after a recorded answer")
	}
	if m.practiceModel.Today().Ordinal != 1 {
		t.Errorf("ordinal = %d, want 1 after one completion", m.practiceModel.Today().Ordinal)
	}
}

func TestSubmitWrongAnswer(t *testing.T) {
	m, sess := newModel(t)

	m = answer(t, m, "size")

	if got := sess.Stats().Today; got != 0 {
		t.Errorf("completed today = %d, want 0", got)
	}
	if m.practiceModel.Status() == "" {
		t.Error("expected feedback for a wrong answer")
	}
}

func TestQuitKeyWhileTyping(t *testing.T) {
	m, _ := newModel(t)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, runes("q"))
	if m.quitting {
		t.Fatal("typing q into the answer must not quit")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = send(t, m, runes("q"))
	if !m.quitting {
		t.Error("q should quit once the input is blurred")
	}
}

func TestHint(t *testing.T) {
	m, _ := newModel(t)

	m, cmd := send(t, m, runes("h"))
	if cmd == nil {
		t.Fatal("expected a hint command")
	}
	m, _ = send(t, m, cmd())
	if !strings.Contains(m.practiceModel.Status(), "A builtin.") {
		t.Errorf("status = %q, want the first hint", m.practiceModel.Status())
	}
}

func TestResetFromSettings(t *testing.T) {
	m, sess := newModel(t)
	m = answer(t, m, "len")

	m.state = StateSettings
	m, cmd := send(t, m, runes("R"))
	if cmd == nil {
		t.Fatal("expected a reset command")
	}
	m, _ = send(t, m, cmd())
	if m.state != StateConfirmReset {
		t.Fatalf("state = %d, want StateConfirmReset", m.state)
	}

	m, _ = send(t, m, runes("n"))
	if sess.Stats().Total != 1 {
		t.Fatal("declining must keep progress")
	}

	m.state = StateConfirmReset
	m, _ = send(t, m, runes("y"))
	if m.state != StateSettings {
		t.Errorf("state = %d, want StateSettings", m.state)
	}
	if st := sess.Stats(); st.Total != 0 || st.Current != 0 {
		t.Errorf("expected a reset store, got %+v", st)
	}
}
