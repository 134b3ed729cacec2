package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/session"
	"github.com/julianstephens/dailyfix/internal/streak"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	DangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	CodeStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			PaddingLeft(1)
)

// RenderChallenge formats the challenge picked for today for the terminal.
func RenderChallenge(t session.Today) string {
	ch := t.Challenge
	var b strings.Builder

	header := fmt.Sprintf("%s  #%d today", t.Day, t.Ordinal+1)
	fmt.Fprintln(&b, DimStyle.Render(header))
	fmt.Fprintln(&b, TitleStyle.Render(ch.Title))
	meta := fmt.Sprintf("%s · %s · %s", ch.Language, ch.Type, ch.Difficulty)
	fmt.Fprintln(&b, DimStyle.Render(meta))
	fmt.Fprintln(&b)
	if ch.Prompt != "" {
		fmt.Fprintln(&b, ch.Prompt)
		fmt.Fprintln(&b)
	}

	switch ch.Type {
	case constants.ChallengeFixCode:
		fmt.Fprintln(&b, CodeStyle.Render(strings.TrimRight(ch.Broken, "\n")))
	case constants.ChallengeFillBlank:
		fmt.Fprintln(&b, CodeStyle.Render(strings.TrimRight(ch.Template, "\n")))
	case constants.ChallengeMCQ:
		if ch.Code != "" {
			fmt.Fprintln(&b, CodeStyle.Render(strings.TrimRight(ch.Code, "\n")))
			fmt.Fprintln(&b)
		}
		for i, choice := range ch.Choices {
			fmt.Fprintf(&b, "  %d) %s\n", i+1, choice)
		}
	}
	return b.String()
}

// Notices returns the grace and at-risk lines shown above today's
// challenge, if any.
func Notices(t session.Today) []string {
	var out []string
	if t.AtRisk {
		out = append(out, WarningStyle.Render(fmt.Sprintf("You missed a day. Your %d-day streak resets on your next completion.", t.Streak.Current)))
	}
	if t.GraceOffered {
		out = append(out, WarningStyle.Render("Grace is available: run 'dailyfix grace' to keep your streak once."))
	}
	if t.Streak.GraceUsedForDayKey != nil && *t.Streak.GraceUsedForDayKey == t.Day {
		out = append(out, DimStyle.Render("Grace is armed for today."))
	}
	return out
}

// RenderOutcome formats the result of a submission.
func RenderOutcome(out session.Outcome) string {
	if !out.Recorded {
		if out.Correct() {
			return SuccessStyle.Render(out.Message)
		}
		return WarningStyle.Render(out.Message)
	}

	line := SuccessStyle.Render(fmt.Sprintf("Correct! Completed today: %d ✅", out.CountToday))
	switch out.Transition {
	case streak.Started:
		line += "\n" + fmt.Sprintf("Streak started: 1 day. Best: %d", out.Streak.Best)
	case streak.Extended, streak.Graced:
		line += "\n" + fmt.Sprintf("Streak: %d days. Best: %d", out.Streak.Current, out.Streak.Best)
		if out.Transition == streak.Graced {
			line += DimStyle.Render(" (grace used)")
		}
	case streak.Reset:
		line += "\n" + fmt.Sprintf("Streak restarted: 1 day. Best: %d", out.Streak.Best)
	case streak.ClockSkew:
		line += "\n" + WarningStyle.Render("Your clock is behind the last credited day; the streak was left unchanged.")
	}
	return line
}
