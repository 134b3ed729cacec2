package practice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dailyfix/internal/cli"
	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/session"
	"github.com/julianstephens/dailyfix/internal/verify"
)

// ErrNotSolved is returned by check when the answer is rejected so scripts
// see a non-zero exit.
var ErrNotSolved = errors.New("challenge not solved")

// TodayCmd shows today's challenge and, on a terminal, prompts for an
// answer until it is solved or the prompt is dismissed.
type TodayCmd struct {
	NoInput bool `help:"Only print the challenge, do not prompt for an answer."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	interactive := !c.NoInput && ctx.Interactive()
	if interactive {
		// the store must not be read before the lock is held
		if err := ctx.Lock(); err != nil {
			return err
		}
	}

	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	today := sess.Today()
	for _, n := range cli.Notices(today) {
		fmt.Println(n)
	}
	fmt.Println(cli.RenderChallenge(today))

	if !interactive {
		return nil
	}

	if today.GraceOffered {
		use, err := ctx.Confirm("Use your one-time grace?", "Your streak continues as if you had not missed a day. Grace cannot be earned back.")
		if err != nil {
			return err
		}
		if use {
			if _, err := sess.ArmGrace(); err != nil {
				return err
			}
			today = sess.Today()
			fmt.Println(cli.DimStyle.Render("Grace is armed for today."))
		}
	}

	for {
		sub, ok, err := prompt(today)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		out, err := sess.Submit(today, sub)
		if err != nil {
			return err
		}
		fmt.Println(cli.RenderOutcome(out))
		if out.Recorded {
			return nil
		}
	}
}

// prompt asks for an answer in the shape the challenge type needs. ok is
// false when the user dismissed the form.
func prompt(t session.Today) (verify.Submission, bool, error) {
	ch := t.Challenge
	var (
		field huh.Field
		text  string
		pick  int
	)
	switch ch.Type {
	case constants.ChallengeFixCode:
		text = ch.Broken
		field = huh.NewText().
			Title("Fixed code").
			Description("Edit the code, then submit.").
			Lines(strings.Count(ch.Broken, "\n") + 2).
			Value(&text)
	case constants.ChallengeFillBlank:
		field = huh.NewInput().
			Title("Fill in the blank").
			Placeholder(constants.BlankMarker).
			Value(&text)
	case constants.ChallengeMCQ:
		opts := make([]huh.Option[int], len(ch.Choices))
		for i, choice := range ch.Choices {
			opts[i] = huh.NewOption(choice, i)
		}
		field = huh.NewSelect[int]().
			Title("Pick one").
			Options(opts...).
			Value(&pick)
	default:
		return verify.Submission{}, false, fmt.Errorf("%w: %q", verify.ErrUnsupportedType, ch.Type)
	}

	err := huh.NewForm(huh.NewGroup(field)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return verify.Submission{}, false, nil
	}
	if err != nil {
		return verify.Submission{}, false, err
	}
	if ch.Type == constants.ChallengeMCQ {
		return verify.Submission{Choice: &pick}, true, nil
	}
	return verify.Submission{Text: text}, true, nil
}

// CheckCmd verifies an answer without prompting.
type CheckCmd struct {
	Answer string `help:"Answer text (fill_blank, or fix_code source)." xor:"input"`
	File   string `help:"Read the answer from a file ('-' for stdin)." xor:"input"`
	Choice int    `help:"Option number for multiple choice (1-based)." xor:"input"`
}

func (c *CheckCmd) Run(ctx *cli.Context) error {
	if err := ctx.Lock(); err != nil {
		return err
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	today := sess.Today()

	sub, err := c.submission(today)
	if err != nil {
		return err
	}
	out, err := sess.Submit(today, sub)
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderOutcome(out))
	if !out.Recorded {
		return ErrNotSolved
	}
	return nil
}

func (c *CheckCmd) submission(t session.Today) (verify.Submission, error) {
	ch := t.Challenge
	if ch.Type == constants.ChallengeMCQ {
		if c.Choice == 0 {
			if c.Answer == "" {
				return verify.Submission{}, nil
			}
			n, err := strconv.Atoi(strings.TrimSpace(c.Answer))
			if err != nil {
				return verify.Submission{}, fmt.Errorf("multiple choice needs --choice N (1-%d)", len(ch.Choices))
			}
			c.Choice = n
		}
		if c.Choice < 1 || c.Choice > len(ch.Choices) {
			return verify.Submission{}, fmt.Errorf("choice %d out of range (1-%d)", c.Choice, len(ch.Choices))
		}
		idx := c.Choice - 1
		return verify.Submission{Choice: &idx}, nil
	}

	if c.Choice != 0 {
		return verify.Submission{}, fmt.Errorf("--choice only applies to multiple choice; today's challenge is %s", ch.Type)
	}
	if c.File != "" {
		data, err := readInput(c.File)
		if err != nil {
			return verify.Submission{}, err
		}
		return verify.Submission{Text: data}, nil
	}
	return verify.Submission{Text: c.Answer}, nil
}

// HintCmd prints hints for today's challenge.
type HintCmd struct {
	Number int  `arg:"" optional:"" default:"1" help:"Hint number (1-based)."`
	All    bool `help:"Show every hint."`
}

func (c *HintCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	ch := sess.Today().Challenge
	if c.All {
		if len(ch.Hints) == 0 {
			fmt.Println(constants.NoHintMessage)
			return nil
		}
		for i := range ch.Hints {
			fmt.Printf("%d. %s\n", i+1, sess.Hint(ch, i))
		}
		return nil
	}
	fmt.Println(sess.Hint(ch, c.Number-1))
	return nil
}

// SolutionCmd reveals the answer. Revealing does not count as a completion.
type SolutionCmd struct{}

func (c *SolutionCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	ch := sess.Today().Challenge
	fmt.Println(cli.TitleStyle.Render(ch.Title))
	fmt.Println(cli.CodeStyle.Render(strings.TrimRight(sess.Solution(ch), "\n")))
	return nil
}
