// Package verify checks submissions against challenges.
package verify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/models"
)

// ErrUnsupportedType is returned for a challenge type with no checker.
var ErrUnsupportedType = errors.New("unsupported challenge type")

// CloseDistance is the largest edit distance reported as a near miss.
const CloseDistance = 2

// Outcome of a check.
type Outcome int

const (
	// Empty: nothing was submitted; no state may change.
	Empty Outcome = iota
	Correct
	Incorrect
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "empty"
	}
}

// Submission is what the user entered. Text carries fix_code and
// fill_blank answers; Choice carries the selected mcq option.
type Submission struct {
	Text   string
	Choice *int
}

// Result of checking a submission. UserAnswer is the value recorded in the
// ledger on success. Distance is the edit distance to the expected answer
// on a text miss, -1 otherwise.
type Result struct {
	Outcome    Outcome
	Message    string
	UserAnswer string
	Distance   int
}

// Correct reports whether the submission passed.
func (r Result) Correct() bool { return r.Outcome == Correct }

type checkFunc func(models.Challenge, Submission) Result

// Verifier dispatches to a checker per challenge type.
type Verifier struct {
	registry map[constants.ChallengeType]checkFunc
}

// New returns a Verifier with checkers for every supported type.
func New() *Verifier {
	v := &Verifier{registry: map[constants.ChallengeType]checkFunc{}}
	v.registry[constants.ChallengeFixCode] = checkFixCode
	v.registry[constants.ChallengeFillBlank] = checkFillBlank
	v.registry[constants.ChallengeMCQ] = checkMCQ
	return v
}

// Check compares sub with the expected answer for ch. It never mutates
// state; callers record the completion only when the outcome is Correct.
func (v *Verifier) Check(ch models.Challenge, sub Submission) (Result, error) {
	fn, ok := v.registry[ch.Type]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedType, ch.Type)
	}
	return fn(ch, sub), nil
}

func checkFixCode(ch models.Challenge, sub Submission) Result {
	got := NormalizeCode(sub.Text)
	if got == "" {
		return Result{Outcome: Empty, Message: "Paste your fixed code first.", Distance: -1}
	}
	want := NormalizeCode(ch.Expected)
	if got == want {
		// the raw text is recorded, not the normalized form
		return Result{Outcome: Correct, Message: "Correct!", UserAnswer: sub.Text, Distance: -1}
	}
	return miss(got, want, "Not quite, try again. Whitespace matters a bit.")
}

func checkFillBlank(ch models.Challenge, sub Submission) Result {
	got := NormalizeAnswer(sub.Text)
	if got == "" {
		return Result{Outcome: Empty, Message: "Type the missing piece first.", Distance: -1}
	}
	want := NormalizeAnswer(ch.Answer)
	if got == want {
		return Result{Outcome: Correct, Message: "Correct!", UserAnswer: got, Distance: -1}
	}
	return miss(got, want, "Not quite, check spacing and case.")
}

func checkMCQ(ch models.Challenge, sub Submission) Result {
	if sub.Choice == nil {
		return Result{Outcome: Empty, Message: "Pick an option first.", Distance: -1}
	}
	if *sub.Choice == ch.AnswerIndex {
		return Result{Outcome: Correct, Message: "Correct!", UserAnswer: strconv.Itoa(*sub.Choice), Distance: -1}
	}
	return Result{Outcome: Incorrect, Message: "Not quite, try again.", Distance: -1}
}

func miss(got, want, msg string) Result {
	d := levenshtein.ComputeDistance(got, want)
	if d <= CloseDistance {
		msg = fmt.Sprintf("%s You're very close (%d %s off).", msg, d, plural(d, "character", "characters"))
	}
	return Result{Outcome: Incorrect, Message: msg, Distance: d}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Hint returns the nth hint (0-based) for ch, or the no-hint message when
// there is none.
func Hint(ch models.Challenge, n int) string {
	if n < 0 || n >= len(ch.Hints) {
		return constants.NoHintMessage
	}
	return ch.Hints[n]
}

// Solution renders the expected answer for display.
func Solution(ch models.Challenge) string {
	switch ch.Type {
	case constants.ChallengeFixCode:
		return ch.Expected
	case constants.ChallengeFillBlank:
		return strings.Replace(ch.Template, constants.BlankMarker, ch.Answer, 1)
	case constants.ChallengeMCQ:
		if ch.AnswerIndex >= 0 && ch.AnswerIndex < len(ch.Choices) {
			return "Answer: " + ch.Choices[ch.AnswerIndex]
		}
		return "Answer: option " + strconv.Itoa(ch.AnswerIndex)
	default:
		return ""
	}
}
