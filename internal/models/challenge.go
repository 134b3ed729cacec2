package models

import (
	"fmt"
	"slices"

	"github.com/julianstephens/dailyfix/internal/constants"
)

// Challenge is one read-only catalog entry
type Challenge struct {
	ID         string                  `json:"id" yaml:"id"`
	Type       constants.ChallengeType `json:"type" yaml:"type"`
	Language   string                  `json:"language" yaml:"language"`
	Difficulty string                  `json:"difficulty,omitempty" yaml:"difficulty"`
	Title      string                  `json:"title" yaml:"title"`
	Prompt     string                  `json:"prompt" yaml:"prompt"`
	Hints      []string                `json:"hints,omitempty" yaml:"hints"`

	// fix_code
	Broken   string `json:"broken,omitempty" yaml:"broken"`
	Expected string `json:"expected,omitempty" yaml:"expected"`

	// fill_blank
	Template string `json:"template,omitempty" yaml:"template"`
	Answer   string `json:"answer,omitempty" yaml:"answer"`

	// mcq
	Code        string   `json:"code,omitempty" yaml:"code"` // optional snippet shown above the choices
	Choices     []string `json:"choices,omitempty" yaml:"choices"`
	AnswerIndex int      `json:"answerIndex" yaml:"answerIndex"`
}

// Validate checks the fields required by the challenge's type
func (c Challenge) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("challenge is missing an id")
	}
	if !slices.Contains(constants.SupportedChallengeTypes, c.Type) {
		return fmt.Errorf("challenge %s: unsupported type %q", c.ID, c.Type)
	}

	switch c.Type {
	case constants.ChallengeFixCode:
		if c.Expected == "" {
			return fmt.Errorf("challenge %s: fix_code requires expected source", c.ID)
		}
	case constants.ChallengeFillBlank:
		if c.Template == "" || c.Answer == "" {
			return fmt.Errorf("challenge %s: fill_blank requires template and answer", c.ID)
		}
	case constants.ChallengeMCQ:
		if len(c.Choices) == 0 {
			return fmt.Errorf("challenge %s: mcq requires choices", c.ID)
		}
		if c.AnswerIndex < 0 || c.AnswerIndex >= len(c.Choices) {
			return fmt.Errorf("challenge %s: answerIndex %d out of range (0-%d)", c.ID, c.AnswerIndex, len(c.Choices)-1)
		}
	}

	return nil
}
