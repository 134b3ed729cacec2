package constants

// ChallengeType identifies how a challenge is answered and checked
type ChallengeType string

const (
	ChallengeFixCode   ChallengeType = "fix_code"
	ChallengeFillBlank ChallengeType = "fill_blank"
	ChallengeMCQ       ChallengeType = "mcq"

	// Defaults for legacy completion records that predate these fields
	LegacyChallengeID = "unknown"
	LegacyType        = ChallengeFixCode
	LegacyDifficulty  = "hard"

	NoHintMessage = "No hint for this one."
)

// SupportedChallengeTypes lists the types the verifier can check
var SupportedChallengeTypes = []ChallengeType{
	ChallengeFixCode,
	ChallengeFillBlank,
	ChallengeMCQ,
}
