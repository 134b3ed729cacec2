package models

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/julianstephens/dailyfix/internal/calendar"
)

// Settings holds user toggles persisted with the store
type Settings struct {
	GraceEnabled bool `json:"graceEnabled"`
}

// StreakState tracks consecutive practice days.
//
// LastCreditedDayKey is the day that last moved Current; LastCompletedDayKey
// is the day of the most recent success of any ordinal. They differ so that
// repeat attempts on an already-credited day cannot count twice.
// GraceUsedForDayKey is only set while GraceAvailable is false, and is
// cleared once the armed grace is consumed.
type StreakState struct {
	Current             int           `json:"current"`
	Best                int           `json:"best"`
	LastCompletedDayKey *calendar.Day `json:"lastCompletedDayKey"`
	LastCreditedDayKey  *calendar.Day `json:"lastCreditedDayKey"`
	GraceAvailable      bool          `json:"graceAvailable"`
	GraceUsedForDayKey  *calendar.Day `json:"graceUsedForDayKey"`
}

// Reference returns the day streak gaps are measured from, or nil when there
// is no history.
func (s StreakState) Reference() *calendar.Day {
	if s.LastCreditedDayKey != nil {
		return s.LastCreditedDayKey
	}
	return s.LastCompletedDayKey
}

// Store is the persisted root aggregate
type Store struct {
	Settings    Settings    `json:"settings"`
	Streak      StreakState `json:"streak"`
	Completions Ledger      `json:"completions"`

	// Extra holds top-level keys this version does not know about. They
	// are written back out unchanged.
	Extra map[string]any `json:"-"`
}

// MarshalJSON writes the known fields and then any Extra keys they do not
// shadow.
func (s Store) MarshalJSON() ([]byte, error) {
	type plain Store
	data, err := json.Marshal(plain(s))
	if err != nil || len(s.Extra) == 0 {
		return data, err
	}

	var known map[string]json.RawMessage
	if err := json.Unmarshal(data, &known); err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(s.Extra)+len(known))
	maps.Copy(merged, s.Extra)
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Clone returns a copy that shares nothing mutable with s.
func (s Store) Clone() Store {
	out := s
	if s.Completions != nil {
		out.Completions = make(Ledger, len(s.Completions))
		for day, recs := range s.Completions {
			out.Completions[day] = slices.Clone(recs)
		}
	}
	out.Extra = maps.Clone(s.Extra)
	return out
}

// DefaultStore returns a fresh store: grace off but available, no history.
func DefaultStore() Store {
	return Store{
		Settings: Settings{GraceEnabled: false},
		Streak: StreakState{
			GraceAvailable: true,
		},
		Completions: Ledger{},
	}
}

// DayPtr returns a pointer to a copy of d.
func DayPtr(d calendar.Day) *calendar.Day {
	return &d
}
