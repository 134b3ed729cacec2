package migration

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/dailyfix/internal/calendar"
	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/models"
)

// Migrate coerces a decoded snapshot of any shape into a valid Store. It
// never fails: missing or malformed parts fall back to defaults. raw is
// whatever encoding/json produced for the document (nil when absent); now
// stamps legacy completions that carry no timestamp.
//
// Migrating an already current store returns an equal store.
func Migrate(raw any, now time.Time) models.Store {
	out := models.DefaultStore()

	switch v := raw.(type) {
	case models.Store:
		raw = toRaw(v)
	case *models.Store:
		if v != nil {
			raw = toRaw(*v)
		}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return out
	}

	if settings, ok := obj["settings"].(map[string]any); ok {
		mergeSettings(&out.Settings, settings)
	}
	if streak, ok := obj["streak"].(map[string]any); ok {
		mergeStreak(&out.Streak, streak)
	}
	if completions, ok := obj["completions"].(map[string]any); ok {
		out.Completions = migrateCompletions(completions, now)
	}
	for key, v := range obj {
		switch key {
		case "settings", "streak", "completions":
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[key] = v
	}

	// Older snapshots only tracked the last completed day.
	if out.Streak.LastCreditedDayKey == nil && out.Streak.LastCompletedDayKey != nil {
		out.Streak.LastCreditedDayKey = models.DayPtr(*out.Streak.LastCompletedDayKey)
	}

	if out.Streak.Best < out.Streak.Current {
		out.Streak.Best = out.Streak.Current
	}
	if out.Streak.GraceAvailable && out.Streak.GraceUsedForDayKey != nil {
		out.Streak.GraceUsedForDayKey = nil
	}

	return out
}

// MigrateJSON decodes data and migrates it. Empty input yields the default
// store; undecodable input is reported so callers can choose between
// rejecting it (import) and falling back to defaults (load).
func MigrateJSON(data []byte, now time.Time) (models.Store, error) {
	if len(data) == 0 {
		return models.DefaultStore(), nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.DefaultStore(), fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return Migrate(raw, now), nil
}

// toRaw converts a typed store back into its generic JSON form so typed and
// decoded inputs share one code path.
func toRaw(s models.Store) any {
	data, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	return raw
}

func mergeSettings(dst *models.Settings, src map[string]any) {
	if v, ok := src["graceEnabled"].(bool); ok {
		dst.GraceEnabled = v
	}
}

func mergeStreak(dst *models.StreakState, src map[string]any) {
	if v, ok := counter(src["current"]); ok {
		dst.Current = v
	}
	if v, ok := counter(src["best"]); ok {
		dst.Best = v
	}
	if v, ok := src["graceAvailable"].(bool); ok {
		dst.GraceAvailable = v
	}
	if d, ok := dayKey(src["lastCompletedDayKey"]); ok {
		dst.LastCompletedDayKey = d
	}
	if d, ok := dayKey(src["lastCreditedDayKey"]); ok {
		dst.LastCreditedDayKey = d
	}
	if d, ok := dayKey(src["graceUsedForDayKey"]); ok {
		dst.GraceUsedForDayKey = d
	}
}

// maxCounter bounds streak counters so the float to int conversion is
// always defined.
const maxCounter = math.MaxInt32

// counter accepts JSON numbers, truncated and clamped to [0, maxCounter].
func counter(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	switch {
	case math.IsNaN(f) || f < 0:
		return 0, true
	case f >= maxCounter:
		return maxCounter, true
	}
	return int(f), true
}

// dayKey accepts null (explicitly absent) or a well-formed day string.
// Anything else leaves the default in place.
func dayKey(v any) (*calendar.Day, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case string:
		if val == "" {
			return nil, true
		}
		d, err := calendar.Parse(val)
		if err != nil {
			return nil, false
		}
		return &d, true
	default:
		return nil, false
	}
}

func migrateCompletions(src map[string]any, now time.Time) models.Ledger {
	out := make(models.Ledger, len(src))
	for key, v := range src {
		day := calendar.Day(key)
		switch val := v.(type) {
		case []any:
			recs := make([]models.CompletionRecord, 0, len(val))
			for _, item := range val {
				if m, ok := item.(map[string]any); ok {
					recs = append(recs, recordVerbatim(m))
				}
			}
			out[day] = recs
		case map[string]any:
			// v1 stored a single completion object per day
			out[day] = []models.CompletionRecord{legacyRecord(val, now)}
		default:
			out[day] = []models.CompletionRecord{}
		}
	}
	return out
}

func recordVerbatim(m map[string]any) models.CompletionRecord {
	return models.CompletionRecord{
		ChallengeID: str(m["challengeId"]),
		CompletedAt: str(m["completedAt"]),
		Type:        str(m["type"]),
		Difficulty:  str(m["difficulty"]),
		UserAnswer:  str(m["userAnswer"]),
	}
}

func legacyRecord(m map[string]any, now time.Time) models.CompletionRecord {
	return models.CompletionRecord{
		ChallengeID: firstNonEmpty(str(m["challengeId"]), str(m["id"]), constants.LegacyChallengeID),
		CompletedAt: firstNonEmpty(str(m["completedAt"]), now.UTC().Format(time.RFC3339Nano)),
		Type:        firstNonEmpty(str(m["type"]), string(constants.LegacyType)),
		Difficulty:  firstNonEmpty(str(m["difficulty"]), constants.LegacyDifficulty),
		UserAnswer:  str(m["userAnswer"]),
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
