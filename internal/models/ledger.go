package models

import (
	"sort"

	"github.com/julianstephens/dailyfix/internal/calendar"
)

// CompletionRecord is one successful attempt. Records are never edited;
// only a full reset removes them.
type CompletionRecord struct {
	ChallengeID string `json:"challengeId"`
	CompletedAt string `json:"completedAt"` // RFC 3339
	Type        string `json:"type"`
	Difficulty  string `json:"difficulty"`
	UserAnswer  string `json:"userAnswer"`
}

// Ledger maps each calendar day to its completions in attempt order.
// A day's sequence only grows.
type Ledger map[calendar.Day][]CompletionRecord

// RecordsFor returns the completions for day, or an empty slice.
func (l Ledger) RecordsFor(day calendar.Day) []CompletionRecord {
	if recs, ok := l[day]; ok && recs != nil {
		return recs
	}
	return []CompletionRecord{}
}

// Append adds rec to the end of day's sequence. Repeat completions of the
// same challenge are separate attempts and are all kept.
func (l Ledger) Append(day calendar.Day, rec CompletionRecord) {
	l[day] = append(l.RecordsFor(day), rec)
}

// TotalCount is the number of completions across all days.
func (l Ledger) TotalCount() int {
	total := 0
	for _, recs := range l {
		total += len(recs)
	}
	return total
}

// IsFirstOfDay reports whether day has no completions yet.
func (l Ledger) IsFirstOfDay(day calendar.Day) bool {
	return len(l[day]) == 0
}

// Days returns every day with an entry, newest first.
func (l Ledger) Days() []calendar.Day {
	days := make([]calendar.Day, 0, len(l))
	for day := range l {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })
	return days
}
