package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/julianstephens/dailyfix/internal/calendar"
	"github.com/julianstephens/dailyfix/internal/constants"
)

func TestLedgerRecordsForMissingDay(t *testing.T) {
	l := Ledger{}
	recs := l.RecordsFor("2026-01-01")
	if recs == nil {
		t.Fatal("RecordsFor returned nil, want empty slice")
	}
	if len(recs) != 0 {
		t.Errorf("expected no records, got %d", len(recs))
	}
}

func TestLedgerAppendIsMonotonic(t *testing.T) {
	l := Ledger{}
	day := calendar.Day("2026-01-01")

	prevTotal := 0
	for i := 0; i < 5; i++ {
		if i == 0 && !l.IsFirstOfDay(day) {
			t.Fatal("empty ledger should report first of day")
		}
		l.Append(day, CompletionRecord{ChallengeID: "same-challenge"})
		l.Append(day.AddDays(1), CompletionRecord{ChallengeID: "other"})

		if got := len(l.RecordsFor(day)); got != i+1 {
			t.Errorf("after %d appends, RecordsFor len = %d", i+1, got)
		}
		total := l.TotalCount()
		if total < prevTotal {
			t.Errorf("TotalCount decreased: %d -> %d", prevTotal, total)
		}
		prevTotal = total
	}

	if l.IsFirstOfDay(day) {
		t.Error("IsFirstOfDay should be false after appends")
	}
	if got := l.TotalCount(); got != 10 {
		t.Errorf("TotalCount() = %d, want 10", got)
	}
}

func TestLedgerDaysNewestFirst(t *testing.T) {
	l := Ledger{
		"2026-01-03": {{ChallengeID: "a"}},
		"2025-12-31": {{ChallengeID: "b"}},
		"2026-01-10": {{ChallengeID: "c"}},
	}
	days := l.Days()
	want := []calendar.Day{"2026-01-10", "2026-01-03", "2025-12-31"}
	if len(days) != len(want) {
		t.Fatalf("Days() len = %d, want %d", len(days), len(want))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("Days()[%d] = %s, want %s", i, days[i], want[i])
		}
	}
}

func TestDefaultStoreJSONShape(t *testing.T) {
	data, err := json.Marshal(DefaultStore())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"settings":{"graceEnabled":false},"streak":{"current":0,"best":0,"lastCompletedDayKey":null,"lastCreditedDayKey":null,"graceAvailable":true,"graceUsedForDayKey":null},"completions":{}}`
	if string(data) != want {
		t.Errorf("default store JSON mismatch\n got: %s\nwant: %s", data, want)
	}
}

func TestStreakReference(t *testing.T) {
	var st StreakState
	if st.Reference() != nil {
		t.Error("empty streak should have no reference")
	}
	st.LastCompletedDayKey = DayPtr("2026-01-01")
	if got := st.Reference(); got == nil || *got != "2026-01-01" {
		t.Errorf("Reference() = %v, want completed day", got)
	}
	st.LastCreditedDayKey = DayPtr("2026-01-02")
	if got := st.Reference(); got == nil || *got != "2026-01-02" {
		t.Errorf("Reference() = %v, want credited day", got)
	}
}

func TestChallengeValidate(t *testing.T) {
	tests := []struct {
		name    string
		ch      Challenge
		wantErr string
	}{
		{
			name: "valid fix_code",
			ch:   Challenge{ID: "f1", Type: constants.ChallengeFixCode, Expected: "print(1)"},
		},
		{
			name:    "missing id",
			ch:      Challenge{Type: constants.ChallengeFixCode, Expected: "x"},
			wantErr: "missing an id",
		},
		{
			name:    "unknown type",
			ch:      Challenge{ID: "x", Type: "essay"},
			wantErr: "unsupported type",
		},
		{
			name:    "fill_blank without answer",
			ch:      Challenge{ID: "b1", Type: constants.ChallengeFillBlank, Template: "x = __BLANK__"},
			wantErr: "requires template and answer",
		},
		{
			name:    "mcq index out of range",
			ch:      Challenge{ID: "m1", Type: constants.ChallengeMCQ, Choices: []string{"a", "b"}, AnswerIndex: 2},
			wantErr: "out of range",
		},
		{
			name: "valid mcq",
			ch:   Challenge{ID: "m2", Type: constants.ChallengeMCQ, Choices: []string{"a", "b"}, AnswerIndex: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ch.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestStoreMarshalKeepsExtra(t *testing.T) {
	s := DefaultStore()
	s.Extra = map[string]any{"version": 2.0, "streak": "shadowed"}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["version"] != 2.0 {
		t.Errorf("version = %v, want 2", doc["version"])
	}
	if _, ok := doc["streak"].(map[string]any); !ok {
		t.Errorf("known field was overwritten by Extra: %s", data)
	}
}

func TestStoreClone(t *testing.T) {
	s := DefaultStore()
	s.Completions.Append("2026-01-01", CompletionRecord{ChallengeID: "a"})
	s.Completions["2026-01-02"] = []CompletionRecord{}

	c := s.Clone()
	c.Completions.Append("2026-01-01", CompletionRecord{ChallengeID: "b"})
	c.Completions.Append("2026-01-03", CompletionRecord{ChallengeID: "c"})
	c.Streak.Current = 5

	if got := s.Completions.TotalCount(); got != 1 {
		t.Errorf("original ledger changed: %d completions", got)
	}
	if s.Streak.Current != 0 {
		t.Error("original streak changed")
	}
	if recs := c.Completions["2026-01-02"]; recs == nil {
		t.Error("empty day should stay an empty sequence, not null")
	}
}
