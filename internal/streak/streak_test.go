package streak

import (
	"testing"

	"github.com/julianstephens/dailyfix/internal/calendar"
	"github.com/julianstephens/dailyfix/internal/models"
)

const d0 calendar.Day = "2026-03-10"

func dayPtrEq(p *calendar.Day, want calendar.Day) bool {
	return p != nil && *p == want
}

func TestCreditAlgebra(t *testing.T) {
	tests := []struct {
		name        string
		days        []calendar.Day
		wantCurrent int
		wantBest    int
		wantLast    Transition
	}{
		{"first ever", []calendar.Day{d0}, 1, 1, Started},
		{"consecutive", []calendar.Day{d0, d0.AddDays(1)}, 2, 2, Extended},
		{"gap resets", []calendar.Day{d0, d0.AddDays(3)}, 1, 1, Reset},
		{"reset keeps best", []calendar.Day{d0, d0.AddDays(1), d0.AddDays(2), d0.AddDays(5)}, 1, 3, Reset},
		{"same day twice", []calendar.Day{d0, d0}, 1, 1, Unchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := models.DefaultStore().Streak
			var last Transition
			for _, d := range tt.days {
				last = CreditIfFirstOfDay(&st, d)
			}
			final := tt.days[len(tt.days)-1]

			if st.Current != tt.wantCurrent || st.Best != tt.wantBest {
				t.Errorf("current/best = %d/%d, want %d/%d", st.Current, st.Best, tt.wantCurrent, tt.wantBest)
			}
			if last != tt.wantLast {
				t.Errorf("last transition = %v, want %v", last, tt.wantLast)
			}
			if !dayPtrEq(st.LastCreditedDayKey, final) || !dayPtrEq(st.LastCompletedDayKey, final) {
				t.Errorf("day keys = %v/%v, want %s", st.LastCreditedDayKey, st.LastCompletedDayKey, final)
			}
		})
	}
}

func TestCreditUsesLegacyReference(t *testing.T) {
	st := models.StreakState{Current: 4, Best: 4, LastCompletedDayKey: models.DayPtr(d0)}

	if got := CreditIfFirstOfDay(&st, d0.AddDays(1)); got != Extended {
		t.Fatalf("transition = %v, want extended", got)
	}
	if st.Current != 5 || st.Best != 5 {
		t.Errorf("current/best = %d/%d, want 5/5", st.Current, st.Best)
	}
}

func TestCreditOnlyOncePerDay(t *testing.T) {
	store := models.DefaultStore()
	day := d0

	for i := 0; i < 4; i++ {
		first := store.Completions.IsFirstOfDay(day)
		store.Completions.Append(day, models.CompletionRecord{ChallengeID: "c"})
		if first {
			CreditIfFirstOfDay(&store.Streak, day)
		} else {
			Touch(&store.Streak, day)
		}
	}

	if store.Streak.Current != 1 {
		t.Errorf("current = %d after four completions on one day, want 1", store.Streak.Current)
	}
	if n := len(store.Completions.RecordsFor(day)); n != 4 {
		t.Errorf("records = %d, want 4", n)
	}
}

func TestGraceScenario(t *testing.T) {
	store := models.DefaultStore()
	store.Settings.GraceEnabled = true
	store.Streak = models.StreakState{
		Current:             5,
		Best:                5,
		LastCompletedDayKey: models.DayPtr(d0),
		LastCreditedDayKey:  models.DayPtr(d0),
		GraceAvailable:      true,
	}
	today := d0.AddDays(2)

	if !GraceOffered(store, today) {
		t.Fatal("grace should be offered after a two day gap")
	}
	if !AtRisk(store.Streak, today) {
		t.Error("streak should be at risk before grace is armed")
	}
	if !MaybeArmGrace(&store, today) {
		t.Fatal("grace should arm")
	}
	if store.Streak.Current != 5 {
		t.Errorf("arming changed current to %d", store.Streak.Current)
	}
	if store.Streak.GraceAvailable || !dayPtrEq(store.Streak.GraceUsedForDayKey, today) {
		t.Errorf("grace not spent: %+v", store.Streak)
	}
	if AtRisk(store.Streak, today) {
		t.Error("streak should not be at risk once grace is armed for today")
	}

	if got := CreditIfFirstOfDay(&store.Streak, today); got != Graced {
		t.Fatalf("transition = %v, want graced", got)
	}
	if store.Streak.Current != 6 || store.Streak.Best != 6 {
		t.Errorf("current/best = %d/%d, want 6/6", store.Streak.Current, store.Streak.Best)
	}
	if store.Streak.GraceUsedForDayKey != nil {
		t.Error("graceUsedForDayKey should be cleared after it is consumed")
	}
	if store.Streak.GraceAvailable {
		t.Error("grace must not be replenished")
	}

	later := today.AddDays(3)
	if GraceOffered(store, later) || MaybeArmGrace(&store, later) {
		t.Error("grace must not be offered a second time")
	}
	if got := CreditIfFirstOfDay(&store.Streak, later); got != Reset {
		t.Errorf("transition = %v, want reset", got)
	}
	if store.Streak.Current != 1 || store.Streak.Best != 6 {
		t.Errorf("current/best = %d/%d, want 1/6", store.Streak.Current, store.Streak.Best)
	}
}

func TestGraceNotOffered(t *testing.T) {
	base := func() models.Store {
		s := models.DefaultStore()
		s.Settings.GraceEnabled = true
		s.Streak.Current = 2
		s.Streak.Best = 2
		s.Streak.LastCreditedDayKey = models.DayPtr(d0)
		s.Streak.LastCompletedDayKey = models.DayPtr(d0)
		return s
	}

	tests := []struct {
		name   string
		mutate func(*models.Store)
		day    calendar.Day
	}{
		{"disabled", func(s *models.Store) { s.Settings.GraceEnabled = false }, d0.AddDays(2)},
		{"spent", func(s *models.Store) { s.Streak.GraceAvailable = false }, d0.AddDays(2)},
		{"pending", func(s *models.Store) { s.Streak.GraceUsedForDayKey = models.DayPtr(d0.AddDays(1)) }, d0.AddDays(2)},
		{"no history", func(s *models.Store) {
			s.Streak.LastCreditedDayKey = nil
			s.Streak.LastCompletedDayKey = nil
		}, d0.AddDays(2)},
		{"consecutive", func(*models.Store) {}, d0.AddDays(1)},
		{"same day", func(*models.Store) {}, d0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(&s)
			before := s.Streak
			if GraceOffered(s, tt.day) {
				t.Error("grace should not be offered")
			}
			if MaybeArmGrace(&s, tt.day) {
				t.Error("grace should not arm")
			}
			if s.Streak.GraceAvailable != before.GraceAvailable {
				t.Error("failed arming must not change state")
			}
		})
	}
}

func TestArmedGraceForOtherDayDoesNotApply(t *testing.T) {
	st := models.StreakState{
		Current:            3,
		Best:               3,
		LastCreditedDayKey: models.DayPtr(d0),
		GraceUsedForDayKey: models.DayPtr(d0.AddDays(2)),
	}

	if got := CreditIfFirstOfDay(&st, d0.AddDays(3)); got != Reset {
		t.Errorf("transition = %v, want reset", got)
	}
	if st.Current != 1 {
		t.Errorf("current = %d, want 1", st.Current)
	}
}

func TestClockSkewOnlyMovesCompletionDay(t *testing.T) {
	st := models.StreakState{
		Current:             3,
		Best:                7,
		LastCompletedDayKey: models.DayPtr(d0),
		LastCreditedDayKey:  models.DayPtr(d0),
	}

	if got := CreditIfFirstOfDay(&st, d0.AddDays(-2)); got != ClockSkew {
		t.Fatalf("transition = %v, want clock-skew", got)
	}
	if st.Current != 3 || st.Best != 7 {
		t.Errorf("counters moved: %d/%d", st.Current, st.Best)
	}
	if !dayPtrEq(st.LastCreditedDayKey, d0) {
		t.Errorf("credited day moved: %v", st.LastCreditedDayKey)
	}
	if !dayPtrEq(st.LastCompletedDayKey, d0.AddDays(-2)) {
		t.Errorf("completion day = %v, want %s", st.LastCompletedDayKey, d0.AddDays(-2))
	}
	if gap, _ := Gap(st, d0.AddDays(1)); gap != 1 {
		t.Errorf("gap after skew = %d, want 1 from the credited day", gap)
	}
}

func TestTouch(t *testing.T) {
	st := models.StreakState{Current: 2, Best: 2, LastCreditedDayKey: models.DayPtr(d0)}
	Touch(&st, d0)
	if !dayPtrEq(st.LastCompletedDayKey, d0) || st.Current != 2 {
		t.Errorf("Touch changed more than the completion day: %+v", st)
	}
}

func TestTransitionString(t *testing.T) {
	if Graced.String() != "graced" || ClockSkew.String() != "clock-skew" || Transition(99).String() != "unknown" {
		t.Error("unexpected transition names")
	}
}
