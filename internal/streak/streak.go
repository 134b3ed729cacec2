// Package streak implements the consecutive-day policy and the one-time
// grace exception.
package streak

import (
	"github.com/julianstephens/dailyfix/internal/calendar"
	"github.com/julianstephens/dailyfix/internal/models"
)

// Transition names what a credit did to the streak.
type Transition int

const (
	// Unchanged: the day was already credited.
	Unchanged Transition = iota
	// Started: first ever credit.
	Started
	// Extended: the previous credit was yesterday.
	Extended
	// Graced: a gap was bridged by the armed grace.
	Graced
	// Reset: a gap broke the streak, which restarts at 1.
	Reset
	// ClockSkew: day is earlier than the last credit. Nothing but the
	// completion day moves.
	ClockSkew
)

func (t Transition) String() string {
	switch t {
	case Unchanged:
		return "unchanged"
	case Started:
		return "started"
	case Extended:
		return "extended"
	case Graced:
		return "graced"
	case Reset:
		return "reset"
	case ClockSkew:
		return "clock-skew"
	default:
		return "unknown"
	}
}

// CreditIfFirstOfDay applies the first completion of day to st. Callers
// must only invoke it when the ledger had no records for day before the
// completion was appended.
func CreditIfFirstOfDay(st *models.StreakState, day calendar.Day) Transition {
	t := credit(st, day)
	st.LastCompletedDayKey = models.DayPtr(day)
	if st.Current > st.Best {
		st.Best = st.Current
	}
	return t
}

func credit(st *models.StreakState, day calendar.Day) Transition {
	if st.LastCreditedDayKey != nil && *st.LastCreditedDayKey == day {
		return Unchanged
	}

	ref := st.Reference()
	if ref == nil {
		st.Current = 1
		st.LastCreditedDayKey = models.DayPtr(day)
		return Started
	}

	diff := calendar.DayCount(*ref, day)
	switch {
	case diff < 0:
		return ClockSkew
	case diff == 0:
		st.LastCreditedDayKey = models.DayPtr(day)
		return Unchanged
	case diff == 1:
		st.Current++
		st.LastCreditedDayKey = models.DayPtr(day)
		return Extended
	case st.GraceUsedForDayKey != nil && *st.GraceUsedForDayKey == day:
		st.Current++
		st.LastCreditedDayKey = models.DayPtr(day)
		st.GraceUsedForDayKey = nil
		return Graced
	default:
		st.Current = 1
		st.LastCreditedDayKey = models.DayPtr(day)
		return Reset
	}
}

// Touch records a repeat completion on an already credited day.
func Touch(st *models.StreakState, day calendar.Day) {
	st.LastCompletedDayKey = models.DayPtr(day)
}

// Gap returns the whole days between the streak reference and day, and
// false when there is no history.
func Gap(st models.StreakState, day calendar.Day) (int, bool) {
	ref := st.Reference()
	if ref == nil {
		return 0, false
	}
	return calendar.DayCount(*ref, day), true
}

// GraceOffered reports whether the missed-day notice should offer grace
// for day.
func GraceOffered(store models.Store, day calendar.Day) bool {
	if !store.Settings.GraceEnabled || !store.Streak.GraceAvailable || store.Streak.GraceUsedForDayKey != nil {
		return false
	}
	gap, ok := Gap(store.Streak, day)
	return ok && gap >= 2
}

// MaybeArmGrace spends the grace on day when it is offered. Arming does not
// touch the counters; it only lets the next credit on day extend the streak.
// Grace is never replenished.
func MaybeArmGrace(store *models.Store, day calendar.Day) bool {
	if !GraceOffered(*store, day) {
		return false
	}
	store.Streak.GraceAvailable = false
	store.Streak.GraceUsedForDayKey = models.DayPtr(day)
	return true
}

// AtRisk reports whether the streak will reset if day's first completion
// is credited without grace.
func AtRisk(st models.StreakState, day calendar.Day) bool {
	if st.Current == 0 {
		return false
	}
	gap, ok := Gap(st, day)
	if !ok || gap < 2 {
		return false
	}
	return st.GraceUsedForDayKey == nil || *st.GraceUsedForDayKey != day
}
