package calendar

import (
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/dailyfix/internal/constants"
)

// Day identifies a local calendar date in YYYY-MM-DD form.
type Day string

// Clock supplies the current wall-clock instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the process wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Useful for tests and for
// replaying a specific day from the CLI.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Today returns the local calendar day for the clock's current instant.
func Today(c Clock) Day {
	return FromTime(c.Now())
}

// FromTime returns the local calendar day containing t.
func FromTime(t time.Time) Day {
	return Day(t.In(time.Local).Format(constants.DateFormat))
}

// Parse validates s as a YYYY-MM-DD date.
func Parse(s string) (Day, error) {
	if _, err := time.ParseInLocation(constants.DateFormat, s, time.Local); err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return Day(s), nil
}

// Valid reports whether d is a well-formed calendar day.
func (d Day) Valid() bool {
	_, err := Parse(string(d))
	return err == nil
}

// Time returns local midnight of d. It panics on a malformed day; callers
// holding untrusted input should go through Parse first.
func (d Day) Time() time.Time {
	t, err := time.ParseInLocation(constants.DateFormat, string(d), time.Local)
	if err != nil {
		panic(fmt.Sprintf("calendar: malformed day %q", string(d)))
	}
	return t
}

// AddDays returns the day n calendar days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	t := d.Time()
	return Day(time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, time.Local).Format(constants.DateFormat))
}

func (d Day) String() string { return string(d) }

// DayCount returns the signed number of whole days from a to b. Both days are
// anchored to local midnight and the difference is rounded, so a DST shift
// between them cannot produce a fractional result.
func DayCount(a, b Day) int {
	diff := b.Time().Sub(a.Time())
	return int(math.Round(diff.Hours() / 24))
}
