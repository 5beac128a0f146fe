package schedule

import (
	"fmt"
	"math"
	"time"
)

const isoDateLayout = "2006-01-02"

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayDifference returns the whole-day count from a to b. Both are normalized
// to midnight first and the delta is rounded to the nearest day, so a DST
// transition inside the span cannot shift the result by one.
func DayDifference(a, b time.Time) int {
	a = StartOfDay(a)
	b = StartOfDay(b)
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// AddDays advances t by n calendar days (n may be negative). Calendar
// arithmetic, not duration arithmetic, so month and year rollovers are exact.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// SameCalendarDay reports whether a and b fall on the same calendar day.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseISODate parses a YYYY-MM-DD date in local time. Constructing in local
// time, never UTC, keeps day arithmetic stable near midnight.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(isoDateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatISODate formats t as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(isoDateLayout)
}

// TimeOfDay is a wall-clock time (hours and minutes) with no date attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On overlays the time of day onto the given calendar day, in that day's
// location.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}
