package schedule

import (
	"time"

	"github.com/samber/mo"
)

// DefaultMaxOccurrences bounds every enumeration and freeze walk. The cap is
// a mandatory guard, not tuning: without it a degenerate frequency would walk
// forever.
const DefaultMaxOccurrences = 1000

// OneOffKind classifies standalone items that are not tied to any treatment
// occurrence.
type OneOffKind string

const (
	OneOffAppointment OneOffKind = "appointment"
	OneOffMedication  OneOffKind = "medication"
)

// Plan is the scheduling configuration for a treatment series. It is a plain
// value; all derived data (anchors, occurrences, events) is recomputed from
// it on demand and never stored.
type Plan struct {
	// StartDate is the calendar date of occurrence #0.
	StartDate time.Time
	// FrequencyDays is the interval between consecutive occurrences, >= 1.
	// Validating that is the caller's contract; the engine does not recover
	// from a non-positive frequency beyond its iteration caps.
	FrequencyDays int
	// CycleCap, when present, limits the series: occurrence indices at or
	// beyond the cap do not exist.
	CycleCap mo.Option[int]
	Rules    []ActionRule
	OneOffs  []OneOffItem
}

// ActionRule derives one auxiliary event (medication, appointment prep) per
// treatment occurrence.
type ActionRule struct {
	ID string
	// DayIndicator positions the action relative to the treatment day using
	// the hospital convention: 1 = treatment day itself, 2 = the day after,
	// -1 = the day before. 0 is invalid and is coerced to 1 before storage.
	DayIndicator int
	Title        string
	Notes        string
	// TimeOfDay, when present, turns the derived event into a timed event;
	// absent means all-day.
	TimeOfDay mo.Option[TimeOfDay]
	Enabled   bool
}

// Normalized returns a copy of the rule with the day indicator coerced into
// the valid range.
func (r ActionRule) Normalized() ActionRule {
	r.DayIndicator = NormalizeDayIndicator(r.DayIndicator)
	return r
}

// OneOffItem is a standalone appointment or medication on a fixed date.
type OneOffItem struct {
	ID        string
	Date      time.Time
	TimeOfDay mo.Option[TimeOfDay]
	Title     string
	Notes     string
	Kind      OneOffKind
}

// Override pins occurrence Index to Date instead of the date implied by
// linear extrapolation. At most one override per index; the latest write for
// an index wins.
type Override struct {
	Index int
	Date  time.Time
}

// Anchor is a derived point the resolver extrapolates from: the plan's start
// plus one anchor per override.
type Anchor struct {
	Index int
	Date  time.Time
}

// Occurrence is a single treatment cycle, computed on demand.
type Occurrence struct {
	Index int
	Date  time.Time
}

// NormalizeDayIndicator coerces the invalid indicator 0 to 1 (treatment
// day). All other values pass through unchanged.
func NormalizeDayIndicator(indicator int) int {
	if indicator == 0 {
		return 1
	}
	return indicator
}

// DayOffset converts a day indicator into the actual calendar-day offset
// from the treatment day: 1 maps to 0, 2 to +1, -1 to -1. Day 0 does not
// exist in the convention.
func DayOffset(indicator int) int {
	indicator = NormalizeDayIndicator(indicator)
	if indicator >= 1 {
		return indicator - 1
	}
	return indicator
}

// Normalized returns a copy of the plan whose rules all carry valid day
// indicators. Stored plans must never contain an indicator of 0.
func (p Plan) Normalized() Plan {
	if len(p.Rules) == 0 {
		return p
	}
	rules := make([]ActionRule, len(p.Rules))
	for i, r := range p.Rules {
		rules[i] = r.Normalized()
	}
	p.Rules = rules
	return p
}
