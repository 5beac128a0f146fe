package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/mo"
)

// DefaultMonthsAhead is the display window size used when the caller does
// not specify one.
const DefaultMonthsAhead = 3

// EventKind distinguishes the three event sources in a materialized
// calendar.
type EventKind string

const (
	EventTreatment EventKind = "treatment"
	EventAction    EventKind = "action"
	EventOneOff    EventKind = "oneoff"
)

// Event is one entry of the materialized calendar. Events are transient:
// they are recomputed from Plan and Overrides on every read and have no
// lifecycle of their own.
type Event struct {
	ID   string
	Kind EventKind
	// Date is the calendar day; the time of day, when present, is kept
	// separate so all-day and timed rendering stay distinguishable.
	Date      time.Time
	TimeOfDay mo.Option[TimeOfDay]
	Title     string
	Notes     string
	// OccurrenceIndex is set for treatment and action events; -1 for
	// one-offs.
	OccurrenceIndex int
	// Rule is the originating rule for action events, nil otherwise.
	Rule *ActionRule
}

// StartTime returns the event's full start date-time: the time of day
// overlaid on the calendar day, or midnight for all-day events.
func (e Event) StartTime() time.Time {
	if tod, ok := e.TimeOfDay.Get(); ok {
		return tod.On(e.Date)
	}
	return StartOfDay(e.Date)
}

// AllDay reports whether the event has no time of day.
func (e Event) AllDay() bool {
	return e.TimeOfDay.IsAbsent()
}

// Labels supplies the user-facing strings embedded in generated event
// titles. They are an explicit parameter so the engine holds no
// process-wide locale state; a display adapter owns the active language.
type Labels struct {
	// Treatment prefixes the 1-based occurrence number in treatment titles.
	Treatment string
	// Cycle prefixes the occurrence number in treatment descriptions.
	Cycle string
}

// DefaultLabels are the English display strings.
var DefaultLabels = Labels{Treatment: "Treatment", Cycle: "Cycle"}

// MaterializeOptions controls the display window of BuildEvents.
type MaterializeOptions struct {
	// Now anchors the display window; zero means time.Now().
	Now time.Time
	// MonthsAhead controls the window size; <= 0 means DefaultMonthsAhead.
	MonthsAhead int
	Labels      Labels
}

// BuildEvents expands the plan into a flat, chronologically sorted event
// list: one treatment event per occurrence in the display window, one action
// event per enabled rule per occurrence, and one event per one-off item. The
// window runs from 7 days before the start of the current month to
// monthsAhead*31 days after it; the loose upper bound is intentional, the
// consumer trims for display.
func BuildEvents(plan Plan, overrides []Override, opts MaterializeOptions) []Event {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	months := opts.MonthsAhead
	if months <= 0 {
		months = DefaultMonthsAhead
	}
	labels := opts.Labels
	if labels == (Labels{}) {
		labels = DefaultLabels
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	from := AddDays(monthStart, -7)
	to := AddDays(monthStart, months*31)

	plan = plan.Normalized()
	series := SeriesFromPlan(plan, overrides)

	var events []Event
	it := series.Iterate(WindowOptions{From: &from, To: &to, CycleCap: plan.CycleCap})
	for occ, ok := it.Next(); ok; occ, ok = it.Next() {
		number := occ.Index + 1
		events = append(events, Event{
			ID:              fmt.Sprintf("treatment-%d", occ.Index),
			Kind:            EventTreatment,
			Date:            occ.Date,
			Title:           fmt.Sprintf("%s %d", labels.Treatment, number),
			Notes:           fmt.Sprintf("%s %d", labels.Cycle, number),
			OccurrenceIndex: occ.Index,
		})
		for i := range plan.Rules {
			rule := &plan.Rules[i]
			if !rule.Enabled {
				continue
			}
			events = append(events, Event{
				ID:              fmt.Sprintf("action-%s-%d", rule.ID, occ.Index),
				Kind:            EventAction,
				Date:            AddDays(occ.Date, DayOffset(rule.DayIndicator)),
				TimeOfDay:       rule.TimeOfDay,
				Title:           rule.Title,
				Notes:           rule.Notes,
				OccurrenceIndex: occ.Index,
				Rule:            rule,
			})
		}
	}
	for _, item := range plan.OneOffs {
		events = append(events, Event{
			ID:              fmt.Sprintf("oneoff-%s", item.ID),
			Kind:            EventOneOff,
			Date:            StartOfDay(item.Date),
			TimeOfDay:       item.TimeOfDay,
			Title:           item.Title,
			Notes:           item.Notes,
			OccurrenceIndex: -1,
		})
	}
	sortEvents(events)
	return events
}

// sortEvents orders by full start date-time; treatment events come before
// action and one-off events sharing the same start.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		si, sj := events[i].StartTime(), events[j].StartTime()
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		return kindRank(events[i].Kind) < kindRank(events[j].Kind)
	})
}

func kindRank(k EventKind) int {
	if k == EventTreatment {
		return 0
	}
	return 1
}
