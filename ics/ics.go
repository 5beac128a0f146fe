// Package ics renders materialized events as an iCalendar document.
package ics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"github.com/terencehorsman/ChemoCare/schedule"
)

const (
	prodID = "-//ChemoCare//Treatment Planner//EN"
	// uidDomain suffixes every exported UID so identifiers stay stable
	// across exports and unique across calendar clients.
	uidDomain = "chemocare"

	dateLayout     = "20060102"
	dateTimeLayout = "20060102T150405"
)

// Options controls a calendar export.
type Options struct {
	// CalendarName is embedded once at the document level.
	CalendarName string
	// Now stamps DTSTAMP on every exported event; zero means time.Now().
	Now time.Time
}

// Calendar renders the event list as a single VCALENDAR.
func Calendar(events []schedule.Event, opts Options) *ical.Calendar {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)
	if opts.CalendarName != "" {
		cal.Props.SetText("NAME", opts.CalendarName)
		cal.Props.SetText("X-WR-CALNAME", opts.CalendarName)
	}
	for _, ev := range events {
		cal.Children = append(cal.Children, component(ev, now))
	}
	return cal
}

// Encode renders the event list as serialized iCalendar text.
func Encode(events []schedule.Event, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(Calendar(events, opts)); err != nil {
		return "", fmt.Errorf("encode calendar: %w", err)
	}
	return buf.String(), nil
}

func component(ev schedule.Event, now time.Time) *ical.Component {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, fmt.Sprintf("%s@%s", ev.ID, uidDomain))
	event.Props.SetDateTime(ical.PropDateTimeStamp, now)
	event.Props.SetText(ical.PropSummary, ev.Title)
	if ev.Notes != "" {
		event.Props.SetText(ical.PropDescription, ev.Notes)
	}

	if tod, ok := ev.TimeOfDay.Get(); ok {
		// Timed events span exactly one hour from the given start.
		start := tod.On(ev.Date)
		setDateTime(event.Props, ical.PropDateTimeStart, start)
		setDateTime(event.Props, ical.PropDateTimeEnd, start.Add(time.Hour))
	} else {
		// All-day events span exactly one calendar day; DTEND is exclusive
		// per RFC 5545, so it names the following day.
		day := schedule.StartOfDay(ev.Date)
		setDate(event.Props, ical.PropDateTimeStart, day)
		setDate(event.Props, ical.PropDateTimeEnd, schedule.AddDays(day, 1))
	}
	return event.Component
}

// setDate writes a VALUE=DATE property for all-day events.
func setDate(props ical.Props, name string, day time.Time) {
	prop := ical.NewProp(name)
	prop.SetValueType(ical.ValueDate)
	prop.Value = day.Format(dateLayout)
	props.Set(prop)
}

// setDateTime writes a floating local date-time, matching the engine's
// local-calendar-day semantics.
func setDateTime(props ical.Props, name string, t time.Time) {
	prop := ical.NewProp(name)
	prop.Value = t.Format(dateTimeLayout)
	props.Set(prop)
}
