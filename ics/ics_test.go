package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terencehorsman/ChemoCare/schedule"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := schedule.ParseISODate(s)
	require.NoError(t, err)
	return d
}

func decode(t *testing.T, text string) *ical.Calendar {
	t.Helper()
	cal, err := ical.NewDecoder(strings.NewReader(text)).Decode()
	require.NoError(t, err)
	return cal
}

func TestEncode_AllDayEventSpansOneDay(t *testing.T) {
	events := []schedule.Event{{
		ID:    "treatment-0",
		Kind:  schedule.EventTreatment,
		Date:  date(t, "2025-01-01"),
		Title: "Treatment 1",
		Notes: "Cycle 1",
	}}

	text, err := Encode(events, Options{CalendarName: "Chemo plan", Now: date(t, "2025-01-10")})
	require.NoError(t, err)

	cal := decode(t, text)
	assert.Equal(t, "Chemo plan", cal.Props.Get("X-WR-CALNAME").Value)

	vevents := cal.Events()
	require.Len(t, vevents, 1)
	ev := vevents[0]

	uid, err := ev.Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "treatment-0@chemocare", uid)

	start, err := ev.Props.DateTime(ical.PropDateTimeStart, time.Local)
	require.NoError(t, err)
	end, err := ev.Props.DateTime(ical.PropDateTimeEnd, time.Local)
	require.NoError(t, err)

	assert.True(t, schedule.SameCalendarDay(date(t, "2025-01-01"), start))
	assert.True(t, schedule.SameCalendarDay(date(t, "2025-01-02"), end), "exclusive DTEND must name the following day")

	summary, err := ev.Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Treatment 1", summary)

	description, err := ev.Props.Text(ical.PropDescription)
	require.NoError(t, err)
	assert.Equal(t, "Cycle 1", description)
}

func TestEncode_TimedEventSpansOneHour(t *testing.T) {
	tod, err := schedule.ParseTimeOfDay("09:30")
	require.NoError(t, err)

	events := []schedule.Event{{
		ID:        "action-pre-med-0",
		Kind:      schedule.EventAction,
		Date:      date(t, "2024-12-31"),
		TimeOfDay: mo.Some(tod),
		Title:     "Dexamethasone",
		Notes:     "with food",
	}}

	text, err := Encode(events, Options{Now: date(t, "2025-01-10")})
	require.NoError(t, err)

	cal := decode(t, text)
	vevents := cal.Events()
	require.Len(t, vevents, 1)
	ev := vevents[0]

	start, err := ev.Props.DateTime(ical.PropDateTimeStart, time.Local)
	require.NoError(t, err)
	end, err := ev.Props.DateTime(ical.PropDateTimeEnd, time.Local)
	require.NoError(t, err)

	assert.Equal(t, 9, start.Hour())
	assert.Equal(t, 30, start.Minute())
	assert.Equal(t, time.Hour, end.Sub(start))
}

func TestEncode_EmptyEventList(t *testing.T) {
	text, err := Encode(nil, Options{CalendarName: "Empty"})
	require.NoError(t, err)
	assert.Contains(t, text, "BEGIN:VCALENDAR")
	assert.NotContains(t, text, "BEGIN:VEVENT")
}
