package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apptlog/internal/appointment"
	"apptlog/internal/model"
)

func appt(d int, tm, reason string) model.Appointment {
	date := time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
	return model.Appointment{Date: date, Day: date.Weekday().String(), Time: tm, Reason: reason}
}

func TestStartTime(t *testing.T) {
	cases := []struct {
		tm   string
		want time.Time
	}{
		{"9:30 AM", time.Date(2024, time.January, 8, 9, 30, 0, 0, time.UTC)},
		{"12 AM", time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)},
		{"12:05 PM", time.Date(2024, time.January, 8, 12, 5, 0, 0, time.UTC)},
		{"3 pm", time.Date(2024, time.January, 8, 15, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := StartTime(appt(8, tc.tm, ""), time.UTC)
		require.NoError(t, err, tc.tm)
		assert.True(t, tc.want.Equal(got), "%s: got %s", tc.tm, got)
	}

	for _, bad := range []string{"9:30", "9:30 XM", "13:00 PM", ""} {
		_, err := StartTime(appt(8, bad, ""), time.UTC)
		assert.ErrorIs(t, err, appointment.ErrInvalidTime, bad)
	}
}

func TestExport(t *testing.T) {
	records := []model.Appointment{
		appt(8, "9:30 AM", "Checkup"),
		appt(3, "2 PM", ""),
		appt(4, "not a time", "skipped"),
		appt(5, "11 AM", "Dentist\nbring x-rays"),
	}

	out := Export(records, ExportOptions{
		Location: time.UTC,
		Duration: time.Hour,
		Now:      func() time.Time { return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) },
	})
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "METHOD:PUBLISH")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 3)

	summaries := make([]string, 0, len(events))
	for _, ev := range events {
		summaries = append(summaries, ev.GetProperty(ical.ComponentPropertySummary).Value)
	}
	assert.Equal(t, []string{"Checkup", "Appointment", "Dentist"}, summaries)

	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, time.Date(2024, time.January, 8, 9, 30, 0, 0, time.UTC).Equal(start))

	end, err := events[0].GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, end.Sub(start))
}

func TestEventUIDIsStable(t *testing.T) {
	a := appt(8, "9:30 AM", "Checkup")
	b := appt(8, "9:30 AM", "Checkup")
	c := appt(8, "9:30 AM", "Checkup again")

	assert.Equal(t, EventUID(a), EventUID(b))
	assert.NotEqual(t, EventUID(a), EventUID(c))
	assert.True(t, strings.HasSuffix(EventUID(a), "@apptlog"))
}
