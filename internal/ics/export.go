package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"apptlog/internal/appointment"
	appLog "apptlog/internal/log"
	"apptlog/internal/model"
)

const (
	defaultEventDuration = 30 * time.Minute
	defaultSummary       = "Appointment"
)

// uidNamespace scopes the name-based UUIDs generated for exported events.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("apptlog:appointment"))

// ExportOptions controls how log rows become VEVENTs.
type ExportOptions struct {
	// Location is the zone the log's dates and clock times are read in.
	// If nil, time.Local is used.
	Location *time.Location

	// Duration is the length of each event. If zero, 30 minutes is used.
	Duration time.Duration

	// Now stamps DTSTAMP; defaults to time.Now.
	Now func() time.Time
}

// Export renders appointments as an iCalendar PUBLISH document.
//
// Rows whose Time column cannot be parsed back into a clock time are
// logged and skipped so a single hand-edited row does not break the feed.
func Export(records []model.Appointment, opts ExportOptions) string {
	return Build(records, opts).Serialize()
}

// Build is Export without serialization.
func Build(records []model.Appointment, opts ExportOptions) *ical.Calendar {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Duration <= 0 {
		opts.Duration = defaultEventDuration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cal := ical.NewCalendarFor("apptlog")
	cal.SetMethod(ical.MethodPublish)

	stamp := opts.Now()
	for _, rec := range records {
		start, err := StartTime(rec, opts.Location)
		if err != nil {
			appLog.Error("ics export: skipping row with unparsable time", err,
				"date", rec.Date.Format(model.DateLayout),
				"time", rec.Time,
			)
			continue
		}

		ev := cal.AddEvent(EventUID(rec))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(opts.Duration))
		ev.SetSummary(summary(rec.Reason))
		if rec.Reason != "" {
			ev.SetDescription(rec.Reason)
		}
	}

	return cal
}

// StartTime combines a record's date and its "H[:MM] AM|PM" time column.
func StartTime(rec model.Appointment, loc *time.Location) (time.Time, error) {
	idx := strings.LastIndex(rec.Time, " ")
	if idx < 0 {
		return time.Time{}, appointment.ErrInvalidTime
	}
	text, mer := rec.Time[:idx], appointment.Meridiem(strings.ToUpper(rec.Time[idx+1:]))
	if mer != appointment.AM && mer != appointment.PM {
		return time.Time{}, appointment.ErrInvalidTime
	}

	hour, minute, err := appointment.Clock(text, mer)
	if err != nil {
		return time.Time{}, err
	}

	d := rec.Date
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc), nil
}

// EventUID is stable for identical rows, so re-exporting the same log
// yields the same UIDs.
func EventUID(rec model.Appointment) string {
	key := strings.Join(rec.Row(), "\x1f")
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@apptlog"
}

func summary(reason string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(reason), "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return defaultSummary
	}
	return first
}
