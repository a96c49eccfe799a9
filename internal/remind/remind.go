package remind

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	appLog "apptlog/internal/log"
	"apptlog/internal/model"
)

// Source provides the recorded appointments.
type Source interface {
	ReadAll(loc *time.Location) ([]model.Appointment, error)
}

// Due returns the appointments dated from today through today+aheadDays,
// ordered by date. Appointments on the same date keep their log order.
func Due(records []model.Appointment, today time.Time, aheadDays int) []model.Appointment {
	if aheadDays < 0 {
		aheadDays = 0
	}
	first := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	last := first.AddDate(0, 0, aheadDays)

	out := make([]model.Appointment, 0)
	for _, rec := range records {
		d := time.Date(rec.Date.Year(), rec.Date.Month(), rec.Date.Day(), 0, 0, 0, 0, today.Location())
		if d.Before(first) || d.After(last) {
			continue
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Reminder periodically scans the log and notifies about due appointments.
type Reminder struct {
	src       Source
	loc       *time.Location
	aheadDays int
	now       func() time.Time
	notify    func(model.Appointment)
}

// New returns a Reminder that logs each due appointment. A nil loc means
// time.Local.
func New(src Source, loc *time.Location, aheadDays int) *Reminder {
	if loc == nil {
		loc = time.Local
	}
	return &Reminder{
		src:       src,
		loc:       loc,
		aheadDays: aheadDays,
		now:       time.Now,
		notify:    logReminder,
	}
}

// SetNotify replaces the default log-line notification.
func (r *Reminder) SetNotify(fn func(model.Appointment)) {
	if fn != nil {
		r.notify = fn
	}
}

// SetClock overrides the time source; used by tests.
func (r *Reminder) SetClock(now func() time.Time) {
	r.now = now
}

// RunOnce notifies about every due appointment and returns how many there were.
func (r *Reminder) RunOnce() (int, error) {
	records, err := r.src.ReadAll(r.loc)
	if err != nil {
		return 0, err
	}

	due := Due(records, r.now().In(r.loc), r.aheadDays)
	for _, rec := range due {
		r.notify(rec)
	}
	appLog.Debug("reminder scan completed", "records", len(records), "due", len(due))
	return len(due), nil
}

// Start runs RunOnce on the given cron schedule until ctx is cancelled.
// It blocks; an invalid spec is returned immediately.
func (r *Reminder) Start(ctx context.Context, spec string) error {
	if spec == "" {
		return errors.New("remind: cron spec is empty")
	}

	c := cron.New(cron.WithLocation(r.loc))
	if _, err := c.AddFunc(spec, func() {
		if _, err := r.RunOnce(); err != nil {
			appLog.Error("reminder scan failed", err)
		}
	}); err != nil {
		return err
	}

	appLog.Info("reminder scheduler started", "schedule", spec, "timezone", r.loc.String(), "ahead_days", r.aheadDays)
	c.Start()

	<-ctx.Done()

	// Wait for a running scan to finish.
	<-c.Stop().Done()
	appLog.Info("reminder scheduler stopped")
	return nil
}

func logReminder(rec model.Appointment) {
	appLog.Info("appointment reminder",
		"date", rec.Date.Format(model.DateLayout),
		"day", rec.Day,
		"time", rec.Time,
		"reason", rec.Reason,
	)
}
