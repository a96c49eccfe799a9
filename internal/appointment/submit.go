package appointment

import (
	"fmt"
	"sync"
	"time"

	appLog "apptlog/internal/log"
	"apptlog/internal/model"
)

// Store persists validated appointments.
type Store interface {
	Append(rec model.Appointment) error
}

// Submitter validates submissions and appends them to a Store.
type Submitter struct {
	store Store
	loc   *time.Location
	now   func() time.Time

	// mu keeps appends single-writer when several front ends share one log.
	mu sync.Mutex
}

// NewSubmitter returns a Submitter computing "today" in loc.
// A nil loc means time.Local.
func NewSubmitter(store Store, loc *time.Location) *Submitter {
	if loc == nil {
		loc = time.Local
	}
	return &Submitter{store: store, loc: loc, now: time.Now}
}

// SetClock overrides the time source; used by tests.
func (s *Submitter) SetClock(now func() time.Time) {
	s.now = now
}

// Today returns the current date in the submitter's location.
func (s *Submitter) Today() time.Time {
	return s.now().In(s.loc)
}

// Submit records in if it is valid. Nothing is written on any error.
func (s *Submitter) Submit(in Input) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := Build(in, s.Today())
	if err != nil {
		appLog.Debug("appointment rejected", "reason", err.Error(), "weekday", in.Weekday.String(), "time", in.TimeText)
		return model.Appointment{}, err
	}

	if err := s.store.Append(rec); err != nil {
		return model.Appointment{}, fmt.Errorf("append appointment: %w", err)
	}

	appLog.Info("appointment recorded",
		"date", rec.Date.Format(model.DateLayout),
		"day", rec.Day,
		"time", rec.Time,
	)
	return rec, nil
}
