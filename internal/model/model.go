package model

import "time"

// DateLayout is the on-disk date format of the log's Date column.
const DateLayout = "2006-01-02"

// Header is the first row of every appointment log file.
var Header = []string{"Date", "Day", "Time", "Reason"}

// Appointment is a single recorded appointment, one row of the log.
// Values are built once by the appointment package and never updated.
type Appointment struct {
	// Date is midnight of the appointment day in the configured timezone.
	Date time.Time

	// Day is the full English weekday name of Date (e.g. "Monday").
	Day string

	// Time is the user's time text plus meridiem, e.g. "9:30 AM".
	Time string

	// Reason is free text, possibly empty or multi-line.
	Reason string
}

// Row renders the appointment as CSV fields in Header order.
func (a Appointment) Row() []string {
	return []string{a.Date.Format(DateLayout), a.Day, a.Time, a.Reason}
}
