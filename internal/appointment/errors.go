package appointment

import "errors"

var (
	// ErrNoWeekdaySelected means the submission carried no weekday. Front
	// ends drop such submissions without showing anything.
	ErrNoWeekdaySelected = errors.New("appointment: no weekday selected")

	// ErrInvalidTime covers both malformed and out-of-range time text.
	ErrInvalidTime = errors.New("appointment: invalid time")

	// ErrInvalidInput is returned for field values a fixed-choice form
	// cannot produce (unknown meridiem, weekday outside -1..6).
	ErrInvalidInput = errors.New("appointment: invalid input")
)

// InvalidTimeMessage is shown to the user when the time text is rejected.
const InvalidTimeMessage = "Invalid input. Please enter a valid time (e.g. '1:00', '12:40')."

// Message returns the user-facing text for err, or "" for ErrNoWeekdaySelected.
func Message(err error) string {
	switch {
	case err == nil, errors.Is(err, ErrNoWeekdaySelected):
		return ""
	case errors.Is(err, ErrInvalidTime):
		return InvalidTimeMessage
	case errors.Is(err, ErrInvalidInput):
		return "Invalid input. Please choose a day and AM or PM."
	default:
		return err.Error()
	}
}
