package appointment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"apptlog/internal/model"
)

var validate = validator.New()

// ParseTime parses "H" or "H:MM" with H in 1..12 and MM in 0..59.
// The text is split on the first colon; a missing or empty minute part is 0.
// Whitespace around either part is ignored ("9 : 30").
func ParseTime(text string) (hour, minute int, err error) {
	hourPart, minutePart, _ := strings.Cut(text, ":")
	hourPart = strings.TrimSpace(hourPart)
	minutePart = strings.TrimSpace(minutePart)

	hour, err = strconv.Atoi(hourPart)
	if err != nil {
		return 0, 0, ErrInvalidTime
	}
	if minutePart != "" {
		minute, err = strconv.Atoi(minutePart)
		if err != nil {
			return 0, 0, ErrInvalidTime
		}
	}

	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTime
	}
	return hour, minute, nil
}

// Clock converts a 12-hour time text and meridiem to a 24-hour clock.
func Clock(text string, m Meridiem) (hour, minute int, err error) {
	hour, minute, err = ParseTime(text)
	if err != nil {
		return 0, 0, err
	}
	hour %= 12
	if m == PM {
		hour += 12
	}
	return hour, minute, nil
}

// NextDate returns midnight of the first day on or after today whose
// weekday is w. When w is today's weekday the result is today.
func NextDate(w Weekday, today time.Time) time.Time {
	offset := ((int(w)-int(WeekdayOf(today)))%7 + 7) % 7
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	return day.AddDate(0, 0, offset)
}

// Validate checks a submission without side effects. A missing weekday
// wins over every other problem, since such submissions are dropped unread.
func Validate(in Input) error {
	if in.Weekday == NoWeekday {
		return ErrNoWeekdaySelected
	}
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, _, err := ParseTime(in.TimeText); err != nil {
		return err
	}
	return nil
}

// Build validates in and computes the record it would produce for today.
func Build(in Input, today time.Time) (model.Appointment, error) {
	if err := Validate(in); err != nil {
		return model.Appointment{}, err
	}

	date := NextDate(in.Weekday, today)
	return model.Appointment{
		Date:   date,
		Day:    date.Weekday().String(),
		Time:   strings.TrimSpace(in.TimeText) + " " + string(in.Meridiem),
		Reason: in.Reason,
	}, nil
}
