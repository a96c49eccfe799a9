package appointment

import (
	"strconv"
	"strings"
	"time"
)

// Weekday is a day index where Monday is 0 and Sunday is 6.
type Weekday int

const (
	NoWeekday Weekday = -1

	Monday Weekday = iota - 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return "none"
	}
	return weekdayNames[w]
}

// WeekdayOf returns the Monday-based index of t's weekday.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// ParseWeekday accepts full names, three-letter abbreviations (any case)
// and the digits 0-6. An empty string means no selection.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoWeekday, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < int(Monday) || n > int(Sunday) {
			return NoWeekday, ErrInvalidInput
		}
		return Weekday(n), nil
	}
	for i, name := range weekdayNames {
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return Weekday(i), nil
		}
	}
	return NoWeekday, ErrInvalidInput
}

// Meridiem is the AM/PM designator of a 12-hour clock time.
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// Input is one form submission as delivered by a front end.
type Input struct {
	Weekday  Weekday  `validate:"min=-1,max=6"`
	TimeText string
	Meridiem Meridiem `validate:"oneof=AM PM"`
	Reason   string
}
