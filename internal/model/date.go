package model

import "time"

// Day is a calendar date in YYYY-MM-DD form. Tasks and history rows are
// keyed by Day, never by timestamp, so a task belongs to exactly one day
// in its owner's timezone.
type Day string

const dayLayout = "2006-01-02"

// DayOf returns the calendar date of t in the given location.
func DayOf(t time.Time, loc *time.Location) Day {
	return Day(t.In(loc).Format(dayLayout))
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", err
	}
	return Day(t.Format(dayLayout)), nil
}

// Prev returns the day before d.
func (d Day) Prev() Day {
	return d.AddDays(-1)
}

// AddDays returns d shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return d
	}
	return Day(t.AddDate(0, 0, n).Format(dayLayout))
}

// Before reports whether d is strictly earlier than other.
// The YYYY-MM-DD form makes lexical order equal to calendar order.
func (d Day) Before(other Day) bool {
	return string(d) < string(other)
}

// Time returns midnight of d in the given location.
func (d Day) Time(loc *time.Location) time.Time {
	t, _ := time.ParseInLocation(dayLayout, string(d), loc)
	return t
}

func (d Day) String() string {
	return string(d)
}
