package schedule

import (
	"fmt"
	"strings"
	"time"
)

// CalendarDate identifies a lesson day with no time-of-day or timezone
// component. Inputs arrive as ISO strings or timestamps in arbitrary zones;
// they are collapsed to (year, month, day) here at the boundary so every
// downstream comparison is a plain struct equality.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Anchor hour for persisted class dates. Noon keeps the calendar day stable
// when a client renders the timestamp in any zone between UTC-11 and UTC+12.
const anchorHour = 12

func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	// Round-trip through time.Date to normalize overflow (e.g. Feb 30).
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DateOf truncates a timestamp to its wall-clock day in the timestamp's own
// location. Two timestamps that denote the same calendar day to whoever
// produced them map to the same CalendarDate.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate accepts "2006-01-02" or an RFC3339 timestamp.
func ParseDate(s string) (CalendarDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CalendarDate{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return CalendarDate{}, fmt.Errorf("invalid date %q", s)
}

// Time returns the canonical persisted form: noon UTC on the calendar day.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, anchorHour, 0, 0, 0, time.UTC)
}

func (d CalendarDate) String() string {
	return d.Time().Format("2006-01-02")
}

func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d CalendarDate) Before(other CalendarDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d CalendarDate) After(other CalendarDate) bool {
	return other.Before(d)
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}
