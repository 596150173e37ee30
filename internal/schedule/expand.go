package schedule

import (
	"errors"
	"sort"
	"time"
)

var (
	// ErrInvalidPeriod is returned when a recurrence period has end <= start.
	ErrInvalidPeriod = errors.New("period end must be after period start")
	// ErrClassesRequired is returned when a date spec yields no dates at all.
	// A payment with zero classes is a creation error, never a silent success.
	ErrClassesRequired = errors.New("date spec yields no classes")
)

// ExpandRecurrence walks weekly occurrences from start, stepping exactly
// 7 days, keeping every date <= end. The result is ascending by construction
// and always contains at least the start date.
func ExpandRecurrence(start, end CalendarDate) ([]CalendarDate, error) {
	if !end.After(start) {
		return nil, ErrInvalidPeriod
	}
	var out []CalendarDate
	for d := start; !d.After(end); d = d.AddDays(7) {
		out = append(out, d)
	}
	return out, nil
}

// NormalizeExplicit filters blank/invalid entries out of an explicit date
// list, collapses entries that denote the same calendar day, and sorts
// ascending. An empty result is ErrClassesRequired: the caller asked for a
// payment with no lessons, which is exactly the silent-zero-classes bug this
// path exists to reject.
func NormalizeExplicit(raw []string) ([]CalendarDate, error) {
	seen := make(map[CalendarDate]bool, len(raw))
	var out []CalendarDate
	for _, s := range raw {
		d, err := ParseDate(s)
		if err != nil {
			continue
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, ErrClassesRequired
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// DateSet is a set of calendar days, used to diff a payment's stored classes
// against a re-expanded spec.
type DateSet map[CalendarDate]bool

func NewDateSet(dates []CalendarDate) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = true
	}
	return s
}

// DateSetOfTimes builds a set from persisted timestamps (any anchor/zone).
func DateSetOfTimes(ts []time.Time) DateSet {
	s := make(DateSet, len(ts))
	for _, t := range ts {
		s[DateOf(t.UTC())] = true
	}
	return s
}

func (s DateSet) Equal(other DateSet) bool {
	if len(s) != len(other) {
		return false
	}
	for d := range s {
		if !other[d] {
			return false
		}
	}
	return true
}
