package analytics

import (
	"strings"
	"time"
)

// Period selects a calendar window around a reference instant.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod parses a period name case-insensitively. Unknown names fall back to day.
func ParsePeriod(raw string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(raw))) {
	case PeriodWeek:
		return PeriodWeek
	case PeriodMonth:
		return PeriodMonth
	default:
		return PeriodDay
	}
}

// Range is an inclusive time interval. A zero bound is open.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// DateRange returns the calendar day, Monday-based week or month containing ref in loc.
// The end bound is the last nanosecond of the period.
func DateRange(p Period, ref time.Time, loc *time.Location) Range {
	if loc == nil {
		loc = time.Local
	}
	ref = ref.In(loc)
	y, m, d := ref.Date()
	var start, end time.Time
	switch ParsePeriod(string(p)) {
	case PeriodWeek:
		offset := (int(ref.Weekday()) + 6) % 7
		start = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		end = time.Date(y, m, d-offset+7, 0, 0, 0, 0, loc)
	case PeriodMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		end = time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
	default:
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
		end = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	}
	return Range{From: start, To: end.Add(-time.Nanosecond)}
}
