package domain

import (
	"fmt"
	"time"
)

// DateLayout is the layout accepted for configured range bounds.
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two dates, truncated to calendar days.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if r.End.Before(r.Start) {
		return DateRange{}, fmt.Errorf("end date %s is before start date %s",
			r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	return r, nil
}

// ParseDateRange parses two YYYY-MM-DD bounds.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse start date: %w", err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse end date: %w", err)
	}
	return NewDateRange(s, e)
}

// Day returns midnight UTC of t's calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Next returns the calendar day after d.
func Next(d time.Time) time.Time {
	return d.AddDate(0, 0, 1)
}

// Len returns the number of days in the range.
func (r DateRange) Len() int {
	// Both bounds are UTC midnights, so the difference is a whole number of days.
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Days lists every date in the range in ascending order.
func (r DateRange) Days() []time.Time {
	days := make([]time.Time, 0, r.Len())
	for d := r.Start; !d.After(r.End); d = Next(d) {
		days = append(days, d)
	}
	return days
}
