package ledger

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts a calendar date or an RFC3339 timestamp. Values without a
// zone are read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidArgument, s)
}

// DateRange is inclusive on both ends. A nil bound is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ParseDateRange builds a range from optional query strings. End is moved to
// the last millisecond of its UTC day so the whole day is included.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if strings.TrimSpace(start) != "" {
		t, err := ParseDate(start)
		if err != nil {
			return r, err
		}
		r.Start = &t
	}
	if strings.TrimSpace(end) != "" {
		t, err := ParseDate(end)
		if err != nil {
			return r, err
		}
		t = EndOfDay(t)
		r.End = &t
	}
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return r, fmt.Errorf("%w: startDate is after endDate", ErrInvalidArgument)
	}
	return r, nil
}

func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, time.UTC)
}

func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}
