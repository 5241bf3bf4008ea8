package analytics

import (
	"time"

	"github.com/meetvo/backend/pkg/apperr"
)

const (
	dateLayout       = "2006-01-02"
	defaultRangeDays = 30
)

// inactivityCutoffs maps timeframe tokens to a number of days back from now.
var inactivityCutoffs = map[string]int{
	"2w": 14,
	"1m": 30,
	"3m": 90,
	"6m": 180,
	"1y": 365,
}

// DateRange is an inclusive window at day precision: Start is floored to
// 00:00:00 and End is ceiled to the last instant of its calendar day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseRange builds a range from ISO date strings (YYYY-MM-DD). Missing or
// unparseable values fall back to the default window: the last 30 days
// ending today.
func ParseRange(startStr, endStr string, now time.Time) DateRange {
	end := now
	if t, err := time.Parse(dateLayout, endStr); err == nil {
		end = t
	}
	start := end.AddDate(0, 0, -defaultRangeDays)
	if t, err := time.Parse(dateLayout, startStr); err == nil {
		start = t
	}
	return DateRange{Start: floorDay(start), End: ceilDay(end)}
}

// Contains reports whether t falls inside the range, inclusive.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ParseCutoff resolves an inactivity timeframe token (2w, 1m, 3m, 6m, 1y)
// or an explicit ISO date to an absolute cutoff measured back from now.
func ParseCutoff(timeframe string, now time.Time) (time.Time, error) {
	if days, ok := inactivityCutoffs[timeframe]; ok {
		return now.AddDate(0, 0, -days), nil
	}
	if t, err := time.Parse(dateLayout, timeframe); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation("invalid timeframe, use 2w, 1m, 3m, 6m, 1y or an ISO date")
}

func floorDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func ceilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// dayKey formats a timestamp as its calendar day for grouping.
func dayKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
