package timeline

import (
	"math"
	"time"

	"github.com/hylla/ritning/internal/domain"
)

// Range is an inclusive span of calendar dates.
type Range struct {
	Start time.Time
	End   time.Time
}

// Days returns the inclusive day count of the range.
func (r Range) Days() int {
	return daysBetween(r.Start, r.End) + 1
}

// Contains reports whether the calendar date of ts falls inside the range.
func (r Range) Contains(ts time.Time) bool {
	day := domain.DateOf(ts)
	return !day.Before(r.Start) && !day.After(r.End)
}

// WindowFor returns the visible range for an anchor date and view mode.
//
// week spans the Sunday on or before anchor plus 13 days, month spans the
// anchor's month and the next one, and quarter spans six months from the
// first day of the anchor's calendar quarter.
func WindowFor(anchor time.Time, mode ViewMode) (Range, error) {
	if err := mode.Validate(); err != nil {
		return Range{}, err
	}
	day := domain.DateOf(anchor)
	year, month, _ := day.Date()

	switch mode {
	case ModeWeek:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return Range{Start: start, End: start.AddDate(0, 0, 13)}, nil
	case ModeMonth:
		return Range{
			Start: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
			// Day 0 of month+2 is the last day of month+1.
			End: time.Date(year, month+2, 0, 0, 0, 0, 0, time.UTC),
		}, nil
	default:
		quarterMonth := ((month-1)/3)*3 + 1
		return Range{
			Start: time.Date(year, quarterMonth, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year, quarterMonth+6, 0, 0, 0, 0, 0, time.UTC),
		}, nil
	}
}

// daysBetween returns the signed whole-day distance between two dates.
func daysBetween(from, to time.Time) int {
	return int(math.Round(domain.DateOf(to).Sub(domain.DateOf(from)).Hours() / 24))
}
