package timeline

import (
	"fmt"
	"time"

	"github.com/hylla/ritning/internal/domain"
)

// weekStepDays is the column width in quarter mode.
const weekStepDays = 7

// Column is one grid column: a day in week/month mode, a 7-day step in quarter mode.
type Column struct {
	Date           time.Time
	Label          string
	IsWeekend      bool
	IsToday        bool
	IsFirstOfMonth bool
}

// MonthGroup is one month header spanning consecutive columns.
type MonthGroup struct {
	Label       string
	Year        int
	Month       time.Month
	ColumnCount int
}

// BuildColumns enumerates the grid columns for a range.
func BuildColumns(r Range, mode ViewMode, today time.Time) ([]Column, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	today = domain.DateOf(today)
	if r.End.Before(r.Start) {
		return []Column{}, nil
	}
	if mode == ModeQuarter {
		return weekColumns(r, today), nil
	}

	out := make([]Column, 0, r.Days())
	for day := r.Start; !day.After(r.End); day = day.AddDate(0, 0, 1) {
		out = append(out, Column{
			Date:           day,
			Label:          dayLabel(day, mode),
			IsWeekend:      day.Weekday() == time.Saturday || day.Weekday() == time.Sunday,
			IsToday:        day.Equal(today),
			IsFirstOfMonth: day.Day() == 1,
		})
	}
	return out, nil
}

// weekColumns steps through the range seven days at a time.
func weekColumns(r Range, today time.Time) []Column {
	out := make([]Column, 0, r.Days()/weekStepDays+1)
	for day := r.Start; !day.After(r.End); day = day.AddDate(0, 0, weekStepDays) {
		stepEnd := day.AddDate(0, 0, weekStepDays-1)
		out = append(out, Column{
			Date:           day,
			Label:          weekOfMonthLabel(day),
			IsToday:        !today.Before(day) && !today.After(stepEnd),
			IsFirstOfMonth: day.Day() <= weekStepDays,
		})
	}
	return out
}

// weekOfMonthLabel renders S{ceil(day/7)}; the index restarts every month.
func weekOfMonthLabel(day time.Time) string {
	return fmt.Sprintf("S%d", (day.Day()+weekStepDays-1)/weekStepDays)
}

func dayLabel(day time.Time, mode ViewMode) string {
	if mode == ModeWeek {
		return day.Format("Mon 2")
	}
	return day.Format("2")
}

// GroupMonths buckets consecutive columns sharing a (month, year) into headers.
func GroupMonths(columns []Column) []MonthGroup {
	out := []MonthGroup{}
	if len(columns) == 0 {
		return out
	}

	current := newMonthGroup(columns[0].Date)
	for _, column := range columns {
		year, month, _ := column.Date.Date()
		if year != current.Year || month != current.Month {
			out = append(out, current)
			current = newMonthGroup(column.Date)
		}
		current.ColumnCount++
	}
	return append(out, current)
}

func newMonthGroup(day time.Time) MonthGroup {
	year, month, _ := day.Date()
	return MonthGroup{
		Label: day.Format("Jan 2006"),
		Year:  year,
		Month: month,
	}
}
