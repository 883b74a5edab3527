package timeline

import (
	"time"

	"github.com/hylla/ritning/internal/domain"
)

// MinWidthPercent keeps same-day and clipped bars visible.
const MinWidthPercent = 0.5

// Position places a bar inside the grid as percentages of the range width.
type Position struct {
	LeftPercent  float64
	WidthPercent float64
}

// RightPercent returns where the bar ends.
func (p Position) RightPercent() float64 {
	return p.LeftPercent + p.WidthPercent
}

// PositionTask clips [start, end] to the range and converts it to percentages.
//
// Offsets are clamped to the last visible day, so bars entirely outside the
// range collapse onto the nearest edge. end before start is treated as a
// single-day task.
func PositionTask(r Range, start, end time.Time) Position {
	total := r.Days()
	if total <= 0 {
		return Position{WidthPercent: MinWidthPercent}
	}
	start, end = normalizeSpan(start, end)

	startOffset := clamp(daysBetween(r.Start, start), 0, total-1)
	endOffset := clamp(daysBetween(r.Start, end), 0, total-1)
	width := float64(endOffset-startOffset+1) / float64(total) * 100
	return Position{
		LeftPercent:  float64(startOffset) / float64(total) * 100,
		WidthPercent: max(width, MinWidthPercent),
	}
}

// PositionMilestone returns the left percent of a point marker.
func PositionMilestone(r Range, date time.Time) float64 {
	return PositionTask(r, date, date).LeftPercent
}

// Overlaps reports whether any day of [start, end] is inside the range.
func Overlaps(r Range, start, end time.Time) bool {
	start, end = normalizeSpan(start, end)
	return !end.Before(r.Start) && !start.After(r.End)
}

func normalizeSpan(start, end time.Time) (time.Time, time.Time) {
	start = domain.DateOf(start)
	end = domain.DateOf(end)
	if end.Before(start) {
		end = start
	}
	return start, end
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
