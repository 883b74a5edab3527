package timeline

import (
	"fmt"
	"time"

	"github.com/hylla/ritning/internal/domain"
)

// Direction moves the anchor one window back or forward.
type Direction int

// Direction values.
const (
	Backward Direction = -1
	Forward  Direction = 1
)

// Validate reports ErrInvalidDirection for anything other than -1 or +1.
func (d Direction) Validate() error {
	if d != Backward && d != Forward {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return nil
}

// ViewWindow is the only state of the planning view.
type ViewWindow struct {
	Mode   ViewMode
	Anchor time.Time
}

// NewViewWindow validates mode and normalizes the anchor to a calendar date.
func NewViewWindow(mode ViewMode, anchor time.Time) (ViewWindow, error) {
	if err := mode.Validate(); err != nil {
		return ViewWindow{}, err
	}
	return ViewWindow{Mode: mode, Anchor: domain.DateOf(anchor)}, nil
}

// Range returns the visible range for the window.
func (w ViewWindow) Range() (Range, error) {
	return WindowFor(w.Anchor, w.Mode)
}

// Navigate shifts the anchor by one full window: 14 days, 2 months or 6 months.
func Navigate(w ViewWindow, dir Direction) (ViewWindow, error) {
	if err := w.Mode.Validate(); err != nil {
		return ViewWindow{}, err
	}
	if err := dir.Validate(); err != nil {
		return ViewWindow{}, err
	}
	step := int(dir)
	anchor := domain.DateOf(w.Anchor)
	switch w.Mode {
	case ModeWeek:
		anchor = anchor.AddDate(0, 0, 14*step)
	case ModeMonth:
		anchor = addMonthsClamped(anchor, 2*step)
	default:
		anchor = addMonthsClamped(anchor, 6*step)
	}
	return ViewWindow{Mode: w.Mode, Anchor: anchor}, nil
}

// addMonthsClamped moves t by months, capping the day at the target month's last day.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(d, last), 0, 0, 0, 0, t.Location())
}

// JumpToToday resets the anchor to today and keeps the mode.
func JumpToToday(w ViewWindow, today time.Time) (ViewWindow, error) {
	return NewViewWindow(w.Mode, today)
}

// WithMode switches the mode and keeps the anchor.
func WithMode(w ViewWindow, mode ViewMode) (ViewWindow, error) {
	return NewViewWindow(mode, w.Anchor)
}
