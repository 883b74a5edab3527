package timeline

import (
	"fmt"
	"slices"
	"strings"
)

// ViewMode selects window length and column granularity.
type ViewMode string

// ViewMode values.
const (
	ModeWeek    ViewMode = "week"
	ModeMonth   ViewMode = "month"
	ModeQuarter ViewMode = "quarter"
)

var validModes = []ViewMode{ModeWeek, ModeMonth, ModeQuarter}

// Modes returns every supported view mode in display order.
func Modes() []ViewMode {
	return slices.Clone(validModes)
}

// ParseViewMode normalizes raw input and rejects unknown modes.
func ParseViewMode(raw string) (ViewMode, error) {
	mode := ViewMode(strings.ToLower(strings.TrimSpace(raw)))
	if err := mode.Validate(); err != nil {
		return "", err
	}
	return mode, nil
}

// Validate reports ErrInvalidViewMode for anything outside week/month/quarter.
func (m ViewMode) Validate() error {
	if !slices.Contains(validModes, m) {
		return fmt.Errorf("%w: %q", ErrInvalidViewMode, string(m))
	}
	return nil
}
