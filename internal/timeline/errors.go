package timeline

import "errors"

// ErrInvalidViewMode and related errors describe caller defects rejected at the boundary.
var (
	ErrInvalidViewMode  = errors.New("invalid view mode")
	ErrInvalidDirection = errors.New("invalid navigation direction")
)
