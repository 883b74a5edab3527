package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidParent     = errors.New("invalid parent task")
	ErrUnsupportedFormat = errors.New("unsupported snapshot version")
)
