package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidCode      = errors.New("invalid code")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidProgress  = errors.New("invalid progress")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidHealth    = errors.New("invalid health")
)
