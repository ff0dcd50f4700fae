package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when no record is stored for a descriptor.
	ErrNotFound = errors.New("annotation not found")
)
