package storage

import "errors"

// Common errors returned by storage implementations.
var (
	// ErrFull is returned when a new session would exceed the configured capacity.
	ErrFull = errors.New("storage is full")
	// ErrClosed is returned by operations on a closed storage.
	ErrClosed = errors.New("storage is closed")
)
