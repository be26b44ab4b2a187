package storage

import "errors"

// Storage package errors.
var (
	// ErrNotFound is returned when a requested setting has never been saved.
	ErrNotFound = errors.New("storage: setting not found")

	// ErrCorrupt is returned when a settings file cannot be decoded.
	ErrCorrupt = errors.New("storage: settings file corrupt")
)
