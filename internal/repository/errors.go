// Package repository defines the error contract shared by the record store
// backends. The domain services classify store failures against these
// sentinels; the concrete repositories in internal/bitable and
// internal/sqlite wrap their backend errors into them.
package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable is returned when the backing store could not be
	// reached within the retry budget. The effect of an interrupted write
	// is unknown and must be reconciled by re-reading state.
	ErrUnavailable = errors.New("store unavailable")
)
