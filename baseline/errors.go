package baseline

import "errors"

// Sentinel errors for baseline stores.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrNotFound is returned when no baseline exists for the origin.
	ErrNotFound = errors.New("baseline: no export stored for origin")

	// ErrInvalidOrigin is returned when the origin key is empty.
	ErrInvalidOrigin = errors.New("baseline: origin cannot be empty")

	// ErrInvalidFile is returned when the export fails validation on save.
	ErrInvalidFile = errors.New("baseline: file failed validation")

	// ErrStorageFailed is returned when the underlying backend fails.
	ErrStorageFailed = errors.New("baseline: storage operation failed")
)
