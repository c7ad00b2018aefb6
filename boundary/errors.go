package boundary

import "errors"

// Sentinel errors for boundary-reference operations.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrSaltNotFound indicates that no salt is stored under the requested
	// scope key.
	ErrSaltNotFound = errors.New("salt not found")

	// ErrStoreClosed indicates an operation on a closed salt store.
	ErrStoreClosed = errors.New("salt store is closed")

	// ErrNoEndpoints indicates an etcd store configured without endpoints.
	ErrNoEndpoints = errors.New("salt store endpoints cannot be empty")
)
