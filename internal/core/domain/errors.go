package domain

import "errors"

// Domain errors represent business logic failures.
// Store adapters translate driver failures into the two store errors below.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown store driver or batch file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Store Errors.

	// ErrStoreUnavailable indicates the store could not be reached.
	// Covers broken connections, a closed pool and expired deadlines.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrStoreOperationFailed indicates the store was reachable but rejected the call.
	// Covers constraint violations, type mismatches and malformed statements.
	ErrStoreOperationFailed = errors.New("store operation failed")
)

// IsStoreError reports whether err is one of the store errors.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrStoreOperationFailed)
}
