package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all backends.
var (
	// ErrNotFound is returned when no snapshot exists for a kind and id.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStaleVersion is returned by Put when the stored snapshot has a
	// higher version than the one being written. The write is discarded.
	ErrStaleVersion = errors.New("stale snapshot version")

	// ErrChecksumMismatch is returned when a loaded payload does not match
	// its recorded checksum.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrInvalidSnapshot is returned when a snapshot fails validation
	// before being stored.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("storage unavailable")
)

// IsNotFoundError checks if the error is a "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Kind      string // The aggregate kind (e.g., "noble", "territories")
	Operation string // The operation that failed (e.g., "load", "save")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Kind, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given kind, operation, message, and wrapped error.
func NewStoreError(kind, operation, message string, err error) *StoreError {
	return &StoreError{
		Kind:      kind,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
