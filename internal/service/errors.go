package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// The API layer maps these to HTTP status codes.
var (
	// ErrNoNoble indicates no noble has been created yet.
	// API layer should map this to HTTP 404 Not Found.
	ErrNoNoble = errors.New("noble not found")

	// ErrNobleExists indicates Create was called when a noble already exists.
	// API layer should map this to HTTP 409 Conflict.
	ErrNobleExists = errors.New("noble already exists")

	// ErrStoreUnavailable indicates the store is still loading or failed to load.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrStoreUnavailable = errors.New("state store unavailable")

	// ErrInvalidCommand indicates a command payload could not be decoded.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidCommand = errors.New("invalid command payload")
)

// ServiceError wraps unexpected errors from a service with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "add_resources")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// It returns known sentinel errors directly without wrapping.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{ErrNoNoble, ErrNobleExists, ErrStoreUnavailable} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
