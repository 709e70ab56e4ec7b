package syncbridge

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyMounted is returned by Mount on a bridge that is already mounted.
	ErrAlreadyMounted = errors.New("bridge already mounted")

	// ErrTornDown is returned by Mount on a bridge that has been torn down.
	ErrTornDown = errors.New("bridge torn down")
)

// PersistenceLoadError is recorded in the store when hydration fails.
type PersistenceLoadError struct {
	Kind string
	ID   string
	Err  error
}

// Error implements the error interface.
func (e *PersistenceLoadError) Error() string {
	return fmt.Sprintf("load %s %q: %v", e.Kind, e.ID, e.Err)
}

// Unwrap returns the adapter error.
func (e *PersistenceLoadError) Unwrap() error {
	return e.Err
}

// PersistenceSaveError describes a failed save. It is logged, never
// surfaced to the code that mutated the store.
type PersistenceSaveError struct {
	Kind    string
	ID      string
	Version uint64
	Err     error
}

// Error implements the error interface.
func (e *PersistenceSaveError) Error() string {
	return fmt.Sprintf("save %s %q at version %d: %v", e.Kind, e.ID, e.Version, e.Err)
}

// Unwrap returns the adapter error.
func (e *PersistenceSaveError) Unwrap() error {
	return e.Err
}
