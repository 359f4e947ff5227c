package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique attribute is already taken.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrSelfDelete is returned when an account attempts to remove itself.
	ErrSelfDelete = errors.New("persistence: account cannot delete itself")
	// ErrConstraintViolation is returned when a required attribute is missing.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrPersistFailed is returned when the durable file could not be rewritten.
	ErrPersistFailed = errors.New("persistence: durable write failed")
)

// PersistError reports a failed rewrite of the durable file. Applied reports
// whether the in-memory mutation was kept despite the failure.
type PersistError struct {
	Applied bool
	Err     error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("persistence: durable write failed (applied=%t): %v", e.Applied, e.Err)
}

// Unwrap exposes both ErrPersistFailed and the underlying cause.
func (e *PersistError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return []error{ErrPersistFailed, e.Err}
}
