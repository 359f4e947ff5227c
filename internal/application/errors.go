package application

import "errors"

var (
	// ErrUnauthorized is returned when a session token is missing, unknown or expired, and for every failed login.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrForbidden is returned when the session's role does not satisfy the operation's requirement.
	ErrForbidden = errors.New("application: forbidden")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a username is already taken.
	ErrConflict = errors.New("application: conflict")
	// ErrSelfDelete is returned when an administrator attempts to delete their own account.
	ErrSelfDelete = errors.New("application: account cannot delete itself")
	// ErrPersistence is returned when the durable record file could not be rewritten.
	ErrPersistence = errors.New("application: persistence failed")
)

// PersistenceError reports a failed durable write. Applied is true when the
// in-memory mutation stands despite the failure.
type PersistenceError struct {
	Applied bool
	Err     error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	if e == nil || e.Err == nil {
		return ErrPersistence.Error()
	}
	return ErrPersistence.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both ErrPersistence and the underlying cause.
func (e *PersistenceError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return []error{ErrPersistence, e.Err}
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
