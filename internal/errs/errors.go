package errs

import (
	"errors"
	"fmt"
)

// ValidationError indicates malformed caller input. Never retryable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// Validation builds a ValidationError for a named field.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a missing record. Surfaced as 404, never fatal.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// SpatialQueryError wraps a failure of the road-network spatial store.
// Retryable by the caller with backoff; the service never retries itself.
type SpatialQueryError struct {
	Op  string
	Err error
}

func (e *SpatialQueryError) Error() string {
	return fmt.Sprintf("spatial query %s failed: %v", e.Op, e.Err)
}

func (e *SpatialQueryError) Unwrap() error { return e.Err }

// Spatial wraps err as a SpatialQueryError.
func Spatial(op string, err error) error {
	return &SpatialQueryError{Op: op, Err: err}
}

// PersistenceError wraps a failure of the defect/priority store.
// Retryable by the caller; no partial write happened.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError.
func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsRetryable reports whether err is a transient infrastructure failure.
func IsRetryable(err error) bool {
	var se *SpatialQueryError
	var pe *PersistenceError
	return errors.As(err, &se) || errors.As(err, &pe)
}
