package pipeline

import (
	"errors"
	"fmt"
)

// Validation error kinds.
const (
	KindMissingTimestamp = "missing_timestamp"
	KindNotNumeric       = "not_numeric"
	KindInvalidRange     = "invalid_range"
)

// ValidationError reports malformed caller input. It is never retried.
type ValidationError struct {
	Kind    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
	}
	return "validation: " + e.Message
}

// NewValidationError constructs a validation error.
func NewValidationError(kind, field, message string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: message}
}

// StorageError reports a backing-store failure. The whole operation is
// rolled back and the caller may retry later.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e == nil {
		return "storage error"
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewStorageError wraps err with the failing operation name.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// AsValidation reports whether err is a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// AsStorage reports whether err is a StorageError.
func AsStorage(err error) (*StorageError, bool) {
	var serr *StorageError
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}
