// Package services orchestrates publishing and connectivity checks over the pipeline components.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest indicates a malformed caller request (400).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDraftIDRequired is returned when a publish request names no draft.
	ErrDraftIDRequired = errors.New("draft id is required")

	// ErrAlreadyPublished is returned when a draft already has a remote post
	// and the caller did not force a new one (409).
	ErrAlreadyPublished = errors.New("draft already has a CMS post")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrDraftIDRequired)
}

// IsConflictError checks if an error should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyPublished)
}

// NewConflictError creates a conflict error with context.
func NewConflictError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
