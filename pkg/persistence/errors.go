package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrDraftNotFound indicates a draft was not found by the given identifier.
	ErrDraftNotFound = errors.New("draft not found")

	// ErrTenantConfigNotFound indicates no CMS configuration exists for the tenant.
	ErrTenantConfigNotFound = errors.New("tenant cms config not found")

	// ErrPublishRecordNotFound indicates the draft has never been published.
	ErrPublishRecordNotFound = errors.New("publish record not found")

	// ErrInvalidID indicates an identifier that cannot be stored safely.
	ErrInvalidID = errors.New("invalid identifier")
)

// RecordError wraps a repository failure with the operation and entity it concerns.
type RecordError struct {
	Op     string // Operation being performed (e.g., "GetByID", "Commit")
	Entity string // Entity kind (e.g., "draft", "tenant")
	ID     string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for record errors.
func (e *RecordError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDraftError creates a draft error with context.
func NewDraftError(op, draftID string, err error) *RecordError {
	return &RecordError{Op: op, Entity: "draft", ID: draftID, Err: err}
}

// NewTenantError creates a tenant config error with context.
func NewTenantError(op, tenantID string, err error) *RecordError {
	return &RecordError{Op: op, Entity: "tenant", ID: tenantID, Err: err}
}

// NewPublishRecordError creates a publish record error with context.
func NewPublishRecordError(op, draftID string, err error) *RecordError {
	return &RecordError{Op: op, Entity: "publish record", ID: draftID, Err: err}
}

// IsDraftNotFound checks if an error indicates a draft was not found.
func IsDraftNotFound(err error) bool {
	return errors.Is(err, ErrDraftNotFound)
}

// IsTenantConfigNotFound checks if an error indicates a tenant config was not found.
func IsTenantConfigNotFound(err error) bool {
	return errors.Is(err, ErrTenantConfigNotFound)
}

// IsPublishRecordNotFound checks if an error indicates a publish record was not found.
func IsPublishRecordNotFound(err error) bool {
	return errors.Is(err, ErrPublishRecordNotFound)
}
