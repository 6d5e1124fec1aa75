package models

import (
	"errors"
	"fmt"
)

// ErrorKind is the error taxonomy reported across the publish pipeline boundary.
type ErrorKind string

const (
	ErrorKindConfigMissing          ErrorKind = "ConfigMissing"
	ErrorKindAuthFailed             ErrorKind = "AuthFailed"
	ErrorKindPermissionDenied       ErrorKind = "PermissionDenied"
	ErrorKindNotFound               ErrorKind = "NotFound"
	ErrorKindRemoteUnreachable      ErrorKind = "RemoteUnreachable"
	ErrorKindRemoteRejected         ErrorKind = "RemoteRejected"
	ErrorKindMediaUploadFailed      ErrorKind = "MediaUploadFailed"
	ErrorKindLocalPersistenceFailed ErrorKind = "LocalPersistenceFailed"
	ErrorKindRelayOffline           ErrorKind = "RelayOffline"
	ErrorKindRelayRejected          ErrorKind = "RelayRejected"

	// Local failures detected before any remote call.
	ErrorKindInvalidRequest ErrorKind = "InvalidRequest"
	ErrorKindDraftNotFound  ErrorKind = "DraftNotFound"
	ErrorKindInternal       ErrorKind = "Internal"
)

// Error wraps a pipeline failure with its taxonomy kind and, for remote
// failures, the HTTP status and (truncated) response body.
type Error struct {
	Kind   ErrorKind
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Kind, e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new kinded error.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NewStatusError creates a kinded error for a non-success HTTP response.
func NewStatusError(kind ErrorKind, op string, status int, body string) *Error {
	return &Error{Kind: kind, Op: op, Status: status, Body: body}
}

// KindOf returns the ErrorKind carried by err, or Internal when err has none.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var kinded *Error
	if errors.As(err, &kinded) {
		return kinded.Kind
	}

	return ErrorKindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
