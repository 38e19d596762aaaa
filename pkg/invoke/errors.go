package invoke

import (
	"errors"
	"fmt"

	"github.com/zen-systems/opsgate/pkg/dispatch"
)

// ErrorKind classifies collaborator failures.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindNotFound     ErrorKind = "not-found"
	KindRateLimited  ErrorKind = "rate-limited"
	KindTransient    ErrorKind = "transient"
	KindValidation   ErrorKind = "validation"

	// KindInternal is the catch-all for untyped handler errors.
	KindInternal ErrorKind = "internal"
)

// CollaboratorError wraps a backend failure with its classification and
// the originating decision for traceability.
type CollaboratorError struct {
	Kind     ErrorKind
	Err      error
	Decision *dispatch.Decision
}

func (e *CollaboratorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
	}
	return string(e.Kind)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewUnauthorized wraps an authentication or permission failure.
func NewUnauthorized(err error) *CollaboratorError {
	return &CollaboratorError{Kind: KindUnauthorized, Err: err}
}

// NewNotFound wraps a missing-resource failure.
func NewNotFound(err error) *CollaboratorError {
	return &CollaboratorError{Kind: KindNotFound, Err: err}
}

// NewRateLimited wraps a throttling failure.
func NewRateLimited(err error) *CollaboratorError {
	return &CollaboratorError{Kind: KindRateLimited, Err: err}
}

// NewTransient wraps a failure that is safe to retry.
func NewTransient(err error) *CollaboratorError {
	return &CollaboratorError{Kind: KindTransient, Err: err}
}

// NewValidation wraps a rejected-input failure.
func NewValidation(err error) *CollaboratorError {
	return &CollaboratorError{Kind: KindValidation, Err: err}
}

// KindOf returns the classification of err, or KindInternal when it is
// not a CollaboratorError.
func KindOf(err error) ErrorKind {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// IsUnauthorized reports whether err is an authorization failure.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// Retryable reports whether the handler itself may retry this failure.
// The workflow engine never retries; this is advisory for callers.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTransient, KindRateLimited:
		return true
	}
	return false
}
