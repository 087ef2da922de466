package models

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable machine-readable category of a domain failure.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation_error"
	KindNotFound      ErrorKind = "not_found"
	KindAuthorization ErrorKind = "authorization_error"
	KindConflict      ErrorKind = "conflict"
	KindState         ErrorKind = "state_error"
	KindDependency    ErrorKind = "dependency_error"
)

// DomainError carries an error kind alongside a human-readable message.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...interface{}) *DomainError {
	return newError(KindValidation, format, args...)
}

func NewNotFoundError(format string, args ...interface{}) *DomainError {
	return newError(KindNotFound, format, args...)
}

func NewAuthorizationError(format string, args ...interface{}) *DomainError {
	return newError(KindAuthorization, format, args...)
}

func NewConflictError(format string, args ...interface{}) *DomainError {
	return newError(KindConflict, format, args...)
}

func NewStateError(format string, args ...interface{}) *DomainError {
	return newError(KindState, format, args...)
}

// NewDependencyError wraps a collaborator failure.
func NewDependencyError(cause error, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindDependency, Message: fmt.Sprintf(format, args...), Err: cause}
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

func IsValidation(err error) bool    { return IsKind(err, KindValidation) }
func IsNotFound(err error) bool      { return IsKind(err, KindNotFound) }
func IsAuthorization(err error) bool { return IsKind(err, KindAuthorization) }
func IsConflict(err error) bool      { return IsKind(err, KindConflict) }
func IsState(err error) bool         { return IsKind(err, KindState) }
func IsDependency(err error) bool    { return IsKind(err, KindDependency) }

// KindOf returns the error kind, or empty string for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
