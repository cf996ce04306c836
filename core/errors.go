package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ErrorKind classifies a DomainError.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindConflict
	KindForbidden
)

// DomainError is an expected failure of a data-access operation: a missing row,
// a violated uniqueness or capacity rule, or a forbidden action.
// Sentinels are compared by identity, after errors.Cause.
type DomainError struct {
	Kind    ErrorKind
	message string
}

func NewNotFoundError(msg string) error  { return &DomainError{Kind: KindNotFound, message: msg} }
func NewConflictError(msg string) error  { return &DomainError{Kind: KindConflict, message: msg} }
func NewForbiddenError(msg string) error { return &DomainError{Kind: KindForbidden, message: msg} }

func (err DomainError) Error() string {
	return err.message
}

// IsDomainError reports whether err (or its cause) is an expected failure.
func IsDomainError(err error) bool {
	switch errors.Cause(err).(type) {
	case *DomainError, *ValidationError:
		return true
	}
	return false
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
