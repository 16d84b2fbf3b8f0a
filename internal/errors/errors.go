// Package errors defines the domain error taxonomy shared by the engine and the
// service layer. The engine only ever reports two kinds of problems: malformed
// input (ValidationError) and internal consistency anomalies (InvariantViolation).
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code is a stable, machine-readable error code.
type Code string

const (
	// CodeValidation marks malformed or out-of-range input. Never retried.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeInvariant marks an internal consistency anomaly that was recovered from.
	CodeInvariant Code = "INVARIANT_VIOLATION"
	CodeNotFound  Code = "NOT_FOUND"
	CodeConflict  Code = "CONFLICT"
)

// DomainError carries a code, a message and, for validation errors, the
// offending field.
type DomainError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is matches any DomainError carrying the same code, so callers can test
// against the package sentinels with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Field == "" || t.Field == e.Field)
}

var (
	ErrValidation = &DomainError{Code: CodeValidation, Message: "invalid input"}
	ErrInvariant  = &DomainError{Code: CodeInvariant, Message: "invariant violated"}
	ErrNotFound   = &DomainError{Code: CodeNotFound, Message: "not found"}
	ErrConflict   = &DomainError{Code: CodeConflict, Message: "conflict"}
)

// Validation returns a ValidationError naming the offending field.
func Validation(field, message string) *DomainError {
	return &DomainError{Code: CodeValidation, Field: field, Message: message}
}

// Validationf is Validation with a formatted message.
func Validationf(field, format string, args ...interface{}) *DomainError {
	return Validation(field, fmt.Sprintf(format, args...))
}

// Invariant returns an InvariantViolation diagnostic.
func Invariant(message string) *DomainError {
	return &DomainError{Code: CodeInvariant, Message: message}
}

func NotFound(what string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: what + " not found"}
}

func Conflict(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	return stderrors.Is(err, ErrValidation)
}

// IsInvariant reports whether err is, or wraps, an InvariantViolation.
func IsInvariant(err error) bool {
	return stderrors.Is(err, ErrInvariant)
}

func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return stderrors.Is(err, ErrConflict)
}

// FieldOf returns the field named by a wrapped ValidationError, or "".
func FieldOf(err error) string {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Field
	}
	return ""
}
