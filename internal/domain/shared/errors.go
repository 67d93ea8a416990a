package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every bounded context. The HTTP layer maps them to
// status codes, so new codes must be registered there as well.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidState        = "INVALID_STATE"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so errors.Is works against
// the sentinel values below regardless of message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError reports a missing entity, or one owned by another tenant.
func NewNotFoundError(entity string, id fmt.Stringer) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", entity, id))
}

// NewValidationError reports a violated business precondition.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewInvalidStateError reports a forbidden state transition.
func NewInvalidStateError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidState, fmt.Sprintf(format, args...))
}

// NewConcurrencyError reports a lost optimistic lock on the named entity.
func NewConcurrencyError(entity string) *DomainError {
	return NewDomainError(CodeConcurrencyConflict, entity+" was modified by another process")
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrValidation          = NewDomainError(CodeValidation, "Validation failed")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// ErrorCode extracts the domain error code from err, or "" for foreign errors.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
