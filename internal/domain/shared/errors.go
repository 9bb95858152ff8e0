package shared

import (
	"errors"
	"sort"
	"strings"
)

// Domain error codes
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so that errors.Is(err, ErrNotFound)
// holds for any NOT_FOUND error regardless of its message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error that keeps the original cause
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrConflict     = NewDomainError(CodeConflict, "Resource already exists")
	ErrInvalidInput = NewDomainError(CodeValidation, "Invalid input provided")
)

// ValidationErrors collects field-keyed validation messages
type ValidationErrors map[string][]string

// Add appends a message for the given field
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Merge copies every message of other into v
func (v ValidationErrors) Merge(other ValidationErrors) {
	for field, msgs := range other {
		v[field] = append(v[field], msgs...)
	}
}

// HasErrors reports whether any field has a message
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Err returns v as an error, or nil when empty
func (v ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// Error implements the error interface
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(v[field], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalidInput) match field-keyed errors
func (v ValidationErrors) Is(target error) bool {
	var t *DomainError
	return errors.As(target, &t) && t.Code == CodeValidation
}

// NewFieldError returns a ValidationErrors with a single message
func NewFieldError(field, message string) ValidationErrors {
	return ValidationErrors{field: {message}}
}
