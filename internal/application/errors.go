package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when the acting user lacks the role required for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when a referenced user, meetup, recipe or template does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when an operation would overwrite something it must not.
	ErrConflict = errors.New("application: conflict")
	// ErrPrecondition is returned when the club is not in a state that permits the operation.
	ErrPrecondition = errors.New("application: precondition failed")
)

// Error carries a user facing message while matching one of the sentinel
// errors through errors.Is.
type Error struct {
	kind    error
	message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.message
}

// Unwrap exposes the sentinel classification.
func (e *Error) Unwrap() error {
	return e.kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

func unauthorized(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args...)
}

func notFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func precondition(format string, args ...any) error {
	return newError(ErrPrecondition, format, args...)
}

func conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface. Field messages are joined in field
// order so the text is stable.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, v.FieldErrors[field])
	}
	return strings.Join(messages, " ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

func invalid(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}
