package errs

import (
	"sort"
	"strings"
)

// Sentinel categories shared by the domain, usecase and handler layers.
// Concrete errors are marked with one of these and matched with Is.
var (
	ErrInvalidInput        = New("invalid input")
	ErrAuthorizationDenied = New("authorization denied")
	ErrNotFound            = New("not found")
	ErrConflict            = New("conflict")
	ErrInternal            = New("internal error")
)

// ValidationError carries per-field messages for an invalid request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Err returns nil when no field failed, otherwise the error marked as ErrInvalidInput.
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return Mark(e, ErrInvalidInput)
}

func NewFieldError(field, msg string) error {
	ve := &ValidationError{}
	ve.Add(field, msg)
	return ve.Err()
}
