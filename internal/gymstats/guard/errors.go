package guard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrHasDependents   = errors.New("still referenced by other records")
	ErrConflict        = errors.New("concurrent modification")
)

// ValidationError carries one message per rejected input field, keyed by the field's json name.
type ValidationError struct {
	Fields map[string]string `json:"errors"`
}

func NewValidationError(field, message string) *ValidationError {
	ve := &ValidationError{}
	ve.Add(field, message)
	return ve
}

// Add keeps the first message reported for a field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Merge folds other into e and returns the combined error, nil when both are empty.
func Merge(e, other *ValidationError) *ValidationError {
	if e == nil {
		return other
	}
	if other != nil {
		for f, msg := range other.Fields {
			e.Add(f, msg)
		}
	}
	return e
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
