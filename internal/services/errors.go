package services

import (
	"sort"
	"strings"
)

// ValidationError carries per-field messages keyed by request field name.
// Err, when set, is the sentinel the messages stand for.
type ValidationError struct {
	Err    error
	Fields map[string][]string
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Add appends messages for field.
func (e *ValidationError) Add(field string, messages ...string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], messages...)
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(cause error, field string, messages ...string) *ValidationError {
	return &ValidationError{Err: cause, Fields: map[string][]string{field: messages}}
}
