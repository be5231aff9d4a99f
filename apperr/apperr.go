// Package apperr defines the error kinds shared by the core services.
//
// Callers distinguish user-correctable conditions (validation, not found,
// conflict) from infrastructure failures (model unavailable, persistence)
// with errors.As.
package apperr

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports missing or malformed input. Fields maps a field
// name to the reason it was rejected.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Validation builds a ValidationError. fields may be nil.
func Validation(msg string, fields map[string]string) error {
	return &ValidationError{Message: msg, Fields: fields}
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	if e.Key == nil {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

// NotFound builds a NotFoundError.
func NotFound(entity string, key any) error {
	return &NotFoundError{Entity: entity, Key: key}
}

// ConflictError reports a state conflict: duplicate keys, an item that is
// no longer available, or a lost creation race.
type ConflictError struct {
	Reason string
	Err    error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *ConflictError) Unwrap() error { return e.Err }

// Conflict builds a ConflictError.
func Conflict(reason string, err error) error {
	return &ConflictError{Reason: reason, Err: err}
}

// ModelUnavailableError reports that the prediction backend could not
// produce a model, even after retraining.
type ModelUnavailableError struct {
	Err error
}

func (e *ModelUnavailableError) Error() string {
	return "prediction model unavailable: " + e.Err.Error()
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// ModelUnavailable wraps err as a ModelUnavailableError.
func ModelUnavailable(err error) error {
	return &ModelUnavailableError{Err: err}
}

// PersistenceError reports that the store was unreachable or a transaction
// was aborted. Op names the failed operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError.
func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
