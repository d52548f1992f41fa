// Package parsererror defines the typed failures raised while extracting and
// persisting notifications.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrNoMatch marks a field extractor that found no usable value. It is a
// normal outcome, not a failure of the message.
var ErrNoMatch = errors.New("no pattern matched")

// ErrDuplicateMessage is returned by a store that rejected a message already
// received inside its dedup window.
var ErrDuplicateMessage = errors.New("duplicate message")

// ParseError reports a matched substring that could not be converted to the
// field's type.
type ParseError struct {
	Field   string
	Pattern string
	Value   string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s='%s' (pattern %s): %v",
		e.Field, e.Value, e.Pattern, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StorageError wraps a failed store operation.
type StorageError struct {
	Operation string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err for op; a nil err yields nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Operation: op, Err: err}
}

// TemplateError reports an invalid template registry row.
type TemplateError struct {
	Bank   string
	Field  string
	Reason string
	Err    error
}

func (e *TemplateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template %s: invalid %s: %s: %v", e.Bank, e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("template %s: invalid %s: %s", e.Bank, e.Field, e.Reason)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}
