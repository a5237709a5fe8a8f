package entity

import "errors"

// ErrInvalid is matched by every ValidationError via errors.Is.
var ErrInvalid = errors.New("invalid entity")

// ValidationError reports a broken invariant on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
