package application

import (
	"errors"
	"fmt"
)

// Failure messages exposed to callers.
const (
	MsgUsernameExists = "Username already exists"
	MsgUserNotFound   = "User not found"
)

// Kind classifies an expected, business-level failure.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
)

var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

// Error is the failure carried by a Result. It matches ErrValidation,
// ErrConflict or ErrNotFound according to its Kind.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// PersistenceError is an unexpected storage failure. It is never turned into
// a Result failure; handlers return it as their error value.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }
