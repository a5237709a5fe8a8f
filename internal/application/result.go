package application

// Result is the uniform return value of every handler: either a success
// carrying a value, or a failure carrying an *Error. Unexpected failures are
// reported through the handler's error return instead.
type Result[T any] struct {
	value T
	err   *Error
}

func Success[T any](v T) Result[T] { return Result[T]{value: v} }

// Failure builds a failed Result. A nil err is replaced by a generic
// validation error so a failure never looks like a success.
func Failure[T any](err *Error) Result[T] {
	if err == nil {
		err = Validation("", "request failed")
	}
	return Result[T]{err: err}
}

func (r Result[T]) IsSuccess() bool { return r.err == nil }

// Value returns the success value, or the zero value of T on failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure, or nil on success.
func (r Result[T]) Err() *Error { return r.err }

// Message returns the failure message, or "" on success.
func (r Result[T]) Message() string {
	if r.err == nil {
		return ""
	}
	return r.err.Message
}
