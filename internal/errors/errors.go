// Package errors defines the sentinel errors use cases wrap to say what went wrong in
// caller terms. The HTTP layer maps each sentinel to a status code through Classify.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrap them with context; never compare by message.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// sentinels is the order Classify checks in. An error wrapping two sentinels is
// classified by the one listed first.
var sentinels = []error{
	ErrUnauthorized,
	ErrForbidden,
	ErrTooManyRequests,
	ErrInvalidInput,
	ErrNotFound,
	ErrServiceUnavailable,
}

// New is errors.New.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message and keeps it in the chain. Wrap(nil, ...) is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join is errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Classify returns the sentinel err wraps, or nil when it wraps none.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}
