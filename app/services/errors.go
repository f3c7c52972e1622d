package services

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable means the tag association collaborator failed.
	// It is never turned into a fallback.
	ErrServiceUnavailable = errors.New("tag association service unavailable")
	// ErrInvalidInput wraps validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden means the caller may not act on the resource.
	ErrForbidden = errors.New("action not allowed")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
