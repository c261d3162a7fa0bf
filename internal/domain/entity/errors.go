package entity

import (
	"context"
	"errors"
)

type ErrorKind string

const (
	KindValidation       ErrorKind = "validation_error"
	KindElementNotFound  ErrorKind = "element_not_found"
	KindNavigationFailed ErrorKind = "navigation_failed"
	KindEngineFault      ErrorKind = "engine_fault"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrElementNotFound  = errors.New("element not found")
	ErrNavigationFailed = errors.New("navigation failed")
	ErrEngineFault      = errors.New("engine fault")
)

// KindOf classifies err. Anything that is not one of the known kinds,
// including context expiry outside navigation, is an engine fault.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrElementNotFound):
		return KindElementNotFound
	case errors.Is(err, ErrNavigationFailed):
		return KindNavigationFailed
	default:
		return KindEngineFault
	}
}

// Classified reports whether err already carries one of the engine kinds.
func Classified(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrElementNotFound) ||
		errors.Is(err, ErrNavigationFailed) ||
		errors.Is(err, ErrEngineFault)
}

func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
