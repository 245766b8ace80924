package trace

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrBounds        = errors.New("bounds error")
	ErrGeometry      = errors.New("geometry error")
	ErrLayout        = errors.New("layout error")
	ErrState         = errors.New("state error")
)

// Error describes a failed tracing operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("trace: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, kind error, format string, args ...any) error {
	return &Error{Op: op, Err: fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))}
}

// NewError builds an Error of the given kind for packages that validate
// inputs on behalf of the tracer (raster layouts, chain filters).
func NewError(op string, kind error, format string, args ...any) error {
	return newError(op, kind, format, args...)
}
