package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange is a refinement of ErrInvalidArgument: errors.Is matches both.
	ErrOutOfRange      = fmt.Errorf("%w: out of range", ErrInvalidArgument)
	ErrTypeMismatch    = errors.New("vertex type mismatch")
	ErrInvalidLayout   = errors.New("invalid vertex layout")
	ErrCompileFailure  = errors.New("shader compilation failed")
	ErrLinkFailure     = errors.New("shader program link failed")
	ErrUseAfterRelease = errors.New("use of released resource")
	ErrNotFound        = errors.New("not found")
	ErrUnknown         = errors.New("unknown")
)
