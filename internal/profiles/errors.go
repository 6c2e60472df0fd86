package profiles

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks structurally invalid participant data. It is the
	// only condition under which matching operations fail outright.
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("participant not found")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(id string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}
