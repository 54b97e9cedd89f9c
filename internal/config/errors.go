package config

import (
	"errors"
	"strings"
)

// Error is a fatal configuration problem found at startup. It lists every
// problem at once so a single restart can fix them all.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	if len(e.Problems) == 0 {
		return "config error"
	}
	return "config error: " + strings.Join(e.Problems, "; ")
}

// IsConfigError reports whether err carries a *Error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

func (e *Error) add(problem string) { e.Problems = append(e.Problems, problem) }

func (e *Error) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
