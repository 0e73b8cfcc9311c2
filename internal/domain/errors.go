package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input the model refuses. Nothing is changed when it is returned.
	ErrValidation = errors.New("validation failed")
	// ErrMalformedImport marks a backup document that cannot be applied.
	ErrMalformedImport = errors.New("malformed import")
)

// Invalidf wraps ErrValidation with a formatted detail message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedImport, fmt.Sprintf(format, args...))
}
