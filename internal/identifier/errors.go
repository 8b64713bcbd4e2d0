package identifier

import (
	"errors"
	"fmt"
)

// ErrIdentifierExhausted is matched by every ExhaustedError
var ErrIdentifierExhausted = errors.New("identifier generation exhausted")

// InvalidInputError reports an identifier whose shape is malformed (empty,
// wrong length, disallowed characters). A well-formed identifier with a wrong
// check digit is not an error: validators return false for it.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func invalidInput(field, value, reason string) error {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}

// ExhaustedError is returned when every generated candidate collided
type ExhaustedError struct {
	Kind     string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s couldn't be created after %d tries", e.Kind, e.Attempts)
}

// Is lets errors.Is match ErrIdentifierExhausted
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrIdentifierExhausted
}
