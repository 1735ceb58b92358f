package grading

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField indicates a required judgment field was absent or blank.
	ErrMissingField = errors.New("missing field")
	// ErrMalformedScore indicates the rubric score was not an integer in [0,5].
	ErrMalformedScore = errors.New("malformed score")
	// ErrMalformedPayload indicates the judgment content was not a JSON object.
	ErrMalformedPayload = errors.New("malformed payload")
)

// ValidationError describes why a judgment payload was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err originated from judgment validation.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
