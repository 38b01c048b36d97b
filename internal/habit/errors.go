package habit

import "errors"

var (
	// ErrEmptyTitle is returned when a habit title is empty or only whitespace.
	ErrEmptyTitle = errors.New("enter a habit title")

	// ErrInvalidDay is returned when a day is not formatted as YYYY-MM-DD.
	ErrInvalidDay = errors.New("day must be formatted as YYYY-MM-DD")

	// ErrCorruptState is returned when the stored collection cannot be decoded
	// or breaks the collection invariants.
	ErrCorruptState = errors.New("stored habit data is malformed")
)

// ValidationError reports user input that was rejected before any mutation.
//
// The message is meant to be shown to the user as is.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
