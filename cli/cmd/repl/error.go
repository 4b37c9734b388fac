package repl

import "errors"

var (
	// ErrOutOfBounds is returned for a history index outside the recorded
	// entries.
	ErrOutOfBounds = errors.New("history index out of range")

	// ErrEditDeclined is returned when the user abandons a script that
	// failed to compile instead of editing it again.
	ErrEditDeclined = errors.New("edited script discarded")
)
