package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not legal from the
	// nota's current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not a known lifecycle state
	ErrInvalidState = errors.New("invalid state")
)
