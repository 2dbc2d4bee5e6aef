package action

import "errors"

// Payload validation errors.
var (
	// ErrUnknownType is returned when decoding a payload for an action
	// type that is not in the vocabulary.
	ErrUnknownType = errors.New("unknown action type")

	// ErrMissingParam is returned when a required parameter is absent.
	ErrMissingParam = errors.New("missing required parameter")

	// ErrOutOfRange is returned when a parameter is outside its legal range.
	ErrOutOfRange = errors.New("parameter out of range")

	// ErrTooFewPoints is returned when a geometry needs more points than
	// were supplied.
	ErrTooFewPoints = errors.New("too few points")

	// ErrBadTimestamp is returned when a datetime string does not parse.
	ErrBadTimestamp = errors.New("invalid datetime")
)
