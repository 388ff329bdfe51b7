package deadline

import "errors"

var (
	// ErrNotFound is returned when the deadline does not exist or is not
	// visible to the acting user.
	ErrNotFound = errors.New("deadline not found")

	// ErrNotOwner is returned when a mutation is attempted by a user other
	// than the deadline's owner.
	ErrNotOwner = errors.New("only the deadline owner may perform this action")

	// ErrInvalidInput is returned when deadline fields fail validation.
	ErrInvalidInput = errors.New("invalid deadline input")
)
