package quadpix

import "errors"

// Every failure the engine can produce wraps one of these sentinels,
// so callers can classify with errors.Is and still see the offending
// value in the message. All are raised before or at traversal entry;
// no operation ever returns a partial tree.
var (
	// ErrInvalidInput marks empty or malformed buffers and settings
	// outside their legal range.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidArgument marks unknown operation names and out-of-range
	// operation parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDimensionMismatch marks overlay attempts across buffers of
	// unequal geometry. The engine never resizes or pads.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
