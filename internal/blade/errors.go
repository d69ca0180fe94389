package blade

import "errors"

var (
	// ErrDataShape indicates a malformed sample series: empty, mismatched
	// lengths, or values that are non-finite everywhere.
	ErrDataShape = errors.New("blade: malformed sample series")

	// ErrUnknownSignal indicates a query for a signal name that was never
	// bound to the interpolator.
	ErrUnknownSignal = errors.New("blade: unknown signal")

	// ErrInvalidSections indicates a control section list that is too short
	// or not strictly increasing.
	ErrInvalidSections = errors.New("blade: invalid control sections")

	// ErrInsufficientDomain indicates fewer than 2 usable structural samples.
	ErrInsufficientDomain = errors.New("blade: insufficient structural samples")
)
