package fsrs

import "errors"

// Sentinel errors for the fsrs package.
// Use errors.Is to check: errors.Is(err, fsrs.ErrInvalidRating)
var (
	ErrInvalidRating     = errors.New("fsrs: invalid rating")
	ErrInvalidPriorState = errors.New("fsrs: invalid prior memory state")
	ErrInvalidParameters = errors.New("fsrs: parameters out of bounds")
)
