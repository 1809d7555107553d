package search

import "errors"

var (
	// ErrInvalidThreshold is returned when the match threshold is outside [0,1].
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

	// ErrInvalidLimit is returned when the result limit is negative.
	ErrInvalidLimit = errors.New("limit cannot be negative")
)
