package ai

import "errors"

var (
	// ErrProviderRequired is returned when a Handle is created without a provider.
	ErrProviderRequired = errors.New("classifier provider required")

	// ErrHandleClosed is returned when acquiring from a closed Handle.
	ErrHandleClosed = errors.New("classifier handle closed")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
