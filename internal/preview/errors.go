package preview

import "errors"

var (
	// ErrNotFound is returned when the file does not exist or no provider could
	// produce a preview for it.
	ErrNotFound = errors.New("preview not found")

	// ErrInvalidArgument is returned for unusable preview dimensions or modes.
	ErrInvalidArgument = errors.New("invalid preview argument")

	// ErrResourceExhausted is returned when no generation slot can be granted:
	// the configured limit is not positive or the limiter itself failed.
	ErrResourceExhausted = errors.New("no preview generation slot available")

	// ErrProviderUnavailable marks a provider that cannot serve a request right
	// now. It never leaves this package's callers; dispatch moves on instead.
	ErrProviderUnavailable = errors.New("preview provider unavailable")

	// ErrNoDelegate is returned by generation calls made before SetDelegate.
	ErrNoDelegate = errors.New("no preview generation delegate configured")
)
