package preview

import (
	"context"

	"media-preview/internal/semaphore"
)

// Delegate renders and caches previews. The Manager only forwards to it.
type Delegate interface {
	// GetPreview returns a preview of file. It fails with ErrNotFound or
	// ErrInvalidArgument.
	GetPreview(ctx context.Context, file File, width, height int, crop bool, mode Mode, mimeType string) (*Preview, error)
	// GeneratePreviews renders every spec and returns the first one.
	GeneratePreviews(ctx context.Context, file File, specs []Spec, mimeType string) (*Preview, error)
	// NumConcurrentPreviews returns the limit configured under key.
	NumConcurrentPreviews(key string) int
	// GuardWithSemaphore blocks until one of limit slots named id is free.
	GuardWithSemaphore(ctx context.Context, id string, limit int) (semaphore.Token, error)
	// ReleaseSemaphore frees a slot obtained from GuardWithSemaphore.
	ReleaseSemaphore(token semaphore.Token)
}
