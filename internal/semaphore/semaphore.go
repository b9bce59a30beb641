// Package semaphore provides named counting semaphores used to bound how many
// preview generations run at the same time.
//
// Local keeps the slots in process memory. Redis keeps them in a sorted set,
// admitted by a server-side script, so that several service instances sharing
// a Redis server share the same limit.
package semaphore

import (
	"context"
	"errors"
)

// ErrInvalidLimit is returned when a semaphore is requested with a limit below 1.
var ErrInvalidLimit = errors.New("semaphore limit must be positive")

// Token identifies one acquired slot.
type Token struct {
	// Name is the semaphore the slot belongs to.
	Name string
	// Holder is unique per acquisition.
	Holder string
}

// Limiter hands out slots of named semaphores.
type Limiter interface {
	// Acquire blocks until a slot of the semaphore name is free or ctx is done.
	Acquire(ctx context.Context, name string, limit int) (Token, error)
	// Release frees a slot. Releasing an unknown token is a no-op.
	Release(token Token) error
}
