package semaphore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

type localSemaphore struct {
	weighted *semaphore.Weighted
	limit    int
}

// Local is an in-process Limiter. Each name gets its own weighted semaphore,
// sized by the limit passed on first use.
type Local struct {
	mu   sync.Mutex
	sems map[string]*localSemaphore

	heldMu sync.Mutex
	held   map[Token]*localSemaphore
}

// NewLocal returns an empty in-process limiter.
func NewLocal() *Local {
	return &Local{
		sems: make(map[string]*localSemaphore),
		held: make(map[Token]*localSemaphore),
	}
}

func (l *Local) get(name string, limit int) *localSemaphore {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sems[name]
	if !ok {
		s = &localSemaphore{
			weighted: semaphore.NewWeighted(int64(limit)),
			limit:    limit,
		}
		l.sems[name] = s
	}
	return s
}

// Acquire implements Limiter. The limit of a name is fixed by its first use.
func (l *Local) Acquire(ctx context.Context, name string, limit int) (Token, error) {
	if limit < 1 {
		return Token{}, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	s := l.get(name, limit)
	if err := s.weighted.Acquire(ctx, 1); err != nil {
		return Token{}, fmt.Errorf("acquire %s: %w", name, err)
	}

	token := Token{Name: name, Holder: uuid.NewString()}

	l.heldMu.Lock()
	l.held[token] = s
	l.heldMu.Unlock()

	return token, nil
}

// Release implements Limiter.
func (l *Local) Release(token Token) error {
	l.heldMu.Lock()
	s, ok := l.held[token]
	delete(l.held, token)
	l.heldMu.Unlock()

	if ok {
		s.weighted.Release(1)
	}
	return nil
}

// Limit returns the limit a name was created with, or 0 if it is unknown.
func (l *Local) Limit(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.sems[name]; ok {
		return s.limit
	}
	return 0
}
