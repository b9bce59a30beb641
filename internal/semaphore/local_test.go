package semaphore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRejectsInvalidLimit(t *testing.T) {
	l := NewLocal()

	_, err := l.Acquire(context.Background(), "x", 0)
	require.ErrorIs(t, err, ErrInvalidLimit)
}

func TestLocalBoundsConcurrency(t *testing.T) {
	l := NewLocal()
	const limit = 3

	var (
		running atomic.Int32
		peak    atomic.Int32
		wg      sync.WaitGroup
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := l.Acquire(context.Background(), "all", limit)
			if !assert.NoError(t, err) {
				return
			}
			defer func() { assert.NoError(t, l.Release(token)) }()

			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(limit))
	assert.Equal(t, limit, l.Limit("all"))
}

func TestLocalAcquireHonoursContext(t *testing.T) {
	l := NewLocal()

	held, err := l.Acquire(context.Background(), "one", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, "one", 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, l.Release(held))

	token, err := l.Acquire(context.Background(), "one", 1)
	require.NoError(t, err)
	assert.Equal(t, "one", token.Name)
	assert.NotEmpty(t, token.Holder)
}

func TestLocalReleaseUnknownTokenIsNoop(t *testing.T) {
	l := NewLocal()

	require.NoError(t, l.Release(Token{Name: "nope", Holder: "ghost"}))

	token, err := l.Acquire(context.Background(), "a", 1)
	require.NoError(t, err)
	require.NoError(t, l.Release(token))
	// A second release must not free a slot that was never taken.
	require.NoError(t, l.Release(token))

	first, err := l.Acquire(context.Background(), "a", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "a", 1)
	require.Error(t, err)

	require.NoError(t, l.Release(first))
}

func TestLocalNamesAreIndependent(t *testing.T) {
	l := NewLocal()

	a, err := l.Acquire(context.Background(), "a", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	b, err := l.Acquire(ctx, "b", 1)
	require.NoError(t, err)

	require.NoError(t, l.Release(a))
	require.NoError(t, l.Release(b))
}
