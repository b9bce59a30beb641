package semaphore

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *Redis {
	t.Helper()

	// REDIS_ADDR points the tests at a real server; miniredis otherwise.
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		mini := miniredis.RunT(t)
		addr = mini.Addr()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := NewRedisClient(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	cfg := DefaultRedisConfig()
	cfg.KeyPrefix = "media-preview-test:" + uuid.NewString() + ":"
	cfg.PollInterval = 5 * time.Millisecond
	cfg.MaxPollInterval = 20 * time.Millisecond
	return NewRedis(client, cfg)
}

func TestNewRedisAppliesDefaults(t *testing.T) {
	r := NewRedis(nil, RedisConfig{})

	defaults := DefaultRedisConfig()
	assert.Equal(t, defaults.KeyPrefix, r.config.KeyPrefix)
	assert.Equal(t, defaults.HolderTTL, r.config.HolderTTL)
	assert.Equal(t, defaults.PollInterval, r.config.PollInterval)
	assert.Equal(t, "media-preview:semaphore:all", r.key("all"))
}

func TestRedisRejectsInvalidLimit(t *testing.T) {
	r := NewRedis(nil, RedisConfig{})

	_, err := r.Acquire(context.Background(), "x", 0)
	require.ErrorIs(t, err, ErrInvalidLimit)
}

func TestRedisBlocksAtLimit(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	first, err := r.Acquire(ctx, "all", 2)
	require.NoError(t, err)
	second, err := r.Acquire(ctx, "all", 2)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = r.Acquire(waitCtx, "all", 2)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, r.Release(first))

	third, err := r.Acquire(ctx, "all", 2)
	require.NoError(t, err)

	require.NoError(t, r.Release(second))
	require.NoError(t, r.Release(third))
}

func TestRedisNamesAreIndependent(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	all, err := r.Acquire(ctx, "all", 1)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	created, err := r.Acquire(waitCtx, "new", 1)
	require.NoError(t, err, "a full semaphore must not block another name")

	require.NoError(t, r.Release(all))
	require.NoError(t, r.Release(created))
	require.NoError(t, r.Release(Token{}), "empty tokens are ignored")
}

func TestRedisSharedAcrossLimiters(t *testing.T) {
	a := newTestRedis(t)
	b := NewRedis(a.client, a.config)
	ctx := context.Background()

	token, err := a.Acquire(ctx, "all", 1)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = b.Acquire(waitCtx, "all", 1)
	require.ErrorIs(t, err, context.DeadlineExceeded, "slots are shared through the server")

	require.NoError(t, a.Release(token))
	token, err = b.Acquire(ctx, "all", 1)
	require.NoError(t, err)
	require.NoError(t, b.Release(token))
}

func TestRedisNeverExceedsLimitUnderContention(t *testing.T) {
	r := newTestRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const (
		limit   = 2
		workers = 16
		cycles  = 10
	)

	var current, peak atomic.Int32
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range cycles {
				token, err := r.Acquire(ctx, "all", limit)
				if !assert.NoError(t, err) {
					return
				}
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				current.Add(-1)
				assert.NoError(t, r.Release(token))
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(limit))
	assert.Positive(t, peak.Load())
}

func TestRedisHolderScoreDoesNotGrantSlots(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	// A holder written by a process whose clock runs ahead still occupies its slot.
	ahead := float64(time.Now().Add(500 * time.Millisecond).UnixNano())
	require.NoError(t, r.client.ZAdd(ctx, r.key("all"), redis.Z{Score: ahead, Member: "other-host"}).Err())

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err := r.Acquire(waitCtx, "all", 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	holders, err := r.client.ZCard(ctx, r.key("all")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), holders)
}

func TestRedisDropsExpiredHolders(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	stale := float64(time.Now().Add(-2 * r.config.HolderTTL).UnixNano())
	require.NoError(t, r.client.ZAdd(ctx, r.key("all"), redis.Z{Score: stale, Member: "crashed-host"}).Err())

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	token, err := r.Acquire(waitCtx, "all", 1)
	require.NoError(t, err)
	require.NoError(t, r.Release(token))
}
