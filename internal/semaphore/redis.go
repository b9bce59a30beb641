package semaphore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"media-preview/internal/logging"
)

// RedisConfig configures a Redis-backed limiter.
type RedisConfig struct {
	// KeyPrefix is prepended to semaphore names.
	KeyPrefix string
	// HolderTTL bounds how long a slot survives a holder that never released it.
	HolderTTL time.Duration
	// PollInterval is the first wait between acquisition attempts; it doubles
	// up to MaxPollInterval.
	PollInterval    time.Duration
	MaxPollInterval time.Duration
}

// DefaultRedisConfig returns sensible defaults.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		KeyPrefix:       "media-preview:semaphore:",
		HolderTTL:       10 * time.Minute,
		PollInterval:    25 * time.Millisecond,
		MaxPollInterval: time.Second,
	}
}

// acquireScript drops expired holders, then adds the holder only while the set
// has fewer than limit members. Redis runs scripts atomically, so the count
// check and the insert cannot interleave with another acquisition.
//
// KEYS[1] semaphore key
// ARGV[1] expiry cutoff, ARGV[2] holder score, ARGV[3] limit,
// ARGV[4] holder, ARGV[5] key TTL in milliseconds
var acquireScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZSCORE', KEYS[1], ARGV[4]) then
	return 1
end
if redis.call('ZCARD', KEYS[1]) < tonumber(ARGV[3]) then
	redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
	redis.call('PEXPIRE', KEYS[1], ARGV[5])
	return 1
end
return 0
`)

// Redis is a Limiter shared by every process using the same Redis server.
//
// Holders are members of a sorted set. Admission counts the members and adds
// the new holder in one script, so at most limit holders exist at any time.
// Scores are acquisition times and only serve to drop holders older than
// HolderTTL. Waiters poll; there is no ordering among them.
type Redis struct {
	client redis.UniversalClient
	config RedisConfig
}

// NewRedisClient creates a client and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logging.Warn("failed to close redis client after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewRedis returns a Redis-backed limiter.
func NewRedis(client redis.UniversalClient, config RedisConfig) *Redis {
	defaults := DefaultRedisConfig()
	if config.KeyPrefix == "" {
		config.KeyPrefix = defaults.KeyPrefix
	}
	if config.HolderTTL <= 0 {
		config.HolderTTL = defaults.HolderTTL
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.MaxPollInterval < config.PollInterval {
		config.MaxPollInterval = config.PollInterval
	}
	return &Redis{client: client, config: config}
}

func (r *Redis) key(name string) string {
	return r.config.KeyPrefix + name
}

// tryAcquire makes one attempt and reports whether the slot was granted.
func (r *Redis) tryAcquire(ctx context.Context, key, holder string, limit int) (bool, error) {
	now := time.Now()
	granted, err := acquireScript.Run(ctx, r.client, []string{key},
		strconv.FormatInt(now.Add(-r.config.HolderTTL).UnixNano(), 10),
		strconv.FormatInt(now.UnixNano(), 10),
		limit,
		holder,
		(2 * r.config.HolderTTL).Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return granted == 1, nil
}

// Acquire implements Limiter.
func (r *Redis) Acquire(ctx context.Context, name string, limit int) (Token, error) {
	if limit < 1 {
		return Token{}, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	key := r.key(name)
	holder := uuid.NewString()
	wait := r.config.PollInterval

	for {
		ok, err := r.tryAcquire(ctx, key, holder, limit)
		if err != nil {
			return Token{}, fmt.Errorf("acquire %s: %w", name, err)
		}
		if ok {
			return Token{Name: name, Holder: holder}, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Token{}, fmt.Errorf("acquire %s: %w", name, ctx.Err())
		case <-timer.C:
		}

		wait *= 2
		if wait > r.config.MaxPollInterval {
			wait = r.config.MaxPollInterval
		}
	}
}

// Release implements Limiter.
func (r *Redis) Release(token Token) error {
	if token.Holder == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.ZRem(ctx, r.key(token.Name), token.Holder).Err(); err != nil {
		return fmt.Errorf("release %s: %w", token.Name, err)
	}
	return nil
}
