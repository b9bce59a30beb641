package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"media-preview/internal/logging"
	"media-preview/internal/metrics"
)

// RetryConfig controls the backoff for stale handles.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

type volume struct {
	prefix string
	name   string
}

var (
	volumesMu sync.RWMutex
	volumes   []volume
)

// SetVolumes names directory trees for metric labels, e.g.
// {"media": "/media", "cache": "/cache"}. The longest matching prefix wins.
func SetVolumes(named map[string]string) {
	vs := make([]volume, 0, len(named))
	for name, dir := range named {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		vs = append(vs, volume{prefix: strings.TrimSuffix(abs, string(filepath.Separator)) + string(filepath.Separator), name: name})
	}
	sort.Slice(vs, func(i, j int) bool { return len(vs[i].prefix) > len(vs[j].prefix) })

	volumesMu.Lock()
	volumes = vs
	volumesMu.Unlock()
}

// VolumeOf returns the label of the volume holding path, or "unknown".
func VolumeOf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "unknown"
	}
	abs += string(filepath.Separator)

	volumesMu.RLock()
	defer volumesMu.RUnlock()
	for _, v := range volumes {
		if strings.HasPrefix(abs, v.prefix) {
			return v.name
		}
	}
	return "unknown"
}

func isStale(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.ESTALE
}

// retry runs fn until it succeeds, fails with anything but ESTALE, runs out
// of attempts or ctx is done.
func retry[T any](ctx context.Context, cfg RetryConfig, op, path string, fn func() (T, error)) (T, error) {
	vol := VolumeOf(path)
	backoff := cfg.InitialBackoff

	for attempt := 0; ; attempt++ {
		v, err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("%s of %s succeeded on retry %d", op, path, attempt)
				metrics.FilesystemRetries.WithLabelValues(op, vol, "success").Inc()
			}
			return v, nil
		}
		if !isStale(err) {
			return v, err
		}

		metrics.FilesystemStaleErrors.WithLabelValues(op, vol).Inc()
		if attempt >= cfg.MaxRetries {
			logging.Warn("%s of %s failed after %d retries: %v", op, path, cfg.MaxRetries, err)
			metrics.FilesystemRetries.WithLabelValues(op, vol, "failure").Inc()
			return v, err
		}

		logging.Debug("Stale file handle on %s of %s, retrying in %v (attempt %d/%d)", op, path, backoff, attempt+1, cfg.MaxRetries)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return v, ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, cfg.MaxBackoff)
	}
}

// Stat is os.Stat with the default retry.
func Stat(ctx context.Context, path string) (os.FileInfo, error) {
	return StatWithRetry(ctx, path, DefaultRetryConfig())
}

func StatWithRetry(ctx context.Context, path string, cfg RetryConfig) (os.FileInfo, error) {
	return retry(ctx, cfg, "stat", path, func() (os.FileInfo, error) { return os.Stat(path) })
}

// Open is os.Open with the default retry.
func Open(ctx context.Context, path string) (*os.File, error) {
	return OpenWithRetry(ctx, path, DefaultRetryConfig())
}

func OpenWithRetry(ctx context.Context, path string, cfg RetryConfig) (*os.File, error) {
	return retry(ctx, cfg, "open", path, func() (*os.File, error) { return os.Open(path) })
}
