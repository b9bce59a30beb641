package warmup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"media-preview/internal/filesystem"
	"media-preview/internal/logging"
	"media-preview/internal/mediatypes"
	"media-preview/internal/metrics"
	"media-preview/internal/preview"
)

var (
	// ErrBusy is returned when a warmup is already running.
	ErrBusy = errors.New("a warmup is already running")
	// ErrPreviewsDisabled is returned for mounts with previews turned off.
	ErrPreviewsDisabled = errors.New("previews are disabled on this mount")
)

// Previewer is the part of preview.Manager a warmup uses.
type Previewer interface {
	IsAvailable(file preview.File) bool
	GeneratePreviews(ctx context.Context, file preview.File, specs []preview.Spec, mimeType string) (*preview.Preview, error)
}

// Config controls a warmup.
type Config struct {
	Workers       int
	ChannelBuffer int
	SkipHidden    bool
	// Specs are rendered for every file; the first one is the grid thumbnail.
	Specs []preview.Spec
}

func DefaultConfig() Config {
	return Config{
		Workers:       3,
		ChannelBuffer: 256,
		SkipHidden:    true,
		Specs: []preview.Spec{
			{Width: 256, Height: 256, Crop: true, Mode: preview.ModeFill},
			{Width: 1024, Height: 1024, Mode: preview.ModeFill},
		},
	}
}

// Stats counts what a warmup did.
type Stats struct {
	Files     int64         `json:"files"`
	Generated int64         `json:"generated"`
	Skipped   int64         `json:"skipped"`
	Failed    int64         `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Status is the state of the current or last warmup.
type Status struct {
	Running   bool      `json:"running"`
	Mount     string    `json:"mount,omitempty"`
	StartedAt time.Time `json:"startedAt,omitempty"`
	Stats     Stats     `json:"stats"`
	Error     string    `json:"error,omitempty"`
}

// Warmer runs warmups one at a time.
type Warmer struct {
	previews Previewer
	config   Config

	running atomic.Bool

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}

	files, generated, skipped, failed atomic.Int64
}

func New(previews Previewer, config Config) *Warmer {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if len(config.Specs) == 0 {
		config.Specs = DefaultConfig().Specs
	}
	return &Warmer{previews: previews, config: config}
}

// Start runs a warmup of mount in the background.
func (w *Warmer) Start(mount preview.Mount) error {
	if !mount.PreviewsEnabled {
		return fmt.Errorf("%w: %s", ErrPreviewsDisabled, mount.Name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	if !w.claim(cancel, done) {
		cancel()
		return ErrBusy
	}

	start := w.begin(mount)
	go func() {
		defer close(done)
		defer cancel()
		if _, err := w.run(ctx, mount, start); err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn("Warmup of mount %s failed: %v", mount.Name, err)
		}
	}()
	return nil
}

// Run warms mount in the calling goroutine.
func (w *Warmer) Run(ctx context.Context, mount preview.Mount) (Stats, error) {
	if !mount.PreviewsEnabled {
		return Stats{}, fmt.Errorf("%w: %s", ErrPreviewsDisabled, mount.Name)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	defer close(done)
	if !w.claim(cancel, done) {
		return Stats{}, ErrBusy
	}
	return w.run(ctx, mount, w.begin(mount))
}

// claim marks a warmup running and publishes its cancel func under mu.
func (w *Warmer) claim(cancel context.CancelFunc, done chan struct{}) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running.CompareAndSwap(false, true) {
		return false
	}
	w.cancel = cancel
	w.done = done
	return true
}

// Stop cancels the current warmup and waits for its workers.
func (w *Warmer) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Status returns the current or last warmup.
func (w *Warmer) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.status
	if s.Running {
		s.Stats = w.snapshot(time.Since(s.StartedAt))
	}
	return s
}

func (w *Warmer) snapshot(d time.Duration) Stats {
	return Stats{
		Files:     w.files.Load(),
		Generated: w.generated.Load(),
		Skipped:   w.skipped.Load(),
		Failed:    w.failed.Load(),
		Duration:  d,
	}
}

func (w *Warmer) begin(mount preview.Mount) time.Time {
	start := time.Now()
	w.files.Store(0)
	w.generated.Store(0)
	w.skipped.Store(0)
	w.failed.Store(0)

	w.mu.Lock()
	w.status = Status{Running: true, Mount: mount.Name, StartedAt: start}
	w.mu.Unlock()
	return start
}

// run expects w.running to be set and clears it.
func (w *Warmer) run(ctx context.Context, mount preview.Mount, start time.Time) (Stats, error) {
	defer w.running.Store(false)

	metrics.PreviewWarmupRunning.Set(1)
	defer metrics.PreviewWarmupRunning.Set(0)

	logging.Info("Starting preview warmup of mount %s (%s) with %d workers", mount.Name, mount.Root, w.config.Workers)

	jobs := make(chan string, w.config.ChannelBuffer)
	var wg sync.WaitGroup
	for i := 0; i < w.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if ctx.Err() != nil {
					continue
				}
				w.warm(ctx, mount, path)
			}
		}()
	}

	err := w.walk(ctx, mount.Root, jobs)
	close(jobs)
	wg.Wait()

	if err == nil {
		err = ctx.Err()
	}

	stats := w.snapshot(time.Since(start))
	w.mu.Lock()
	w.status.Running = false
	w.status.Stats = stats
	if err != nil {
		w.status.Error = err.Error()
	}
	w.mu.Unlock()

	logging.Info("Preview warmup of mount %s done in %v: %d files, %d generated, %d skipped, %d failed",
		mount.Name, stats.Duration, stats.Files, stats.Generated, stats.Skipped, stats.Failed)
	return stats, err
}

func (w *Warmer) walk(ctx context.Context, root string, jobs chan<- string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if err != nil {
			if path == root {
				return err
			}
			logging.Warn("Warmup: error accessing %s: %v", path, err)
			return nil
		}
		if path != root && w.config.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		select {
		case jobs <- path:
			return nil
		case <-ctx.Done():
			return fs.SkipAll
		}
	})
}

func (w *Warmer) warm(ctx context.Context, mount preview.Mount, path string) {
	w.files.Add(1)

	info, err := filesystem.Stat(ctx, path)
	if err != nil {
		w.count(&w.failed, "failed")
		logging.Debug("Warmup: stat %s: %v", path, err)
		return
	}

	file := preview.File{
		Name:     info.Name(),
		Path:     path,
		MimeType: mediatypes.Detect(path),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Mount:    &mount,
	}
	if rel, err := filepath.Rel(mount.Root, path); err == nil {
		file.ID = filepath.ToSlash(rel)
	}

	if !w.previews.IsAvailable(file) {
		w.count(&w.skipped, "skipped")
		return
	}

	if _, err := w.previews.GeneratePreviews(ctx, file, w.config.Specs, file.MimeType); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.count(&w.failed, "failed")
		logging.Debug("Warmup: %s: %v", path, err)
		return
	}
	w.count(&w.generated, "generated")
}

func (w *Warmer) count(c *atomic.Int64, result string) {
	c.Add(1)
	metrics.PreviewWarmupFiles.WithLabelValues(result).Inc()
}
