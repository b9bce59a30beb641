package media

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"media-preview/internal/filesystem"
	"media-preview/internal/logging"
	"media-preview/internal/metrics"
	"media-preview/internal/preview"
	"media-preview/internal/semaphore"
	"media-preview/internal/workers"

	"github.com/disintegration/imaging"
	"github.com/sony/gobreaker/v2"
)

// Configuration keys read by the Generator.
const (
	KeyMaxWidth  = "preview_max_x"
	KeyMaxHeight = "preview_max_y"

	// DefaultMaxSize bounds previews in both directions.
	DefaultMaxSize = 4096
)

// Generator renders previews through the registered providers and caches them
// on disk. It implements preview.Delegate.
type Generator struct {
	cacheDir        string
	source          preview.ProviderSource
	cfg             preview.Config
	limiter         semaphore.Limiter
	breakerSettings BreakerSettings

	locks keyLocks

	breakersMu sync.Mutex
	breakers   map[string]*gobreaker.CircuitBreaker[image.Image]

	pressure Pressure
}

// Pressure reports when renders should be refused to stay inside the memory
// budget. *memory.Monitor implements it.
type Pressure interface {
	Paused() bool
}

// NewGenerator returns a generator caching under cacheDir. Providers come from
// source, usually the preview.Manager.
func NewGenerator(cacheDir string, source preview.ProviderSource, cfg preview.Config, limiter semaphore.Limiter) *Generator {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logging.Warn("Generator: failed to create cache dir %s: %v", cacheDir, err)
	}
	logging.Debug("Generator: cache dir: %s", cacheDir)

	return &Generator{
		cacheDir:        cacheDir,
		source:          source,
		cfg:             cfg,
		limiter:         limiter,
		breakerSettings: DefaultBreakerSettings(),
		breakers:        make(map[string]*gobreaker.CircuitBreaker[image.Image]),
	}
}

// SetPressure makes the generator refuse renders while p is paused. Cached
// previews are still served.
func (g *Generator) SetPressure(p Pressure) {
	g.pressure = p
}

// SetBreakerSettings replaces the settings used for breakers created from now on.
func (g *Generator) SetBreakerSettings(s BreakerSettings) {
	g.breakersMu.Lock()
	defer g.breakersMu.Unlock()
	g.breakerSettings = s
}

func (g *Generator) maxSize() (int, int) {
	return g.cfg.Int(KeyMaxWidth, DefaultMaxSize), g.cfg.Int(KeyMaxHeight, DefaultMaxSize)
}

// normalizeSpec resolves -1 to the maximum size and rejects everything that is
// not a positive size or a known mode.
func (g *Generator) normalizeSpec(spec preview.Spec) (preview.Spec, error) {
	maxW, maxH := g.maxSize()

	if spec.Width == -1 {
		spec.Width = maxW
	}
	if spec.Height == -1 {
		spec.Height = maxH
	}
	if spec.Width < 1 || spec.Height < 1 {
		return spec, fmt.Errorf("%w: preview size %dx%d", preview.ErrInvalidArgument, spec.Width, spec.Height)
	}
	spec.Width = min(spec.Width, maxW)
	spec.Height = min(spec.Height, maxH)

	switch spec.Mode {
	case "":
		spec.Mode = preview.ModeFill
	case preview.ModeFill, preview.ModeCover:
	default:
		return spec, fmt.Errorf("%w: preview mode %q", preview.ErrInvalidArgument, spec.Mode)
	}
	return spec, nil
}

func statSource(ctx context.Context, file preview.File) (os.FileInfo, error) {
	info, err := filesystem.Stat(ctx, file.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", preview.ErrNotFound, file.Path)
		}
		return nil, fmt.Errorf("file not accessible: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", preview.ErrNotFound, file.Path)
	}
	return info, nil
}

// outputFormat keeps transparency for images and uses JPEG for everything that
// is rendered onto an opaque page or frame.
func outputFormat(mimeType string) (imaging.Format, string, string) {
	if strings.HasPrefix(mimeType, "image/") && mimeType != "image/jpeg" {
		return imaging.PNG, "image/png", ".png"
	}
	return imaging.JPEG, "image/jpeg", ".jpg"
}

func (g *Generator) cachePath(file preview.File, info os.FileInfo, spec preview.Spec, mimeType string) string {
	key := fmt.Sprintf("%s|%d|%d|%dx%d|%t|%s",
		file.Path, info.ModTime().UnixNano(), info.Size(), spec.Width, spec.Height, spec.Crop, spec.Mode)
	hash := fmt.Sprintf("%x", md5.Sum([]byte(key)))
	_, _, ext := outputFormat(mimeType)
	return filepath.Join(g.cacheDir, hash[:2], hash+ext)
}

func cached(path, mimeType string) (*preview.Preview, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		logging.Warn("Ignoring unreadable cached preview %s: %v", path, err)
		return nil, false
	}
	info, err := f.Stat()
	if err != nil {
		return nil, false
	}

	_, outMime, _ := outputFormat(mimeType)
	return &preview.Preview{
		Path:     path,
		MimeType: outMime,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Size:     info.Size(),
	}, true
}

// store encodes img next to path and renames it into place so readers never
// see a partial file.
func store(path string, img image.Image, mimeType string) (*preview.Preview, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create preview dir: %w", err)
	}

	format, outMime, _ := outputFormat(mimeType)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".preview-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create preview file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := imaging.Encode(tmp, img, format, imaging.JPEGQuality(85)); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("failed to store preview: %w", err)
	}

	bounds := img.Bounds()
	return &preview.Preview{
		Path:     path,
		MimeType: outMime,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Size:     info.Size(),
	}, nil
}

// resize fits src into the spec's box. Crop fills the box exactly. Without
// crop, ModeFill fits inside the box and ModeCover scales until the box is
// covered. Images are never enlarged unless cropped.
func resize(src image.Image, spec preview.Spec) image.Image {
	if spec.Crop {
		return imaging.Fill(src, spec.Width, spec.Height, imaging.Center, imaging.Lanczos)
	}
	if spec.Mode == preview.ModeCover {
		b := src.Bounds()
		scale := max(float64(spec.Width)/float64(b.Dx()), float64(spec.Height)/float64(b.Dy()))
		if scale >= 1 {
			return src
		}
		return imaging.Resize(src, max(1, int(float64(b.Dx())*scale+0.5)), 0, imaging.Lanczos)
	}
	return imaging.Fit(src, spec.Width, spec.Height, imaging.Lanczos)
}

// sourceBox is the size providers are asked for. Cropped and covering previews
// need more than the box itself.
func (g *Generator) sourceBox(spec preview.Spec) (int, int) {
	if spec.Crop || spec.Mode == preview.ModeCover {
		return g.maxSize()
	}
	return spec.Width, spec.Height
}

func providerName(p preview.Provider) string {
	if n, ok := p.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

func safeThumbnail(ctx context.Context, p preview.Provider, file preview.File, w, h int) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panicked: %v", r)
		}
	}()
	return p.Thumbnail(ctx, file, w, h)
}

// render asks each matching provider in turn for an image no larger than
// w x h. Provider failures are logged and the next provider is tried.
func (g *Generator) render(ctx context.Context, file preview.File, mimeType string, w, h int) (image.Image, error) {
	if g.pressure != nil && g.pressure.Paused() {
		return nil, fmt.Errorf("%w: rendering paused under memory pressure", preview.ErrResourceExhausted)
	}

	for _, factory := range g.source.ProvidersFor(mimeType) {
		p, ok := preview.CreateProvider(factory)
		if !ok {
			continue
		}
		if checker, ok := p.(preview.FileChecker); ok && !checker.IsAvailable(file) {
			continue
		}

		name := providerName(p)
		start := time.Now()
		img, err := g.breaker(name).Execute(func() (image.Image, error) {
			return safeThumbnail(ctx, p, file, w, h)
		})
		metrics.PreviewGenerationDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		switch {
		case isBreakerRejection(err):
			metrics.PreviewGenerationsTotal.WithLabelValues(name, "unavailable").Inc()
			logging.Debug("Preview provider %s skipped for %s: %v", name, file.Path, err)
			continue
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			metrics.PreviewGenerationsTotal.WithLabelValues(name, "error").Inc()
			logging.Warn("Preview provider %s failed for %s: %v", name, file.Path, err)
			continue
		case img == nil:
			metrics.PreviewGenerationsTotal.WithLabelValues(name, "error_nil").Inc()
			continue
		}

		metrics.PreviewGenerationsTotal.WithLabelValues(name, "success").Inc()
		logging.Debug("Preview rendered by %s for %s (%dx%d)", name, file.Path, img.Bounds().Dx(), img.Bounds().Dy())
		return img, nil
	}

	return nil, fmt.Errorf("%w: no provider could render %s (%s)", preview.ErrNotFound, file.Path, mimeType)
}

// GetPreview returns a cached preview of file or renders one.
func (g *Generator) GetPreview(ctx context.Context, file preview.File, width, height int, crop bool, mode preview.Mode, mimeType string) (*preview.Preview, error) {
	spec, err := g.normalizeSpec(preview.Spec{Width: width, Height: height, Crop: crop, Mode: mode})
	if err != nil {
		return nil, err
	}
	info, err := statSource(ctx, file)
	if err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = file.MimeType
	}

	path := g.cachePath(file, info, spec, mimeType)
	if p, ok := cached(path, mimeType); ok {
		metrics.PreviewCacheHits.Inc()
		logging.Debug("Preview cache hit: %s", file.Path)
		return p, nil
	}
	metrics.PreviewCacheMisses.Inc()

	unlock := g.locks.lock(path)
	defer unlock()

	if p, ok := cached(path, mimeType); ok {
		return p, nil
	}

	w, h := g.sourceBox(spec)
	src, err := g.render(ctx, file, mimeType, w, h)
	if err != nil {
		return nil, err
	}
	return store(path, resize(src, spec), mimeType)
}

// GeneratePreviews makes sure every spec is cached. The source is rendered at
// most once, at the maximum size, and every spec is derived from it. The first
// spec's preview is returned.
func (g *Generator) GeneratePreviews(ctx context.Context, file preview.File, specs []preview.Spec, mimeType string) (*preview.Preview, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no preview sizes requested", preview.ErrInvalidArgument)
	}
	normalized := make([]preview.Spec, len(specs))
	for i, spec := range specs {
		n, err := g.normalizeSpec(spec)
		if err != nil {
			return nil, err
		}
		normalized[i] = n
	}

	info, err := statSource(ctx, file)
	if err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = file.MimeType
	}

	var src image.Image
	var first *preview.Preview
	for i, spec := range normalized {
		p, err := g.ensure(ctx, file, info, spec, mimeType, &src)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			first = p
		}
	}
	return first, nil
}

// ensure returns the cached preview for spec, rendering *src first if needed.
func (g *Generator) ensure(ctx context.Context, file preview.File, info os.FileInfo, spec preview.Spec, mimeType string, src *image.Image) (*preview.Preview, error) {
	path := g.cachePath(file, info, spec, mimeType)
	if p, ok := cached(path, mimeType); ok {
		metrics.PreviewCacheHits.Inc()
		return p, nil
	}
	metrics.PreviewCacheMisses.Inc()

	unlock := g.locks.lock(path)
	defer unlock()

	if p, ok := cached(path, mimeType); ok {
		return p, nil
	}
	if *src == nil {
		maxW, maxH := g.maxSize()
		img, err := g.render(ctx, file, mimeType, maxW, maxH)
		if err != nil {
			return nil, err
		}
		*src = img
	}
	return store(path, resize(*src, spec), mimeType)
}

// NumConcurrentPreviews returns the limit configured under key. Unknown keys
// default to 1.
func (g *Generator) NumConcurrentPreviews(key string) int {
	switch key {
	case preview.KeyConcurrencyPrefix + preview.KindAll:
		return g.cfg.Int(key, workers.ForIO(0))
	case preview.KeyConcurrencyPrefix + preview.KindNew:
		return g.cfg.Int(key, workers.ForCPU(0))
	default:
		return g.cfg.Int(key, 1)
	}
}

// GuardWithSemaphore takes one of limit slots named id from the limiter.
func (g *Generator) GuardWithSemaphore(ctx context.Context, id string, limit int) (semaphore.Token, error) {
	return g.limiter.Acquire(ctx, id, limit)
}

// ReleaseSemaphore returns a slot to the limiter.
func (g *Generator) ReleaseSemaphore(token semaphore.Token) {
	if err := g.limiter.Release(token); err != nil {
		logging.Warn("Failed to release preview slot %s: %v", token.Name, err)
	}
}

// CacheStats walks the cache directory and returns the number and total size
// of stored previews.
func (g *Generator) CacheStats() (count int, size int64) {
	err := filepath.WalkDir(g.cacheDir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if info, err := d.Info(); err == nil {
			count++
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		logging.Debug("Generator: cache walk failed: %v", err)
	}
	return count, size
}
