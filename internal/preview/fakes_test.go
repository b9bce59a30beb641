package preview

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"

	"media-preview/internal/semaphore"
)

type mapConfig map[string]any

func (c mapConfig) Bool(key string, def bool) bool {
	if v, ok := c[key].(bool); ok {
		return v
	}
	return def
}

func (c mapConfig) String(key, def string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return def
}

func (c mapConfig) Strings(key string, def []string) []string {
	if v, ok := c[key].([]string); ok {
		return v
	}
	return def
}

func (c mapConfig) Int(key string, def int) int {
	if v, ok := c[key].(int); ok {
		return v
	}
	return def
}

type fakeProbe struct {
	library  bool
	formats  map[string]bool
	binaries map[string]string
	lookups  []string
}

func (p *fakeProbe) Available() bool { return p.library }

func (p *fakeProbe) SupportsFormat(name string) bool { return p.formats[name] }

func (p *fakeProbe) FindBinaryPath(name string) (string, bool) {
	p.lookups = append(p.lookups, name)
	path, ok := p.binaries[name]
	return path, ok
}

type fakeProvider struct {
	mime      string
	available bool
}

func (p *fakeProvider) MimeType() string { return p.mime }

func (p *fakeProvider) Thumbnail(context.Context, File, int, int) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

type checkingProvider struct {
	fakeProvider
	checks atomic.Int32
}

func (p *checkingProvider) IsAvailable(File) bool {
	p.checks.Add(1)
	return p.available
}

// countingFactory records how often it was asked for a provider.
type countingFactory struct {
	provider Provider
	calls    atomic.Int32
}

func (f *countingFactory) Create() (Provider, bool) {
	f.calls.Add(1)
	return f.provider, f.provider != nil
}

type fakeSource struct {
	mu           sync.Mutex
	declarations []Declaration
	ready        bool
	calls        int
}

func (s *fakeSource) PreviewProviders() ([]Declaration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.declarations, s.ready
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var errServiceMissing = errors.New("service missing")

type fakeResolver map[string]any

func (r fakeResolver) Resolve(id string) (any, error) {
	v, ok := r[id]
	if !ok {
		return nil, errServiceMissing
	}
	return v, nil
}

type fakeDelegate struct {
	limits   map[string]int
	limiter  semaphore.Limiter
	guardErr error

	getPreview func(ctx context.Context, file File) (*Preview, error)
	generated  atomic.Int32
	released   atomic.Int32
}

func newFakeDelegate(limit int) *fakeDelegate {
	return &fakeDelegate{
		limits:  map[string]int{KeyConcurrencyPrefix + KindAll: limit},
		limiter: semaphore.NewLocal(),
	}
}

func (d *fakeDelegate) GetPreview(ctx context.Context, file File, _, _ int, _ bool, _ Mode, _ string) (*Preview, error) {
	if d.getPreview != nil {
		return d.getPreview(ctx, file)
	}
	return &Preview{Path: file.Path}, nil
}

func (d *fakeDelegate) GeneratePreviews(_ context.Context, file File, _ []Spec, _ string) (*Preview, error) {
	d.generated.Add(1)
	return &Preview{Path: file.Path}, nil
}

func (d *fakeDelegate) NumConcurrentPreviews(key string) int {
	return d.limits[key]
}

func (d *fakeDelegate) GuardWithSemaphore(ctx context.Context, id string, limit int) (semaphore.Token, error) {
	if d.guardErr != nil {
		return semaphore.Token{}, d.guardErr
	}
	return d.limiter.Acquire(ctx, id, limit)
}

func (d *fakeDelegate) ReleaseSemaphore(token semaphore.Token) {
	d.released.Add(1)
	_ = d.limiter.Release(token)
}
