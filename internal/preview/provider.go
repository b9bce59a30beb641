package preview

import (
	"context"
	"image"
	"io"
	"os"
	"time"

	"media-preview/internal/logging"
)

// Mode controls how a cropped preview is fitted into the requested box.
type Mode string

const (
	// ModeFill scales the image to fit inside the box.
	ModeFill Mode = "fill"
	// ModeCover scales the image to cover the box.
	ModeCover Mode = "cover"
)

// Mount describes the storage a file lives on.
type Mount struct {
	Name            string
	Root            string
	PreviewsEnabled bool
}

// File is the stored file a preview is requested for.
type File struct {
	ID       string
	Name     string
	Path     string
	MimeType string
	Size     int64
	ModTime  time.Time
	// Mount is nil for files that are not on a registered mount.
	Mount *Mount
}

func (f File) previewsAllowedOnMount() bool {
	return f.Mount == nil || f.Mount.PreviewsEnabled
}

// Spec is one requested preview size for bulk generation.
type Spec struct {
	Width  int
	Height int
	Crop   bool
	Mode   Mode
}

// Preview is a generated preview stored on disk.
type Preview struct {
	Path     string
	MimeType string
	Width    int
	Height   int
	Size     int64
}

// Open opens the preview file for reading.
func (p *Preview) Open() (io.ReadCloser, error) {
	return os.Open(p.Path)
}

// Provider renders preview images for files matching MimeType.
type Provider interface {
	// MimeType returns the pattern the provider was declared for.
	MimeType() string
	// Thumbnail returns an image no larger than maxWidth x maxHeight.
	Thumbnail(ctx context.Context, file File, maxWidth, maxHeight int) (image.Image, error)
}

// FileChecker is implemented by providers that can tell whether they will be
// able to handle a specific file, beyond its mimetype.
type FileChecker interface {
	IsAvailable(file File) bool
}

// ProviderFactory defers the construction of a Provider. It is never invoked at
// registration time. ok is false when the provider is currently unavailable.
type ProviderFactory interface {
	Create() (p Provider, ok bool)
}

// FactoryFunc adapts a function to ProviderFactory.
type FactoryFunc func() (Provider, bool)

// Create calls f.
func (f FactoryFunc) Create() (Provider, bool) {
	return f()
}

// ProviderSource returns the factories matching a mimetype, first to try first.
type ProviderSource interface {
	ProvidersFor(mimeType string) []ProviderFactory
}

// CreateProvider invokes f and turns a panic or a nil provider into "unavailable".
func CreateProvider(f ProviderFactory) (p Provider, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("preview provider factory panicked: %v", r)
			p, ok = nil, false
		}
	}()

	p, ok = f.Create()
	if p == nil {
		return nil, false
	}
	return p, ok
}

// canHandle reports whether p explicitly accepts file. Providers without a
// FileChecker are not considered.
func canHandle(p Provider, file File) (ok bool) {
	checker, isChecker := p.(FileChecker)
	if !isChecker {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Warn("preview provider %s panicked checking %s: %v", p.MimeType(), file.Path, r)
			ok = false
		}
	}()
	return checker.IsAvailable(file)
}
