package plugins

import (
	"context"
	"image"
	"os"

	"media-preview/internal/media"
	"media-preview/internal/preview"
)

// SidecarServiceID is the service the sidecar plugin registers.
const SidecarServiceID = "preview.sidecar"

// sidecarSuffixes are tried in order next to the source file.
var sidecarSuffixes = []string{".thumb.jpg", ".thumb.png", ".jpg", ".png"}

// Sidecar serves previews from images stored next to the file, e.g.
// "clip.mkv.thumb.jpg" or "scan.tif.png", as written by cameras and
// scanners.
type Sidecar struct {
	pattern string
}

// NewSidecar returns a sidecar plugin declared for pattern. An empty pattern
// covers every mimetype.
func NewSidecar(pattern string) *Sidecar {
	if pattern == "" {
		pattern = ".*"
	}
	return &Sidecar{pattern: pattern}
}

func (s *Sidecar) Name() string { return "sidecar" }

func (s *Sidecar) Register(ctx *Context) error {
	if err := ctx.Services().Register(SidecarServiceID, func() (any, error) {
		return &sidecarProvider{pattern: s.pattern}, nil
	}); err != nil {
		return err
	}
	ctx.RegisterPreviewProvider(s.pattern, SidecarServiceID)
	return nil
}

type sidecarProvider struct {
	pattern string
}

func (p *sidecarProvider) Name() string     { return "sidecar" }
func (p *sidecarProvider) MimeType() string { return p.pattern }

func (p *sidecarProvider) find(path string) (string, bool) {
	for _, suffix := range sidecarSuffixes {
		candidate := path + suffix
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

func (p *sidecarProvider) IsAvailable(file preview.File) bool {
	_, ok := p.find(file.Path)
	return ok
}

func (p *sidecarProvider) Thumbnail(_ context.Context, file preview.File, maxWidth, maxHeight int) (image.Image, error) {
	path, ok := p.find(file.Path)
	if !ok {
		return nil, os.ErrNotExist
	}
	return media.LoadImageFit(path, maxWidth, maxHeight)
}
