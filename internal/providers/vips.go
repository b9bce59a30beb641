package providers

import (
	"context"
	"image"

	"media-preview/internal/media"
	"media-preview/internal/preview"
)

// Vips renders formats read through libvips: vector images, PDF, TIFF, HEIC
// and everything libvips hands to ImageMagick.
type Vips struct {
	mime   string
	format string
}

// NewVips returns a libvips provider for mime. format names the libvips
// loader, as understood by media.VipsSupports.
func NewVips(mime, format string) *Vips {
	return &Vips{mime: mime, format: format}
}

func (v *Vips) Name() string     { return "vips:" + v.format }
func (v *Vips) MimeType() string { return v.mime }

// IsAvailable only checks that the file can be read; decoding is left to
// Thumbnail.
func (v *Vips) IsAvailable(file preview.File) bool {
	return regularFile(file.Path)
}

func (v *Vips) Thumbnail(_ context.Context, file preview.File, maxWidth, maxHeight int) (image.Image, error) {
	return media.LoadImageWithVips(file.Path, maxWidth, maxHeight)
}
