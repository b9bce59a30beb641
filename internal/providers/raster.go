package providers

import (
	"context"
	"image"

	"media-preview/internal/media"
	"media-preview/internal/preview"
)

// Raster decodes formats Go reads natively: PNG, JPEG, GIF, BMP and WebP.
type Raster struct {
	mime string
}

// NewRaster returns a raster provider declared for mime.
func NewRaster(mime string) *Raster {
	return &Raster{mime: mime}
}

func (r *Raster) Name() string     { return "raster" }
func (r *Raster) MimeType() string { return r.mime }

// IsAvailable reports whether the file header decodes.
func (r *Raster) IsAvailable(file preview.File) bool {
	_, err := media.GetImageDimensions(file.Path)
	return err == nil
}

func (r *Raster) Thumbnail(_ context.Context, file preview.File, maxWidth, maxHeight int) (image.Image, error) {
	return media.LoadImageFit(file.Path, maxWidth, maxHeight)
}
