package media

import (
	"fmt"
	"image"
	"io"
	"os"

	"media-preview/internal/logging"

	"github.com/disintegration/imaging"

	// Decoders not registered by imaging
	_ "golang.org/x/image/webp"
)

// MaxImagePixels is the largest source we decode at full size. A 20MP RGBA
// image takes about 80MB; anything above is rejected before decoding.
const MaxImagePixels = 40_000_000

// ImageDimensions holds image width and height
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions returns image dimensions without fully decoding the image
func GetImageDimensions(path string) (*ImageDimensions, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	return DecodeDimensions(file)
}

// DecodeDimensions reads only the image header from r.
func DecodeDimensions(r io.Reader) (*ImageDimensions, error) {
	config, _, err := image.DecodeConfig(r)
	if err != nil {
		return nil, err
	}
	return &ImageDimensions{Width: config.Width, Height: config.Height}, nil
}

// LoadImageFit decodes the image at path with EXIF orientation applied and
// scales it down to fit inside maxWidth x maxHeight. Images that are already
// small enough are returned as decoded.
func LoadImageFit(path string, maxWidth, maxHeight int) (image.Image, error) {
	if dims, err := GetImageDimensions(path); err == nil {
		if pixels := dims.Width * dims.Height; pixels > MaxImagePixels {
			return nil, fmt.Errorf("image %dx%d exceeds %d pixels", dims.Width, dims.Height, MaxImagePixels)
		}
	} else {
		logging.Debug("Could not read image header of %s: %v", path, err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return FitImage(img, maxWidth, maxHeight), nil
}

// FitImage scales img down to fit inside maxWidth x maxHeight.
func FitImage(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth && b.Dy() <= maxHeight {
		return img
	}
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}
