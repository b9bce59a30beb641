package providers

import (
	"archive/zip"
	"context"
	"fmt"
	"image"

	"media-preview/internal/media"
	"media-preview/internal/preview"

	"github.com/disintegration/imaging"
)

// ZipThumbnail reads a preview image that the authoring application stored
// inside a zip container, as OpenDocument and Krita files do.
type ZipThumbnail struct {
	name   string
	mime   string
	member string
}

// NewOpenDocument returns a provider for the thumbnail every OpenDocument
// file carries.
func NewOpenDocument() *ZipThumbnail {
	return &ZipThumbnail{
		name:   "opendocument",
		mime:   "application/vnd.oasis.opendocument.*",
		member: "Thumbnails/thumbnail.png",
	}
}

// NewKrita returns a provider for the flattened image in Krita documents.
func NewKrita() *ZipThumbnail {
	return &ZipThumbnail{
		name:   "krita",
		mime:   "application/x-krita",
		member: "mergedimage.png",
	}
}

func (z *ZipThumbnail) Name() string     { return z.name }
func (z *ZipThumbnail) MimeType() string { return z.mime }

// IsAvailable reports whether the container holds the expected member.
func (z *ZipThumbnail) IsAvailable(file preview.File) bool {
	r, err := zip.OpenReader(file.Path)
	if err != nil {
		return false
	}
	defer r.Close()

	_, err = r.Open(z.member)
	return err == nil
}

func (z *ZipThumbnail) Thumbnail(_ context.Context, file preview.File, maxWidth, maxHeight int) (image.Image, error) {
	r, err := zip.OpenReader(file.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Path, err)
	}
	defer r.Close()

	member, err := r.Open(z.member)
	if err != nil {
		return nil, fmt.Errorf("%s has no %s: %w", file.Path, z.member, err)
	}
	defer member.Close()

	img, err := imaging.Decode(member)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", z.member, err)
	}
	return media.FitImage(img, maxWidth, maxHeight), nil
}
