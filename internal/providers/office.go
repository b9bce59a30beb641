package providers

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"media-preview/internal/media"
	"media-preview/internal/preview"
)

// Office converts documents to PNG with a headless LibreOffice.
type Office struct {
	name   string
	mime   string
	binary string
}

// NewOffice returns an office provider using binary for conversion.
func NewOffice(name, mime, binary string) (*Office, error) {
	if binary == "" {
		return nil, fmt.Errorf("office provider %s: no converter binary", name)
	}
	return &Office{name: name, mime: mime, binary: binary}, nil
}

func (o *Office) Name() string     { return o.name }
func (o *Office) MimeType() string { return o.mime }

func (o *Office) IsAvailable(file preview.File) bool {
	return regularFile(file.Path)
}

func (o *Office) Thumbnail(ctx context.Context, file preview.File, maxWidth, maxHeight int) (image.Image, error) {
	outDir, err := os.MkdirTemp("", "media-preview-office-")
	if err != nil {
		return nil, fmt.Errorf("create conversion dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	// A private profile directory keeps concurrent conversions from fighting
	// over the user's LibreOffice lock file.
	profile := "-env:UserInstallation=file://" + filepath.ToSlash(filepath.Join(outDir, "profile"))

	_, err = run(ctx, o.binary,
		profile,
		"--headless",
		"--nologo",
		"--nofirststartwizard",
		"--invisible",
		"--norestore",
		"--convert-to", "png",
		"--outdir", outDir,
		file.Path,
	)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(file.Path), filepath.Ext(file.Path))
	return media.LoadImageFit(filepath.Join(outDir, base+".png"), maxWidth, maxHeight)
}
