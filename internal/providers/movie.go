package providers

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"media-preview/internal/logging"
	"media-preview/internal/media"
	"media-preview/internal/preview"
)

// frameOffsets are tried in order; very short clips have no frame at 1s.
var frameOffsets = []string{"00:00:01", "00:00:00"}

// Movie grabs a single frame with ffmpeg (or avconv).
type Movie struct {
	binary string
}

// NewMovie returns a movie provider using binary for frame extraction.
func NewMovie(binary string) (*Movie, error) {
	if binary == "" {
		return nil, fmt.Errorf("movie provider: no converter binary")
	}
	return &Movie{binary: binary}, nil
}

func (m *Movie) Name() string     { return "movie" }
func (m *Movie) MimeType() string { return "video/.*" }

func (m *Movie) IsAvailable(file preview.File) bool {
	return regularFile(file.Path)
}

func (m *Movie) Thumbnail(ctx context.Context, file preview.File, maxWidth, maxHeight int) (image.Image, error) {
	tmp, err := os.MkdirTemp("", "media-preview-movie-")
	if err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	var lastErr error
	for i, offset := range frameOffsets {
		out := filepath.Join(tmp, fmt.Sprintf("frame-%d.png", i))
		if lastErr = extractFrame(ctx, m.binary, file.Path, offset, out); lastErr != nil {
			if ctx.Err() != nil {
				return nil, lastErr
			}
			logging.Debug("No frame at %s in %s: %v", offset, file.Path, lastErr)
			continue
		}
		return media.LoadImageFit(out, maxWidth, maxHeight)
	}
	return nil, lastErr
}

// extractFrame writes the frame at offset to out. ffmpeg exits successfully
// without writing anything when the offset is past the end, so the output is
// checked explicitly.
func extractFrame(ctx context.Context, binary, src, offset, out string) error {
	_, err := run(ctx, binary,
		"-y",
		"-ss", offset,
		"-i", src,
		"-an",
		"-frames:v", "1",
		"-f", "image2",
		out,
	)
	if err != nil {
		return err
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		return fmt.Errorf("no frame extracted at %s", offset)
	}
	return nil
}
