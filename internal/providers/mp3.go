package providers

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"

	"media-preview/internal/media"
	"media-preview/internal/preview"
)

// MP3 extracts embedded cover art with ffmpeg. It is registered without a
// converter too, since it is enabled by default while movie previews are not;
// it then reports every file unavailable.
type MP3 struct {
	binary string
}

// NewMP3 returns an MP3 cover art provider using binary, which may be empty.
func NewMP3(binary string) *MP3 {
	return &MP3{binary: binary}
}

func (m *MP3) Name() string     { return "mp3" }
func (m *MP3) MimeType() string { return "audio/mpeg" }

// IsAvailable is false when no extraction binary exists.
func (m *MP3) IsAvailable(file preview.File) bool {
	return m.binary != "" && regularFile(file.Path)
}

func (m *MP3) Thumbnail(ctx context.Context, file preview.File, maxWidth, maxHeight int) (image.Image, error) {
	if m.binary == "" {
		return nil, errors.New("mp3 cover extraction needs ffmpeg")
	}

	tmp, err := os.MkdirTemp("", "media-preview-mp3-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	out := filepath.Join(tmp, "cover.png")
	if _, err := run(ctx, m.binary, "-y", "-i", file.Path, "-an", "-frames:v", "1", out); err != nil {
		return nil, err
	}
	return media.LoadImageFit(out, maxWidth, maxHeight)
}
