package providers

import (
	"bufio"
	"context"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"strings"

	"media-preview/internal/media"
	"media-preview/internal/preview"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	textPageWidth  = 1024
	textPageHeight = 1448
	textMargin     = 32
	textMaxBytes   = 64 << 10
)

// Text renders the first lines of a text file onto a page.
type Text struct {
	mime     string
	markdown bool
}

// NewText returns a provider for plain text.
func NewText() *Text {
	return &Text{mime: "text/plain"}
}

// NewMarkdown returns a provider for Markdown. Heading markers are stripped
// and headings drawn in a darker ink.
func NewMarkdown() *Text {
	return &Text{mime: `text/(?:x-)?markdown`, markdown: true}
}

func (t *Text) Name() string {
	if t.markdown {
		return "markdown"
	}
	return "text"
}

func (t *Text) MimeType() string { return t.mime }

func (t *Text) IsAvailable(file preview.File) bool {
	return regularFile(file.Path)
}

func (t *Text) Thumbnail(_ context.Context, file preview.File, maxWidth, maxHeight int) (image.Image, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 2
	maxLines := (textPageHeight - 2*textMargin) / lineHeight
	maxCols := (textPageWidth - 2*textMargin) / face.Advance

	page := image.NewRGBA(image.Rect(0, 0, textPageWidth, textPageHeight))
	draw.Draw(page, page.Bounds(), image.White, image.Point{}, draw.Src)

	scanner := bufio.NewScanner(io.LimitReader(f, textMaxBytes))
	y := textMargin + face.Metrics().Ascent.Ceil()
	for line := 0; line < maxLines && scanner.Scan(); line++ {
		text := strings.ReplaceAll(scanner.Text(), "\t", "    ")
		ink := color.Gray{Y: 0x30}
		if t.markdown && strings.HasPrefix(text, "#") {
			text = strings.TrimSpace(strings.TrimLeft(text, "#"))
			ink = color.Gray{Y: 0}
		}
		if len(text) > maxCols {
			text = text[:maxCols]
		}

		d := &font.Drawer{
			Dst:  page,
			Src:  image.NewUniform(ink),
			Face: face,
			Dot:  fixed.P(textMargin, y),
		}
		d.DrawString(text)
		y += lineHeight
	}

	return media.FitImage(page, maxWidth, maxHeight), nil
}
