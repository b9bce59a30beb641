package providers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"media-preview/internal/media"
	"media-preview/internal/preview"
)

var errNotXBM = errors.New("not an X bitmap")

// XBitmap renders X11 bitmaps, which are C source files declaring width,
// height and a bits array.
type XBitmap struct{}

func (XBitmap) Name() string     { return "xbitmap" }
func (XBitmap) MimeType() string { return "image/x-xbitmap" }

// IsAvailable parses the file; bitmaps are small.
func (XBitmap) IsAvailable(file preview.File) bool {
	f, err := os.Open(file.Path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, err = decodeXBM(io.LimitReader(f, 1<<20))
	return err == nil
}

func (XBitmap) Thumbnail(_ context.Context, file preview.File, maxWidth, maxHeight int) (image.Image, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := decodeXBM(f)
	if err != nil {
		return nil, err
	}
	return media.FitImage(img, maxWidth, maxHeight), nil
}

// decodeXBM parses the #define width/height lines and the hex byte array.
// Set bits are black; rows are padded to whole bytes, least significant bit
// first.
func decodeXBM(r io.Reader) (image.Image, error) {
	var width, height int
	var data []byte
	inBits := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if !inBits {
			if strings.HasPrefix(line, "#define") {
				fields := strings.Fields(line)
				if len(fields) != 3 {
					continue
				}
				n, err := strconv.Atoi(fields[2])
				if err != nil {
					return nil, fmt.Errorf("%w: %s", errNotXBM, line)
				}
				switch {
				case strings.HasSuffix(fields[1], "_width"):
					width = n
				case strings.HasSuffix(fields[1], "_height"):
					height = n
				}
				continue
			}
			idx := strings.Index(line, "{")
			if idx < 0 {
				continue
			}
			inBits = true
			line = line[idx+1:]
		}

		body, _, done := strings.Cut(line, "}")
		for _, tok := range strings.Split(body, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(tok), "0x"), 16, 8)
			if err != nil {
				return nil, fmt.Errorf("%w: bad byte %q", errNotXBM, tok)
			}
			data = append(data, byte(v))
		}
		if done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: missing dimensions", errNotXBM)
	}
	stride := (width + 7) / 8
	if len(data) < stride*height {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", errNotXBM, len(data), width, height)
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.Gray{Y: 0xff}
			if data[y*stride+x/8]&(1<<(x%8)) != 0 {
				c = color.Gray{Y: 0}
			}
			img.SetGray(x, y, c)
		}
	}
	return img, nil
}
