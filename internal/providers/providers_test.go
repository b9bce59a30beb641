package providers

import (
	"archive/zip"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"media-preview/internal/preview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, w interface{ Write([]byte) (int, error) }, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 20, B: 20, A: 255})
		}
	}
	require.NoError(t, png.Encode(w, img))
}

func TestDecodeXBM(t *testing.T) {
	src := `#define test_width 10
#define test_height 2
static unsigned char test_bits[] = {
   0x01, 0x02,
   0xff, 0x03 };
`
	img, err := decodeXBM(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 2), img.Bounds())

	gray := img.(*image.Gray)
	assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y, "bit 0 of first byte is set")
	assert.Equal(t, uint8(0xff), gray.GrayAt(1, 0).Y)
	assert.Equal(t, uint8(0), gray.GrayAt(9, 0).Y, "bit 1 of second byte is set")
	for x := 0; x < 10; x++ {
		assert.Equal(t, uint8(0), gray.GrayAt(x, 1).Y)
	}
}

func TestDecodeXBMErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no dimensions", "static char bits[] = { 0x00 };"},
		{"short data", "#define a_width 16\n#define a_height 2\nstatic char a_bits[] = { 0x00, 0x00 };"},
		{"bad byte", "#define a_width 8\n#define a_height 1\nstatic char a_bits[] = { 0xzz };"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeXBM(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, errNotXBM)
		})
	}
}

func TestXBitmapIsAvailable(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.xbm")
	bad := filepath.Join(dir, "bad.xbm")
	require.NoError(t, os.WriteFile(good, []byte("#define g_width 8\n#define g_height 1\nstatic char g_bits[] = { 0x0f };\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("GIF89a"), 0o644))

	x := XBitmap{}
	assert.True(t, x.IsAvailable(preview.File{Path: good}))
	assert.False(t, x.IsAvailable(preview.File{Path: bad}))

	img, err := x.Thumbnail(context.Background(), preview.File{Path: good}, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestRaster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	writePNG(t, f, 400, 200)
	require.NoError(t, f.Close())

	p := NewRaster("image/png")
	file := preview.File{Path: path}
	assert.True(t, p.IsAvailable(file))

	img, err := p.Thumbnail(context.Background(), file, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	broken := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("not a png"), 0o644))
	assert.False(t, p.IsAvailable(preview.File{Path: broken}))
}

func writeZip(t *testing.T, path string, members map[string]bool) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, isImage := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		if isImage {
			writePNG(t, w, 64, 32)
		} else {
			_, err = w.Write([]byte("<xml/>"))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
}

func TestOpenDocumentThumbnail(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.odt")
	writeZip(t, path, map[string]bool{
		"content.xml":              false,
		"Thumbnails/thumbnail.png": true,
	})

	p := NewOpenDocument()
	file := preview.File{Path: path}
	require.True(t, p.IsAvailable(file))

	img, err := p.Thumbnail(context.Background(), file, 32, 32)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())
}

func TestKritaWithoutMergedImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "art.kra")
	writeZip(t, path, map[string]bool{"maindoc.xml": false})

	p := NewKrita()
	file := preview.File{Path: path}
	assert.False(t, p.IsAvailable(file))

	_, err := p.Thumbnail(context.Background(), file, 32, 32)
	assert.Error(t, err)

	assert.False(t, p.IsAvailable(preview.File{Path: filepath.Join(dir, "missing.kra")}))
}

func TestTextThumbnail(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nSome\ttext\n"), 0o644))

	for _, p := range []*Text{NewText(), NewMarkdown()} {
		t.Run(p.Name(), func(t *testing.T) {
			assert.True(t, p.IsAvailable(preview.File{Path: path}))
			assert.False(t, p.IsAvailable(preview.File{Path: dir}))

			img, err := p.Thumbnail(context.Background(), preview.File{Path: path}, 256, 256)
			require.NoError(t, err)

			b := img.Bounds()
			assert.LessOrEqual(t, b.Dx(), 256)
			assert.Equal(t, 256, b.Dy())
		})
	}
}

func TestConverterProvidersNeedBinary(t *testing.T) {
	_, err := NewOffice("msofficedoc", "application/msword", "")
	assert.Error(t, err)

	_, err = NewMovie("")
	assert.Error(t, err)
}

func TestMP3Availability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0o644))
	file := preview.File{Path: path}

	assert.False(t, NewMP3("").IsAvailable(file))

	_, err := NewMP3("").Thumbnail(context.Background(), file, 10, 10)
	assert.Error(t, err)

	m := NewMP3("/usr/bin/ffmpeg")
	assert.True(t, m.IsAvailable(file))
	assert.False(t, m.IsAvailable(preview.File{Path: path + ".missing"}))
	assert.Equal(t, "/usr/bin/ffmpeg", m.binary)
}

func TestCatalogue(t *testing.T) {
	catalogue := Catalogue()
	ids := make(map[string]bool, len(catalogue))

	for _, c := range catalogue {
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true

		assert.True(t, strings.HasPrefix(c.ID, `Preview\`), c.ID)
		_, err := regexp.Compile(c.MimePattern)
		assert.NoError(t, err, c.ID)
		require.NotNil(t, c.New, c.ID)

		if c.Requires == preview.RequiresImageLibrary {
			assert.NotEmpty(t, c.Format, c.ID)
		}
	}

	for _, id := range preview.DefaultEnabledProviders {
		assert.True(t, ids[id], "default provider %s missing from catalogue", id)
	}
}

func TestCataloguePatterns(t *testing.T) {
	patterns := make(map[string]*regexp.Regexp)
	for _, c := range Catalogue() {
		patterns[c.ID] = regexp.MustCompile(c.MimePattern)
	}

	tests := []struct {
		id   string
		mime string
	}{
		{`Preview\SVG`, "image/svg+xml"},
		{`Preview\MarkDown`, "text/markdown"},
		{`Preview\MarkDown`, "text/x-markdown"},
		{`Preview\OpenDocument`, "application/vnd.oasis.opendocument.text"},
		{`Preview\MSOffice2007`, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{`Preview\MSOffice2003`, "application/vnd.ms-excel"},
		{`Preview\StarOffice`, "application/vnd.sun.xml.writer"},
		{`Preview\Movie`, "video/mp4"},
		{`Preview\HEIC`, "image/heif"},
		{`Preview\Font`, "application/x-font"},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			re, ok := patterns[tt.id]
			require.True(t, ok, tt.id)
			assert.True(t, re.MatchString(tt.mime))
		})
	}
}

func TestCatalogueConstructors(t *testing.T) {
	opts := preview.ProviderOptions{
		OfficeBinary: "/usr/bin/soffice",
		MovieBinary:  "/usr/bin/ffmpeg",
	}

	for _, c := range Catalogue() {
		o := opts
		o.Format = c.Format
		p, err := c.New(o)
		require.NoError(t, err, c.ID)
		require.NotNil(t, p, c.ID)
		assert.NotEmpty(t, p.MimeType(), c.ID)
	}
}
