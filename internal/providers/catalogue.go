package providers

import (
	"media-preview/internal/preview"
)

// ID prefix shared by every built-in provider.
const idPrefix = `Preview\`

func raster(mime string) func(preview.ProviderOptions) (preview.Provider, error) {
	return func(preview.ProviderOptions) (preview.Provider, error) {
		return NewRaster(mime), nil
	}
}

func vipsBacked(mime string) func(preview.ProviderOptions) (preview.Provider, error) {
	return func(opts preview.ProviderOptions) (preview.Provider, error) {
		return NewVips(mime, opts.Format), nil
	}
}

func office(name, mime string) func(preview.ProviderOptions) (preview.Provider, error) {
	return func(opts preview.ProviderOptions) (preview.Provider, error) {
		return NewOffice(name, mime, opts.OfficeBinary)
	}
}

// Catalogue returns every built-in provider candidate. Patterns are regular
// expressions matched against the file's mimetype.
func Catalogue() []preview.CoreProvider {
	return []preview.CoreProvider{
		{ID: idPrefix + "PNG", MimePattern: `image/png`, New: raster("image/png")},
		{ID: idPrefix + "JPEG", MimePattern: `image/jpeg`, New: raster("image/jpeg")},
		{ID: idPrefix + "GIF", MimePattern: `image/gif`, New: raster("image/gif")},
		{ID: idPrefix + "BMP", MimePattern: `image/bmp`, New: raster("image/bmp")},
		{ID: idPrefix + "WebP", MimePattern: `image/webp`, New: raster("image/webp")},
		{
			ID:          idPrefix + "XBitmap",
			MimePattern: `image/x-xbitmap`,
			New: func(preview.ProviderOptions) (preview.Provider, error) {
				return &XBitmap{}, nil
			},
		},

		{ID: idPrefix + "SVG", MimePattern: `image/svg\+xml`, Requires: preview.RequiresImageLibrary, Format: "SVG", New: vipsBacked(`image/svg\+xml`)},
		{ID: idPrefix + "TIFF", MimePattern: `image/tiff`, Requires: preview.RequiresImageLibrary, Format: "TIFF", New: vipsBacked("image/tiff")},
		{ID: idPrefix + "PDF", MimePattern: `application/pdf`, Requires: preview.RequiresImageLibrary, Format: "PDF", New: vipsBacked("application/pdf")},
		{ID: idPrefix + "Illustrator", MimePattern: `application/illustrator`, Requires: preview.RequiresImageLibrary, Format: "AI", New: vipsBacked("application/illustrator")},
		{ID: idPrefix + "Photoshop", MimePattern: `application/x-photoshop`, Requires: preview.RequiresImageLibrary, Format: "PSD", New: vipsBacked("application/x-photoshop")},
		{ID: idPrefix + "EPS", MimePattern: `application/postscript`, Requires: preview.RequiresImageLibrary, Format: "EPS", New: vipsBacked("application/postscript")},
		{ID: idPrefix + "Font", MimePattern: `application/(?:font-sfnt|x-font)`, Requires: preview.RequiresImageLibrary, Format: "TTF", New: vipsBacked("application/x-font")},
		{ID: idPrefix + "HEIC", MimePattern: `image/hei(?:c|f)`, Requires: preview.RequiresImageLibrary, Format: "HEIC", New: vipsBacked("image/heic")},
		{ID: idPrefix + "TGA", MimePattern: `image/(?:x-)?t(?:ar)?ga`, Requires: preview.RequiresImageLibrary, Format: "TGA", New: vipsBacked("image/x-tga")},
		{ID: idPrefix + "SGI", MimePattern: `image/(?:x-)?sgi`, Requires: preview.RequiresImageLibrary, Format: "SGI", New: vipsBacked("image/x-sgi")},

		{
			ID:          idPrefix + "Krita",
			MimePattern: `application/x-krita`,
			New: func(preview.ProviderOptions) (preview.Provider, error) {
				return NewKrita(), nil
			},
		},
		{
			ID:          idPrefix + "OpenDocument",
			MimePattern: `application/vnd\.oasis\.opendocument\..*`,
			New: func(preview.ProviderOptions) (preview.Provider, error) {
				return NewOpenDocument(), nil
			},
		},
		{
			ID:          idPrefix + "TXT",
			MimePattern: `text/plain`,
			New: func(preview.ProviderOptions) (preview.Provider, error) {
				return NewText(), nil
			},
		},
		{
			ID:          idPrefix + "MarkDown",
			MimePattern: `text/(?:x-)?markdown`,
			New: func(preview.ProviderOptions) (preview.Provider, error) {
				return NewMarkdown(), nil
			},
		},

		{ID: idPrefix + "MSOffice2003", MimePattern: `application/vnd\.ms-.*`, Requires: preview.RequiresOffice, New: office("msoffice2003", `application/vnd\.ms-.*`)},
		{ID: idPrefix + "MSOffice2007", MimePattern: `application/vnd\.openxmlformats-officedocument\..*`, Requires: preview.RequiresOffice, New: office("msoffice2007", `application/vnd\.openxmlformats-officedocument\..*`)},
		{ID: idPrefix + "MSOfficeDoc", MimePattern: `application/msword`, Requires: preview.RequiresOffice, New: office("msofficedoc", "application/msword")},
		{ID: idPrefix + "StarOffice", MimePattern: `application/vnd\.sun\.xml\..*`, Requires: preview.RequiresOffice, New: office("staroffice", `application/vnd\.sun\.xml\..*`)},
		{ID: idPrefix + "EMF", MimePattern: `image/emf`, Requires: preview.RequiresOffice, New: office("emf", "image/emf")},

		{
			ID:          idPrefix + "Movie",
			MimePattern: `video/.*`,
			Requires:    preview.RequiresMovie,
			New: func(opts preview.ProviderOptions) (preview.Provider, error) {
				return NewMovie(opts.MovieBinary)
			},
		},
		{
			ID:          idPrefix + "MP3",
			MimePattern: `audio/mpeg`,
			Uses:        preview.RequiresMovie,
			New: func(opts preview.ProviderOptions) (preview.Provider, error) {
				return NewMP3(opts.MovieBinary), nil
			},
		},
	}
}
