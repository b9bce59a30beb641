package preview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubProvider(mime string) func(ProviderOptions) (Provider, error) {
	return func(ProviderOptions) (Provider, error) {
		return &fakeProvider{mime: mime}, nil
	}
}

func testCatalogue(captured *[]ProviderOptions) []CoreProvider {
	capture := func(mime string) func(ProviderOptions) (Provider, error) {
		return func(opts ProviderOptions) (Provider, error) {
			*captured = append(*captured, opts)
			return &fakeProvider{mime: mime}, nil
		}
	}
	return []CoreProvider{
		{ID: `Preview\PNG`, MimePattern: "image/png", New: stubProvider("image/png")},
		{ID: `Preview\TXT`, MimePattern: "text/plain", New: stubProvider("text/plain")},
		{ID: `Preview\SVG`, MimePattern: "image/svg\\+xml", Requires: RequiresImageLibrary, Format: "SVG", New: stubProvider("image/svg+xml")},
		{ID: `Preview\PDF`, MimePattern: "application/pdf", Requires: RequiresImageLibrary, Format: "PDF", New: stubProvider("application/pdf")},
		{ID: `Preview\MSOfficeDoc`, MimePattern: "application/msword", Requires: RequiresOffice, New: capture("application/msword")},
		{ID: `Preview\OpenDocument`, MimePattern: "application/vnd.oasis.opendocument.*", Requires: RequiresOffice, New: capture("application/vnd.oasis.opendocument.*")},
		{ID: `Preview\Movie`, MimePattern: "video/.*", Requires: RequiresMovie, New: capture("video/.*")},
	}
}

func allIDs() []string {
	return []string{`Preview\PNG`, `Preview\TXT`, `Preview\SVG`, `Preview\PDF`,
		`Preview\MSOfficeDoc`, `Preview\OpenDocument`, `Preview\Movie`}
}

func TestBootstrapRespectsAllowList(t *testing.T) {
	var captured []ProviderOptions
	cfg := mapConfig{KeyEnabledProviders: []string{`\Preview\PNG`, `Preview\TXT`}}
	reg := NewRegistry()

	report := NewCoreBootstrapper(cfg, &fakeProbe{}, testCatalogue(&captured)).Register(reg)

	assert.Equal(t, []string{`Preview\PNG`, `Preview\TXT`}, report.Registered)
	assert.Equal(t, "not enabled", report.Skipped[`Preview\SVG`])
	assert.Equal(t, []string{"text/plain", "image/png"}, patterns(reg.All()))
}

func TestBootstrapDefaultAllowList(t *testing.T) {
	var captured []ProviderOptions
	reg := NewRegistry()

	report := NewCoreBootstrapper(mapConfig{}, &fakeProbe{}, testCatalogue(&captured)).Register(reg)

	assert.ElementsMatch(t, []string{`Preview\PNG`, `Preview\TXT`}, report.Registered)
	assert.Contains(t, report.Skipped, `Preview\OpenDocument`, "no office binary")
}

func TestBootstrapImageLibraryGating(t *testing.T) {
	tests := []struct {
		name    string
		probe   *fakeProbe
		wantSVG bool
		wantPDF bool
	}{
		{"library missing", &fakeProbe{formats: map[string]bool{"SVG": true, "PDF": true}}, false, false},
		{"svg only", &fakeProbe{library: true, formats: map[string]bool{"SVG": true}}, true, false},
		{"both", &fakeProbe{library: true, formats: map[string]bool{"SVG": true, "PDF": true}}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured []ProviderOptions
			cfg := mapConfig{KeyEnabledProviders: []string{`Preview\SVG`, `Preview\PDF`}}
			report := NewCoreBootstrapper(cfg, tt.probe, testCatalogue(&captured)).Register(NewRegistry())

			assert.Equal(t, tt.wantSVG, contains(report.Registered, `Preview\SVG`))
			assert.Equal(t, tt.wantPDF, contains(report.Registered, `Preview\PDF`))
		})
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestBootstrapNoOfficeBinaryRegistersNoOfficeProviders(t *testing.T) {
	var captured []ProviderOptions
	probe := &fakeProbe{}
	cfg := mapConfig{KeyEnabledProviders: allIDs()}
	reg := NewRegistry()

	report := NewCoreBootstrapper(cfg, probe, testCatalogue(&captured)).Register(reg)

	assert.NotContains(t, report.Registered, `Preview\MSOfficeDoc`)
	assert.NotContains(t, report.Registered, `Preview\OpenDocument`)
	for _, e := range reg.All() {
		assert.NotEqual(t, "application/msword", e.Pattern)
	}
	// Both well-known names are tried once, however many office providers exist.
	assert.Equal(t, []string{"libreoffice", "soffice", "avconv", "ffmpeg"}, probe.lookups)
}

func TestBootstrapOfficeBinaryResolution(t *testing.T) {
	tests := []struct {
		name     string
		cfg      mapConfig
		binaries map[string]string
		want     string
	}{
		{"override wins", mapConfig{KeyLibreOfficePath: "/opt/lo/soffice"}, map[string]string{"libreoffice": "/usr/bin/libreoffice"}, "/opt/lo/soffice"},
		{"first well-known name", mapConfig{}, map[string]string{"libreoffice": "/usr/bin/libreoffice", "soffice": "/usr/bin/soffice"}, "/usr/bin/libreoffice"},
		{"fallback name", mapConfig{}, map[string]string{"soffice": "/usr/bin/soffice"}, "/usr/bin/soffice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured []ProviderOptions
			tt.cfg[KeyEnabledProviders] = []string{`Preview\MSOfficeDoc`, `Preview\OpenDocument`}
			reg := NewRegistry()

			report := NewCoreBootstrapper(tt.cfg, &fakeProbe{binaries: tt.binaries}, testCatalogue(&captured)).Register(reg)
			require.Len(t, report.Registered, 2)

			for _, e := range reg.All() {
				_, ok := CreateProvider(e.Factories[0])
				require.True(t, ok)
			}
			require.Len(t, captured, 2)
			for _, opts := range captured {
				assert.Equal(t, tt.want, opts.OfficeBinary)
			}
		})
	}
}

func TestBootstrapMovieBinary(t *testing.T) {
	var captured []ProviderOptions
	cfg := mapConfig{KeyEnabledProviders: []string{`Preview\Movie`}}
	probe := &fakeProbe{binaries: map[string]string{"ffmpeg": "/usr/bin/ffmpeg"}}
	reg := NewRegistry()

	report := NewCoreBootstrapper(cfg, probe, testCatalogue(&captured)).Register(reg)
	require.Equal(t, []string{`Preview\Movie`}, report.Registered)

	_, ok := CreateProvider(reg.All()[0].Factories[0])
	require.True(t, ok)
	require.Len(t, captured, 1)
	assert.Equal(t, "/usr/bin/ffmpeg", captured[0].MovieBinary)
}

func TestBootstrapOptionalMovieBinary(t *testing.T) {
	tests := []struct {
		name     string
		cfg      mapConfig
		binaries map[string]string
		want     string
	}{
		{"override wins", mapConfig{KeyFFmpegPath: "/opt/ffmpeg/bin/ffmpeg"}, map[string]string{"ffmpeg": "/usr/bin/ffmpeg"}, "/opt/ffmpeg/bin/ffmpeg"},
		{"found on path", mapConfig{}, map[string]string{"ffmpeg": "/usr/bin/ffmpeg"}, "/usr/bin/ffmpeg"},
		{"missing is not fatal", mapConfig{}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured []ProviderOptions
			tt.cfg[KeyEnabledProviders] = []string{`Preview\MP3`}
			catalogue := []CoreProvider{{
				ID:          `Preview\MP3`,
				MimePattern: "audio/mpeg",
				Uses:        RequiresMovie,
				New: func(opts ProviderOptions) (Provider, error) {
					captured = append(captured, opts)
					return &fakeProvider{mime: "audio/mpeg"}, nil
				},
			}}
			reg := NewRegistry()

			report := NewCoreBootstrapper(tt.cfg, &fakeProbe{binaries: tt.binaries}, catalogue).Register(reg)
			require.Equal(t, []string{`Preview\MP3`}, report.Registered)

			_, ok := CreateProvider(reg.All()[0].Factories[0])
			require.True(t, ok)
			require.Len(t, captured, 1)
			assert.Equal(t, tt.want, captured[0].MovieBinary)
		})
	}
}

func TestBootstrapFactoriesAreLazy(t *testing.T) {
	var built int
	catalogue := []CoreProvider{{
		ID:          `Preview\PNG`,
		MimePattern: "image/png",
		New: func(ProviderOptions) (Provider, error) {
			built++
			return &fakeProvider{mime: "image/png"}, nil
		},
	}}

	reg := NewRegistry()
	NewCoreBootstrapper(mapConfig{}, &fakeProbe{}, catalogue).Register(reg)
	assert.Zero(t, built)

	_, ok := CreateProvider(reg.All()[0].Factories[0])
	assert.True(t, ok)
	assert.Equal(t, 1, built)
}

func TestBootstrapConstructorErrorIsUnavailable(t *testing.T) {
	catalogue := []CoreProvider{{
		ID:          `Preview\PNG`,
		MimePattern: "image/png",
		New: func(ProviderOptions) (Provider, error) {
			return nil, errors.New("decoder missing")
		},
	}}

	reg := NewRegistry()
	NewCoreBootstrapper(mapConfig{}, &fakeProbe{}, catalogue).Register(reg)

	p, ok := CreateProvider(reg.All()[0].Factories[0])
	assert.Nil(t, p)
	assert.False(t, ok)
}

func TestTrimNamespace(t *testing.T) {
	assert.Equal(t, `Preview\PNG`, trimNamespace(`\Preview\PNG`))
	assert.Equal(t, `Preview\PNG`, trimNamespace(` Preview\PNG `))
	assert.Equal(t, `Preview\PNG`, trimNamespace(`/Preview\PNG`))
}
