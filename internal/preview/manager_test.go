package preview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(cfg mapConfig, source *fakeSource, resolver fakeResolver) *Manager {
	var captured []ProviderOptions
	core := NewCoreBootstrapper(cfg, &fakeProbe{}, testCatalogue(&captured))
	return NewManager(cfg, core, NewExternalLoader(source, resolver))
}

func TestManagerPopulatesCoreOnce(t *testing.T) {
	var built int
	catalogue := []CoreProvider{{
		ID:          `Preview\PNG`,
		MimePattern: "image/png",
		New:         stubProvider("image/png"),
	}}
	probe := &fakeProbe{}
	core := NewCoreBootstrapper(mapConfig{}, probe, catalogue)
	m := NewManager(mapConfig{}, core, nil)

	for i := 0; i < 3; i++ {
		built += len(m.Providers())
	}
	assert.Equal(t, 3, built)
	assert.Len(t, m.Providers()[0].Factories, 1)
}

func TestManagerBootstrapReport(t *testing.T) {
	catalogue := []CoreProvider{
		{ID: `Preview\PNG`, MimePattern: "image/png", New: stubProvider("image/png")},
		{ID: `Preview\SVG`, MimePattern: `image/svg\+xml`, Requires: RequiresImageLibrary, Format: "SVG", New: stubProvider("image/svg+xml")},
	}
	cfg := mapConfig{KeyEnabledProviders: []string{`Preview\PNG`, `Preview\SVG`}}
	m := NewManager(cfg, NewCoreBootstrapper(cfg, &fakeProbe{}, catalogue), nil)

	report := m.Bootstrap()
	assert.Equal(t, []string{`Preview\PNG`}, report.Registered)
	assert.Contains(t, report.Skipped, `Preview\SVG`)
	assert.Equal(t, report, m.Bootstrap(), "bootstrap runs once")

	assert.Zero(t, m.SupportCacheSize())
	m.IsMimeSupported("image/png")
	m.IsMimeSupported("image/gif")
	assert.Equal(t, 2, m.SupportCacheSize())

	disabled := NewManager(mapConfig{KeyEnablePreviews: false}, NewCoreBootstrapper(cfg, &fakeProbe{}, catalogue), nil)
	assert.Empty(t, disabled.Bootstrap().Registered)
}

func TestManagerPullsExternalOnEveryCall(t *testing.T) {
	source := &fakeSource{ready: true, declarations: []Declaration{{MimePattern: "image/x-foo", ServiceID: "foo"}}}
	m := newTestManager(mapConfig{}, source, fakeResolver{})

	m.Providers()
	m.HasProviders()
	m.Providers()

	assert.Equal(t, 3, source.callCount())
	assert.Len(t, m.ProvidersFor("image/x-foo"), 1)
}

func TestManagerToleratesLateExternalContext(t *testing.T) {
	source := &fakeSource{declarations: []Declaration{{MimePattern: "image/x-foo", ServiceID: "foo"}}}
	m := newTestManager(mapConfig{}, source, fakeResolver{})

	assert.Empty(t, m.ProvidersFor("image/x-foo"))

	source.mu.Lock()
	source.ready = true
	source.mu.Unlock()

	assert.Len(t, m.ProvidersFor("image/x-foo"), 1)
}

func TestManagerDisabledBehavesEmpty(t *testing.T) {
	source := &fakeSource{ready: true, declarations: []Declaration{{MimePattern: "image/.*", ServiceID: "img"}}}
	m := newTestManager(mapConfig{KeyEnablePreviews: false}, source, fakeResolver{})
	m.RegisterProvider("text/plain", &countingFactory{provider: &fakeProvider{mime: "text/plain"}})

	assert.Empty(t, m.Providers())
	assert.Empty(t, m.ProvidersFor("text/plain"))
	assert.False(t, m.HasProviders())
	assert.False(t, m.IsMimeSupported("text/plain"))
	assert.False(t, m.IsMimeSupported("image/png"))
	assert.False(t, m.IsAvailable(File{MimeType: "text/plain"}))
	assert.Zero(t, source.callCount(), "registry must not be populated while disabled")
}

func TestManagerIsMimeSupportedMemoizes(t *testing.T) {
	source := &fakeSource{ready: true}
	m := newTestManager(mapConfig{}, source, fakeResolver{})

	assert.True(t, m.IsMimeSupported("image/png"))
	calls := source.callCount()

	assert.True(t, m.IsMimeSupported("image/png"))
	assert.Equal(t, calls, source.callCount(), "a memoized answer must not touch the registry")
}

func TestManagerDispatchOrder(t *testing.T) {
	m := NewManager(mapConfig{}, nil, nil)
	wildcard := &countingFactory{provider: &fakeProvider{mime: "image/.*"}}
	png := &countingFactory{provider: &fakeProvider{mime: "image/png"}}

	m.RegisterProvider("image/.*", wildcard)
	m.RegisterProvider("image/png", png)

	assert.Equal(t, []ProviderFactory{png, wildcard}, m.ProvidersFor("image/png"))
	assert.Equal(t, []ProviderFactory{wildcard}, m.ProvidersFor("image/jpeg"))
}

func TestManagerIsAvailable(t *testing.T) {
	disabledMount := &Mount{Name: "archive", PreviewsEnabled: false}
	enabledMount := &Mount{Name: "photos", PreviewsEnabled: true}

	tests := []struct {
		name      string
		providers map[string]Provider
		file      File
		want      bool
	}{
		{
			name:      "checker accepts",
			providers: map[string]Provider{"image/png": &checkingProvider{fakeProvider: fakeProvider{mime: "image/png", available: true}}},
			file:      File{MimeType: "image/png", Mount: enabledMount},
			want:      true,
		},
		{
			name:      "checker rejects",
			providers: map[string]Provider{"image/png": &checkingProvider{fakeProvider: fakeProvider{mime: "image/png"}}},
			file:      File{MimeType: "image/png"},
			want:      false,
		},
		{
			name:      "provider without checker is skipped",
			providers: map[string]Provider{"image/png": &fakeProvider{mime: "image/png", available: true}},
			file:      File{MimeType: "image/png"},
			want:      false,
		},
		{
			name:      "unsupported mimetype",
			providers: map[string]Provider{"image/png": &checkingProvider{fakeProvider: fakeProvider{mime: "image/png", available: true}}},
			file:      File{MimeType: "video/mp4"},
			want:      false,
		},
		{
			name:      "mount has previews disabled",
			providers: map[string]Provider{"image/png": &checkingProvider{fakeProvider: fakeProvider{mime: "image/png", available: true}}},
			file:      File{MimeType: "image/png", Mount: disabledMount},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(mapConfig{}, nil, nil)
			for pattern, p := range tt.providers {
				m.RegisterProvider(pattern, &countingFactory{provider: p})
			}
			assert.Equal(t, tt.want, m.IsAvailable(tt.file))
		})
	}
}

func TestManagerIsAvailableSkipsUnavailableProviders(t *testing.T) {
	m := NewManager(mapConfig{}, nil, nil)
	accepting := &checkingProvider{fakeProvider: fakeProvider{mime: "image/.*", available: true}}

	m.RegisterProvider("image/png", FactoryFunc(func() (Provider, bool) { panic("boom") }))
	m.RegisterProvider("image/png", &countingFactory{})
	m.RegisterProvider("image/.*", &countingFactory{provider: accepting})

	assert.True(t, m.IsAvailable(File{MimeType: "image/png"}))
	assert.Equal(t, int32(1), accepting.checks.Load())
}

func TestManagerIsAvailableShortCircuits(t *testing.T) {
	m := NewManager(mapConfig{}, nil, nil)
	first := &checkingProvider{fakeProvider: fakeProvider{mime: "image/png", available: true}}
	second := &countingFactory{provider: &checkingProvider{fakeProvider: fakeProvider{mime: "image/.*", available: true}}}

	m.RegisterProvider("image/png", &countingFactory{provider: first})
	m.RegisterProvider("image/.*", second)

	assert.True(t, m.IsAvailable(File{MimeType: "image/png"}))
	assert.Zero(t, second.calls.Load())
}

func TestManagerGetPreviewWithoutDelegate(t *testing.T) {
	m := NewManager(mapConfig{}, nil, nil)
	_, err := m.GetPreview(context.Background(), File{Path: "a.png"}, 64, 64, false, ModeFill, "")
	assert.ErrorIs(t, err, ErrNoDelegate)
}

func TestManagerGetPreviewPropagatesDelegateErrors(t *testing.T) {
	for _, want := range []error{ErrNotFound, ErrInvalidArgument} {
		t.Run(want.Error(), func(t *testing.T) {
			d := newFakeDelegate(1)
			d.getPreview = func(context.Context, File) (*Preview, error) {
				return nil, want
			}
			m := NewManager(mapConfig{}, nil, nil)
			m.SetDelegate(d)

			_, err := m.GetPreview(context.Background(), File{Path: "a.png"}, 64, 64, false, ModeFill, "")
			assert.ErrorIs(t, err, want)
			assert.Equal(t, int32(1), d.released.Load())
		})
	}
}

func TestManagerGetPreviewUsesFileMimeType(t *testing.T) {
	d := newFakeDelegate(1)
	m := NewManager(mapConfig{}, nil, nil)
	m.SetDelegate(d)

	p, err := m.GetPreview(context.Background(), File{Path: "a.png", MimeType: "image/png"}, 64, 64, true, ModeCover, "")
	require.NoError(t, err)
	assert.Equal(t, "a.png", p.Path)
}

func TestManagerGetPreviewGateExhausted(t *testing.T) {
	d := newFakeDelegate(0)
	called := false
	d.getPreview = func(context.Context, File) (*Preview, error) {
		called = true
		return nil, errors.New("unreachable")
	}
	m := NewManager(mapConfig{}, nil, nil)
	m.SetDelegate(d)

	_, err := m.GetPreview(context.Background(), File{Path: "a.png"}, 64, 64, false, ModeFill, "")
	assert.ErrorIs(t, err, ErrResourceExhausted)
	assert.False(t, called)
}

func TestManagerGeneratePreviewsIsNotGated(t *testing.T) {
	d := newFakeDelegate(0)
	m := NewManager(mapConfig{}, nil, nil)
	m.SetDelegate(d)

	p, err := m.GeneratePreviews(context.Background(), File{Path: "a.png"}, []Spec{{Width: 64, Height: 64}}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "a.png", p.Path)
	assert.Equal(t, int32(1), d.generated.Load())
	assert.Zero(t, d.released.Load())
}
