package preview

import (
	"context"
	"fmt"
	"sync"

	"media-preview/internal/logging"
)

// Manager is the entry point for preview lookups and generation. Create one at
// service start and share it.
type Manager struct {
	cfg       Config
	registry  *Registry
	core      *CoreBootstrapper
	external  *ExternalLoader
	mimeCache *MimeSupportCache

	coreOnce   sync.Once
	coreReport BootstrapReport

	mu       sync.RWMutex
	delegate Delegate
	gate     *Gate
}

// NewManager returns a manager with an empty registry. core and external may be
// nil.
func NewManager(cfg Config, core *CoreBootstrapper, external *ExternalLoader) *Manager {
	return &Manager{
		cfg:       cfg,
		registry:  NewRegistry(),
		core:      core,
		external:  external,
		mimeCache: NewMimeSupportCache(),
	}
}

// SetDelegate installs the generation delegate and the gate built on it.
func (m *Manager) SetDelegate(d Delegate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delegate = d
	m.gate = NewGate(d)
}

func (m *Manager) generation() (Delegate, *Gate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.delegate == nil {
		return nil, nil, ErrNoDelegate
	}
	return m.delegate, m.gate, nil
}

// Enabled reports whether previews are enabled at all.
func (m *Manager) Enabled() bool {
	return previewsEnabled(m.cfg)
}

// populate registers the built-in providers once and pulls plugin-declared
// providers on every call.
func (m *Manager) populate() {
	m.coreOnce.Do(func() {
		if m.core == nil {
			return
		}
		m.coreReport = m.core.Register(m.registry)
		logging.Info("preview: registered %d built-in providers, skipped %d",
			len(m.coreReport.Registered), len(m.coreReport.Skipped))
	})
	m.external.Load(m.registry)
}

// Bootstrap populates the registry now instead of on the first lookup and
// returns what the built-in bootstrap registered.
func (m *Manager) Bootstrap() BootstrapReport {
	if !m.Enabled() {
		return BootstrapReport{}
	}
	m.populate()
	return m.coreReport
}

// SupportCacheSize returns how many mimetypes IsMimeSupported has memoized.
func (m *Manager) SupportCacheSize() int {
	return m.mimeCache.Len()
}

// RegisterProvider adds a provider factory for pattern.
func (m *Manager) RegisterProvider(pattern string, factory ProviderFactory) {
	m.registry.Register(pattern, factory)
}

// Providers returns all registry entries, first to try first. It is empty when
// previews are disabled.
func (m *Manager) Providers() []Entry {
	if !m.Enabled() {
		return nil
	}
	m.populate()
	return m.registry.All()
}

// ProvidersFor returns the factories whose pattern matches mimeType, in
// dispatch order.
func (m *Manager) ProvidersFor(mimeType string) []ProviderFactory {
	var factories []ProviderFactory
	for _, e := range m.Providers() {
		if e.Matches(mimeType) {
			factories = append(factories, e.Factories...)
		}
	}
	return factories
}

// HasProviders reports whether any provider is registered.
func (m *Manager) HasProviders() bool {
	if !m.Enabled() {
		return false
	}
	m.populate()
	return m.registry.HasAny()
}

// IsMimeSupported reports whether any registered pattern matches mimeType. The
// answer is memoized for the lifetime of the manager.
func (m *Manager) IsMimeSupported(mimeType string) bool {
	if !m.Enabled() {
		return false
	}
	return m.mimeCache.IsSupported(mimeType, m.Providers)
}

// IsAvailable reports whether some provider accepts file.
func (m *Manager) IsAvailable(file File) bool {
	if !m.Enabled() {
		return false
	}
	if !m.IsMimeSupported(file.MimeType) {
		return false
	}
	if !file.previewsAllowedOnMount() {
		return false
	}

	for _, factory := range m.ProvidersFor(file.MimeType) {
		p, ok := CreateProvider(factory)
		if !ok {
			continue
		}
		if canHandle(p, file) {
			return true
		}
	}
	return false
}

// GetPreview returns a preview of file while holding a generation slot. An
// empty mimeType means file.MimeType.
func (m *Manager) GetPreview(ctx context.Context, file File, width, height int, crop bool, mode Mode, mimeType string) (*Preview, error) {
	delegate, gate, err := m.generation()
	if err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = file.MimeType
	}

	var result *Preview
	err = gate.Run(ctx, KindAll, func() error {
		p, err := delegate.GetPreview(ctx, file, width, height, crop, mode, mimeType)
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get preview of %s: %w", file.Path, err)
	}
	return result, nil
}

// GeneratePreviews renders several sizes of file at once. Unlike GetPreview it
// does not take a generation slot.
func (m *Manager) GeneratePreviews(ctx context.Context, file File, specs []Spec, mimeType string) (*Preview, error) {
	delegate, _, err := m.generation()
	if err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = file.MimeType
	}

	p, err := delegate.GeneratePreviews(ctx, file, specs, mimeType)
	if err != nil {
		return nil, fmt.Errorf("generate previews of %s: %w", file.Path, err)
	}
	return p, nil
}
