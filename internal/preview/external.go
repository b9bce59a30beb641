package preview

import (
	"sync"

	"media-preview/internal/logging"
	"media-preview/internal/metrics"
)

// Declaration is a provider declared by a plugin: a mimetype pattern and the
// service that implements it.
type Declaration struct {
	MimePattern string
	ServiceID   string
}

// RegistrationSource lists plugin-declared providers. ready is false while the
// plugin bootstrap has not finished.
type RegistrationSource interface {
	PreviewProviders() (declarations []Declaration, ready bool)
}

// ServiceResolver resolves a service identifier to an instance.
type ServiceResolver interface {
	Resolve(serviceID string) (any, error)
}

// ExternalLoader registers plugin-declared providers, each at most once.
type ExternalLoader struct {
	source   RegistrationSource
	resolver ServiceResolver

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewExternalLoader returns a loader. A nil source makes Load a no-op.
func NewExternalLoader(source RegistrationSource, resolver ServiceResolver) *ExternalLoader {
	return &ExternalLoader{
		source:   source,
		resolver: resolver,
		seen:     make(map[string]struct{}),
	}
}

func dedupeKey(d Declaration) string {
	return d.MimePattern + "-" + d.ServiceID
}

// Load registers declarations not seen before and returns how many were added.
func (l *ExternalLoader) Load(reg *Registry) int {
	if l == nil || l.source == nil {
		return 0
	}

	declarations, ready := l.source.PreviewProviders()
	if !ready {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	added := 0
	for _, d := range declarations {
		key := dedupeKey(d)
		if _, ok := l.seen[key]; ok {
			continue
		}
		l.seen[key] = struct{}{}

		reg.Register(d.MimePattern, l.factory(d))
		metrics.PreviewExternalProvidersRegistered.Inc()
		logging.Debug("preview: registered external provider %s for %q", d.ServiceID, d.MimePattern)
		added++
	}
	return added
}

func (l *ExternalLoader) factory(d Declaration) ProviderFactory {
	return FactoryFunc(func() (Provider, bool) {
		if l.resolver == nil {
			return nil, false
		}

		instance, err := l.resolver.Resolve(d.ServiceID)
		if err != nil {
			logging.Debug("preview: external provider %s unavailable: %v", d.ServiceID, err)
			return nil, false
		}

		p, ok := instance.(Provider)
		if !ok {
			logging.Warn("preview: service %s does not implement a preview provider (%T)", d.ServiceID, instance)
			return nil, false
		}
		return p, true
	})
}
