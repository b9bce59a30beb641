package plugins

import (
	"errors"
	"fmt"
	"sync"

	"media-preview/internal/logging"
	"media-preview/internal/preview"
)

// Plugin is an extension booted by the Host.
type Plugin interface {
	Name() string
	Register(ctx *Context) error
}

// Context is what a plugin sees while it registers.
type Context struct {
	host   *Host
	plugin string
}

// Services returns the shared service container.
func (c *Context) Services() *Container {
	return c.host.services
}

// RegisterPreviewProvider declares that the service registered as serviceID
// renders previews for mimetypes matching pattern.
func (c *Context) RegisterPreviewProvider(pattern, serviceID string) {
	c.host.RegisterPreviewProvider(pattern, serviceID)
	logging.Debug("Plugin %s declared preview provider %s for %q", c.plugin, serviceID, pattern)
}

// Host boots plugins and collects their preview provider declarations.
type Host struct {
	services *Container

	mu           sync.Mutex
	booted       bool
	declarations []preview.Declaration
}

// NewHost returns a host whose plugins share services.
func NewHost(services *Container) *Host {
	if services == nil {
		services = NewContainer()
	}
	return &Host{services: services}
}

// Services returns the container plugins register into.
func (h *Host) Services() *Container {
	return h.services
}

// RegisterPreviewProvider records a declaration. Declarations made after Boot
// are picked up by the next preview lookup.
func (h *Host) RegisterPreviewProvider(pattern, serviceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.declarations = append(h.declarations, preview.Declaration{
		MimePattern: pattern,
		ServiceID:   serviceID,
	})
}

// Boot registers every plugin. A failing plugin is logged and skipped; the
// joined errors are returned after all plugins ran. The host is ready either way.
func (h *Host) Boot(plugins ...Plugin) error {
	var errs []error
	for _, p := range plugins {
		ctx := &Context{host: h, plugin: p.Name()}
		if err := p.Register(ctx); err != nil {
			logging.Error("Plugin %s failed to register: %v", p.Name(), err)
			errs = append(errs, fmt.Errorf("plugin %s: %w", p.Name(), err))
			continue
		}
		logging.Info("Plugin %s registered", p.Name())
	}

	h.mu.Lock()
	h.booted = true
	h.mu.Unlock()

	return errors.Join(errs...)
}

// Booted reports whether Boot has finished.
func (h *Host) Booted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.booted
}

// PreviewProviders implements preview.RegistrationSource.
func (h *Host) PreviewProviders() ([]preview.Declaration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.booted {
		return nil, false
	}
	out := make([]preview.Declaration, len(h.declarations))
	copy(out, h.declarations)
	return out, true
}
