package media

import (
	"os/exec"
	"sync"

	"media-preview/internal/logging"
)

// Probe answers capability questions about the host: whether libvips is
// loaded and which formats it reads, and where converter binaries live.
// Binary lookups are cached for the life of the Probe.
type Probe struct {
	lookPath func(string) (string, error)

	mu       sync.Mutex
	binaries map[string]string
}

// NewProbe returns a Probe that searches PATH.
func NewProbe() *Probe {
	return &Probe{
		lookPath: exec.LookPath,
		binaries: make(map[string]string),
	}
}

// Available reports whether libvips is initialized.
func (p *Probe) Available() bool {
	return IsVipsAvailable()
}

// SupportsFormat reports whether libvips can read the named format.
func (p *Probe) SupportsFormat(name string) bool {
	return VipsSupports(name)
}

// FindBinaryPath returns the absolute path of an executable named name.
func (p *Probe) FindBinaryPath(name string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if path, ok := p.binaries[name]; ok {
		return path, path != ""
	}

	path, err := p.lookPath(name)
	if err != nil {
		logging.Debug("Probe: %s not found: %v", name, err)
		path = ""
	} else {
		logging.Debug("Probe: %s found at %s", name, path)
	}
	p.binaries[name] = path
	return path, path != ""
}
