package preview

import (
	"fmt"
	"strings"
	"sync"

	"media-preview/internal/logging"
)

// Requirement names the host capability a built-in provider depends on.
type Requirement int

const (
	// RequiresNothing providers are implemented in Go only.
	RequiresNothing Requirement = iota
	// RequiresImageLibrary providers need the image library with support for
	// the provider's Format.
	RequiresImageLibrary
	// RequiresOffice providers need an office suite converter binary.
	RequiresOffice
	// RequiresMovie providers need a video converter binary.
	RequiresMovie
)

// Well-known converter binaries, in lookup order.
var (
	OfficeBinaries = []string{"libreoffice", "soffice"}
	MovieBinaries  = []string{"avconv", "ffmpeg"}
)

// ProviderOptions is the construction data handed to a built-in provider.
type ProviderOptions struct {
	// Format is the image library format for RequiresImageLibrary providers.
	Format string
	// OfficeBinary is the resolved office converter for RequiresOffice providers.
	OfficeBinary string
	// MovieBinary is the resolved video converter for RequiresMovie providers
	// and, when one was found, for providers that use it optionally.
	MovieBinary string
}

// CoreProvider describes a built-in provider candidate.
type CoreProvider struct {
	ID          string
	MimePattern string
	Requires    Requirement
	// Uses names an optional converter: resolved when present, never a reason
	// to skip the candidate.
	Uses   Requirement
	Format string
	New    func(ProviderOptions) (Provider, error)
}

// BootstrapReport lists what a bootstrap run registered and skipped.
type BootstrapReport struct {
	Registered []string
	Skipped    map[string]string
}

func (r *BootstrapReport) skip(id, reason string) {
	if r.Skipped == nil {
		r.Skipped = make(map[string]string)
	}
	r.Skipped[id] = reason
	logging.Debug("preview: skipping built-in provider %s: %s", id, reason)
}

// CoreBootstrapper decides which built-in providers to register.
type CoreBootstrapper struct {
	cfg       Config
	probe     FeatureProbe
	catalogue []CoreProvider
}

// NewCoreBootstrapper returns a bootstrapper for the given candidates.
func NewCoreBootstrapper(cfg Config, probe FeatureProbe, catalogue []CoreProvider) *CoreBootstrapper {
	return &CoreBootstrapper{
		cfg:       cfg,
		probe:     probe,
		catalogue: catalogue,
	}
}

// trimNamespace drops a leading namespace separator so that `\Preview\PNG`
// and `Preview\PNG` name the same provider.
func trimNamespace(id string) string {
	return strings.TrimLeft(strings.TrimSpace(id), `\/`)
}

func (b *CoreBootstrapper) enabledProviders() map[string]bool {
	ids := b.cfg.Strings(KeyEnabledProviders, DefaultEnabledProviders)
	enabled := make(map[string]bool, len(ids))
	for _, id := range ids {
		enabled[trimNamespace(id)] = true
	}
	return enabled
}

// resolveBinary prefers a configured override and falls back to searching the
// well-known names in order.
func (b *CoreBootstrapper) resolveBinary(overrideKey string, names []string) (string, bool) {
	if override := b.cfg.String(overrideKey, ""); override != "" {
		return override, true
	}
	for _, name := range names {
		if path, ok := b.probe.FindBinaryPath(name); ok && path != "" {
			return path, true
		}
	}
	return "", false
}

// Register adds every eligible candidate to reg. A failed capability check
// skips that candidate only.
func (b *CoreBootstrapper) Register(reg *Registry) BootstrapReport {
	var report BootstrapReport
	enabled := b.enabledProviders()

	officeBinary := sync.OnceValues(func() (string, bool) {
		return b.resolveBinary(KeyLibreOfficePath, OfficeBinaries)
	})
	movieBinary := sync.OnceValues(func() (string, bool) {
		return b.resolveBinary(KeyFFmpegPath, MovieBinaries)
	})

	for _, candidate := range b.catalogue {
		if !enabled[trimNamespace(candidate.ID)] {
			report.skip(candidate.ID, "not enabled")
			continue
		}

		opts := ProviderOptions{Format: candidate.Format}

		switch candidate.Requires {
		case RequiresImageLibrary:
			if !b.probe.Available() {
				report.skip(candidate.ID, "image library not available")
				continue
			}
			if !b.probe.SupportsFormat(candidate.Format) {
				report.skip(candidate.ID, fmt.Sprintf("image library does not support %s", candidate.Format))
				continue
			}
		case RequiresOffice:
			path, ok := officeBinary()
			if !ok {
				report.skip(candidate.ID, "no office converter binary found")
				continue
			}
			opts.OfficeBinary = path
		case RequiresMovie:
			path, ok := movieBinary()
			if !ok {
				report.skip(candidate.ID, "no video converter binary found")
				continue
			}
			opts.MovieBinary = path
		}

		switch candidate.Uses {
		case RequiresOffice:
			opts.OfficeBinary, _ = officeBinary()
		case RequiresMovie:
			opts.MovieBinary, _ = movieBinary()
		}

		reg.Register(candidate.MimePattern, coreFactory(candidate, opts))
		report.Registered = append(report.Registered, candidate.ID)
	}

	return report
}

func coreFactory(candidate CoreProvider, opts ProviderOptions) ProviderFactory {
	return FactoryFunc(func() (Provider, bool) {
		p, err := candidate.New(opts)
		if err != nil {
			logging.Warn("preview: built-in provider %s unavailable: %v", candidate.ID, err)
			return nil, false
		}
		return p, p != nil
	})
}
