package preview

import (
	"cmp"
	"regexp"
	"slices"
	"sync"

	"media-preview/internal/logging"
	"media-preview/internal/metrics"
)

// Entry is one mimetype pattern and the factories registered under it.
type Entry struct {
	Pattern   string
	Factories []ProviderFactory

	re *regexp.Regexp
}

// Matches reports whether mimeType matches the entry's pattern. The match is
// unanchored. Patterns that failed to compile never match.
func (e Entry) Matches(mimeType string) bool {
	return e.re != nil && e.re.MatchString(mimeType)
}

type registryEntry struct {
	pattern   string
	re        *regexp.Regexp
	factories []ProviderFactory
}

// Registry maps mimetype patterns to provider factories.
//
// Entries are returned ordered by descending pattern length. Entries whose
// patterns have the same length keep the order in which the pattern was first
// registered. Length stands in for specificity, so "image/png" is tried before
// "image/.*"; it is not a declared priority.
type Registry struct {
	mu      sync.Mutex
	entries []*registryEntry
	index   map[string]*registryEntry
	dirty   bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]*registryEntry),
	}
}

// Register appends factory under pattern. Registering a pattern again adds
// another factory to the existing entry.
func (r *Registry) Register(pattern string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.index[pattern]
	if !ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			logging.Warn("preview registry: pattern %q does not compile and will never match: %v", pattern, err)
		}
		e = &registryEntry{pattern: pattern, re: re}
		r.index[pattern] = e
		r.entries = append(r.entries, e)
		metrics.PreviewRegistryPatterns.Set(float64(len(r.entries)))
	}
	e.factories = append(e.factories, factory)
	r.dirty = true
}

// All returns a snapshot of all entries, first to try first.
func (r *Registry) All() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dirty {
		slices.SortStableFunc(r.entries, func(a, b *registryEntry) int {
			return cmp.Compare(len(b.pattern), len(a.pattern))
		})
		r.dirty = false
	}

	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = Entry{
			Pattern:   e.pattern,
			Factories: slices.Clone(e.factories),
			re:        e.re,
		}
	}
	return out
}

// Len returns the number of distinct patterns.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// HasAny reports whether at least one pattern is registered.
func (r *Registry) HasAny() bool {
	return r.Len() > 0
}
