package preview

import (
	"sync"

	"media-preview/internal/metrics"
)

// MimeSupportCache memoizes whether any registered pattern matches a mimetype.
// Entries are never evicted or invalidated.
type MimeSupportCache struct {
	mu        sync.RWMutex
	supported map[string]bool
}

// NewMimeSupportCache returns an empty cache.
func NewMimeSupportCache() *MimeSupportCache {
	return &MimeSupportCache{
		supported: make(map[string]bool),
	}
}

// IsSupported returns the memoized answer for mimeType. On a miss it calls
// entries, scans them in order and stores the result.
func (c *MimeSupportCache) IsSupported(mimeType string, entries func() []Entry) bool {
	c.mu.RLock()
	supported, ok := c.supported[mimeType]
	c.mu.RUnlock()
	if ok {
		metrics.PreviewMimeSupportLookups.WithLabelValues("hit").Inc()
		return supported
	}
	metrics.PreviewMimeSupportLookups.WithLabelValues("miss").Inc()

	supported = false
	for _, e := range entries() {
		if e.Matches(mimeType) {
			supported = true
			break
		}
	}

	c.mu.Lock()
	c.supported[mimeType] = supported
	c.mu.Unlock()

	return supported
}

// Len returns the number of memoized mimetypes.
func (c *MimeSupportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.supported)
}
