package metrics

import (
	"time"

	"media-preview/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current statistics
type Stats struct {
	RegisteredPatterns     int
	MimeTypesCached        int
	CachedPreviews         int
	CacheBytes             int64
	MountsPreviewsEnabled  int
	MountsPreviewsDisabled int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	PreviewRegistryPatterns.Set(float64(stats.RegisteredPatterns))
	PreviewMimeTypesCached.Set(float64(stats.MimeTypesCached))
	PreviewCacheCount.Set(float64(stats.CachedPreviews))
	PreviewCacheSize.Set(float64(stats.CacheBytes))
	MountsTotal.WithLabelValues("enabled").Set(float64(stats.MountsPreviewsEnabled))
	MountsTotal.WithLabelValues("disabled").Set(float64(stats.MountsPreviewsDisabled))

	logging.Debug("Metrics collected: patterns=%d, mimetypes=%d, previews=%d, bytes=%d",
		stats.RegisteredPatterns, stats.MimeTypesCached, stats.CachedPreviews, stats.CacheBytes)
}
