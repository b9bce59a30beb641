package main

import (
	"context"
	"time"

	"media-preview/internal/database"
	"media-preview/internal/logging"
	"media-preview/internal/media"
	"media-preview/internal/metrics"
	"media-preview/internal/preview"
)

// statsProvider feeds the metrics collector.
type statsProvider struct {
	manager   *preview.Manager
	generator *media.Generator
	db        *database.Database
}

func (s *statsProvider) GetStats() metrics.Stats {
	count, size := s.generator.CacheStats()
	stats := metrics.Stats{
		RegisteredPatterns: len(s.manager.Providers()),
		MimeTypesCached:    s.manager.SupportCacheSize(),
		CachedPreviews:     count,
		CacheBytes:         size,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	enabled, disabled, err := s.db.CountMounts(ctx)
	if err != nil {
		logging.Warn("Failed to count mounts: %v", err)
		return stats
	}
	stats.MountsPreviewsEnabled = enabled
	stats.MountsPreviewsDisabled = disabled
	return stats
}
