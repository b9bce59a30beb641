// Package metrics provides Prometheus instrumentation for the media-preview service.
//
// All metrics are prefixed with "media_preview_" and registered with the
// default Prometheus registry through promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Database Metrics
//
//   - DBQueryTotal: Counter of mount queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//
// ## Provider Registry Metrics
//
//   - PreviewRegistryPatterns: Gauge of distinct mimetype patterns
//   - PreviewExternalProvidersRegistered: Counter of plugin-declared providers
//   - PreviewMimeSupportLookups: Counter of support lookups by memo result
//   - PreviewMimeTypesCached: Gauge of memoized mimetypes
//
// ## Concurrency Gate Metrics
//
//   - PreviewGateSlotsInUse: Gauge of held slots by kind ("all" or "new")
//   - PreviewGateWaitDuration: Histogram of slot wait time by kind
//   - PreviewGateRejections: Counter of failed acquisitions by kind and reason
//
// ## Generation Metrics
//
//   - PreviewGenerationsTotal: Counter by provider and status
//   - PreviewGenerationDuration: Histogram of generation time by provider
//   - PreviewCacheHits / PreviewCacheMisses: Counters of on-disk cache lookups
//   - PreviewCacheSize / PreviewCacheCount: Gauges of cache contents
//   - PreviewProviderBreakerState: Gauge of the circuit breaker per provider
//
// # Collector
//
// [Collector] periodically reads a [StatsProvider] and updates the gauges
// that are derived from state rather than events:
//
//	collector := metrics.NewCollector(statsProvider, 1*time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Slot saturation:
//
//	media_preview_gate_slots_in_use{kind="all"}
//
// Preview cache hit rate:
//
//	rate(media_preview_cache_hits_total[5m]) /
//	(rate(media_preview_cache_hits_total[5m]) + rate(media_preview_cache_misses_total[5m]))
//
// P95 generation time by provider:
//
//	histogram_quantile(0.95, sum(rate(media_preview_generation_duration_seconds_bucket[5m])) by (le, provider))
package metrics
