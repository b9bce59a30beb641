package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_preview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_preview_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_preview_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_preview_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_preview_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Provider registry metrics
var (
	PreviewRegistryPatterns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_preview_registry_patterns",
			Help: "Number of distinct mimetype patterns in the provider registry",
		},
	)

	PreviewExternalProvidersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_preview_external_providers_registered_total",
			Help: "Total number of plugin-declared providers registered",
		},
	)

	PreviewMimeSupportLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_preview_mime_support_lookups_total",
			Help: "Mimetype support lookups by memo result",
		},
		[]string{"result"}, // "hit" or "miss"
	)

	PreviewMimeTypesCached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_preview_mime_support_cached",
			Help: "Number of mimetypes with a memoized support answer",
		},
	)
)

// Concurrency gate metrics
var (
	PreviewGateSlotsInUse = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_preview_gate_slots_in_use",
			Help: "Generation slots currently held by this process",
		},
		[]string{"kind"},
	)

	PreviewGateWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_preview_gate_wait_duration_seconds",
			Help:    "Time spent waiting for a generation slot",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)

	PreviewGateRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_preview_gate_rejections_total",
			Help: "Generation requests that could not get a slot",
		},
		[]string{"kind", "reason"},
	)
)

// Generation metrics
var (
	PreviewGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_preview_generations_total",
			Help: "Total number of preview generations by provider and status",
		},
		[]string{"provider", "status"},
	)

	PreviewGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_preview_generation_duration_seconds",
			Help:    "Preview generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	PreviewCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_preview_cache_hits_total",
			Help: "Total number of preview cache hits",
		},
	)

	PreviewCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_preview_cache_misses_total",
			Help: "Total number of preview cache misses",
		},
	)

	PreviewCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_preview_cache_size_bytes",
			Help: "Total size of the preview cache in bytes",
		},
	)

	PreviewCacheCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_preview_cache_count",
			Help: "Number of previews in the cache",
		},
	)

	PreviewProviderBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_preview_provider_breaker_state",
			Help: "Circuit breaker state per provider (0 = closed, 1 = half-open, 2 = open)",
		},
		[]string{"provider"},
	)
)

// Warmup metrics
var (
	PreviewWarmupRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_preview_warmup_running",
			Help: "Whether a preview warmup is running (1 = running)",
		},
	)

	PreviewWarmupFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_preview_warmup_files_total",
			Help: "Files visited by preview warmups, by result",
		},
		[]string{"result"}, // "generated", "skipped", "failed"
	)
)

// Mount metrics
var (
	MountsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_preview_mounts",
			Help: "Registered mounts by preview state",
		},
		[]string{"previews"}, // "enabled" or "disabled"
	)
)

// Filesystem metrics
var (
	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_preview_fs_stale_errors_total",
			Help: "Stale file handle errors seen on media files",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_preview_fs_retries_total",
			Help: "Filesystem operations that needed retries, by outcome",
		},
		[]string{"operation", "volume", "result"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_preview_memory_usage_ratio",
			Help: "Heap in use as a fraction of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_preview_memory_paused",
			Help: "Whether preview rendering is paused for memory pressure (1 = paused)",
		},
	)

	MemoryPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_preview_memory_pauses_total",
			Help: "Times preview rendering was paused for memory pressure",
		},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_preview_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
