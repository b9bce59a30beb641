// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] layers an optional config.yml (current directory or
// /etc/media-preview), an optional .env file and the process environment,
// with the environment taking precedence. Service settings:
//
//   - MEDIA_DIR: Path to the media directory (default: /media)
//   - CACHE_DIR: Path to the cache directory; previews go to CACHE_DIR/previews (default: /cache)
//   - DATABASE_DIR: Path to the database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB: Share generation slots between
//     processes through Redis; unset means slots are per process
//   - STATS_INTERVAL: How often derived gauges are refreshed (default: 1m)
//   - LOG_LEVEL, LOG_FORMAT: See package logging
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// Preview settings are read through [Values], which implements preview.Config:
//
//   - enable_previews (default: true)
//   - enabledPreviewProviders: comma-separated provider IDs
//   - preview_libreoffice_path, preview_ffmpeg_path: converter overrides
//   - preview_concurrency_all, preview_concurrency_new: slot limits
//   - preview_max_x, preview_max_y: largest preview size (default: 4096)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
package startup
