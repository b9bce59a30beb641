// Package main provides the entry point for the Media Preview server.
//
// Media Preview renders thumbnails and previews for the files below a media
// directory. Providers are looked up by mimetype in a pattern registry that
// is filled from the built-in catalogue, filtered by configuration and by
// what this host supports, and from providers contributed by plugins.
//
// # Application Lifecycle
//
//  1. Configuration Loading: config.yml, .env and the environment through viper
//  2. Memory Configuration: GOMEMLIMIT from MEMORY_LIMIT and MEMORY_RATIO
//  3. libvips Initialization: vector, document and exotic raster formats
//  4. Database Initialization: SQLite mount table, seeded with the media directory
//  5. Preview Setup:
//     - Plugin host and optional sidecar plugin
//     - Built-in provider bootstrap and external provider loader
//     - Generation slots, in process or shared through Redis
//     - Generator with on-disk cache, circuit breakers and memory backpressure
//  6. HTTP Server Setup: routes, logging and metrics middleware
//  7. Graceful Shutdown: SIGINT/SIGTERM stop every component in order
//
// # HTTP Server
//
// The main server (default port 8080) serves the preview API under /api and
// the health and version endpoints. A second server (default port 9090) serves
// Prometheus metrics on /metrics when METRICS_ENABLED is true.
//
// # Environment Variables
//
//   - MEDIA_DIR: Root directory containing media files (default: /media)
//   - CACHE_DIR: Directory for rendered previews (default: /cache)
//   - DATABASE_DIR: Directory for the SQLite database (default: /database)
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - REDIS_ADDR: Share generation slots between instances through Redis
//   - MEMORY_LIMIT: Container memory limit in bytes
//   - MEMORY_RATIO: Share of MEMORY_LIMIT given to the Go heap (default: 0.75)
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//
// Preview settings such as enable_previews, enabledPreviewProviders and
// preview_concurrency_all are read from the same sources.
//
// # Build Requirements
//
// CGO is required for SQLite and libvips. LibreOffice and ffmpeg are used
// when found on PATH or configured through preview_libreoffice_path and
// preview_ffmpeg_path.
package main
