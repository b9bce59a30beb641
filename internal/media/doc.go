// Package media renders and caches previews.
//
// The [Generator] is the generation delegate behind preview.Manager. It asks
// the providers registered for a file's mimetype for an image, trying them in
// dispatch order, and stores the resized result under CACHE_DIR/previews keyed
// by path, modification time, size and requested box. Each provider runs behind
// its own circuit breaker, so a converter that keeps failing is skipped for a
// cool-down period instead of being invoked for every request.
//
// The [Probe] answers the capability questions asked when built-in providers
// are registered: whether libvips is loaded, which formats it reads, and where
// converter binaries such as soffice or ffmpeg are installed.
package media
