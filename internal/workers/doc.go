// Package workers sizes concurrency limits from the CPUs available to the
// process.
//
// GOMAXPROCS follows the container CPU quota, so the counts shrink with the
// container rather than reflecting the host. The preview service uses
// [ForIO] as the default for preview_concurrency_all, since most expensive
// previews wait on LibreOffice or ffmpeg, and [ForCPU] for
// preview_concurrency_new.
//
// Setting PREVIEW_WORKERS to a positive integer replaces the computed value
// everywhere; the limit argument still caps it:
//
//	PREVIEW_WORKERS=4 ./media-preview
package workers
