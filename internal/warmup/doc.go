// Package warmup renders previews ahead of time for every file on a mount.
//
// A warmup walks the mount root, skipping hidden entries, and hands each
// regular file to a small pool of workers. A worker detects the mimetype,
// asks the preview service whether any provider accepts the file and, if so,
// renders the configured sizes in one pass through GeneratePreviews. Files
// already in the preview cache cost a stat and a hash.
//
// Only one warmup runs at a time. [Warmer.Start] runs it in the background
// until it finishes or [Warmer.Stop] is called; [Warmer.Run] runs it in the
// calling goroutine. Progress is reported by [Warmer.Status] and in the
// media_preview_warmup_* metrics.
//
// The default of three workers is safe for NFS mounts. Bulk generation does
// not take the interactive generation slots, so requests from users are not
// starved by a running warmup.
package warmup
