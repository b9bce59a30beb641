/*
Package filesystem wraps the stat and open calls made on media files with a
retry for NFS stale file handles.

Media directories are often NFS exports. When the server replaces a file or
re-exports a directory, the client can return ESTALE for a handle it cached
earlier; a second attempt a few milliseconds later usually succeeds. Any other
error is returned immediately.

	info, err := filesystem.Stat(ctx, path)

	f, err := filesystem.Open(ctx, path)
	if err != nil {
		return err
	}
	defer f.Close()

Backoff doubles from 50ms up to 500ms over at most three retries and stops
early when ctx is done. Retries are counted per operation and volume in the
media_preview_fs_* metrics; volumes are labelled through [SetVolumes].
*/
package filesystem
