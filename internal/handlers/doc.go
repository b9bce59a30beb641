// Package handlers implements the HTTP API of the preview server.
//
// Routes (registered by main):
//
//	GET  /api/preview/{path}                 rendered preview image
//	GET  /api/preview-available/{path}      whether a preview can be produced
//	GET  /api/mimetypes/supported?mime=...  whether a mimetype has providers
//	GET  /api/providers                     registered patterns in dispatch order
//	GET  /api/mounts                        mounts and their preview flag
//	PUT  /api/mounts/{name}/previews        toggle previews for a mount
//	GET  /healthz, /livez, /readyz          probes
//	GET  /version                           build information
//
// File paths are relative to the media directory; requests escaping it are
// rejected with 400.
package handlers
