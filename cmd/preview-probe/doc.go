// Command preview-probe reports what the preview server would be able to do
// on this host, and manages mount settings without going through the API.
//
// Usage:
//
//	preview-probe <command> [arguments]
//
// Commands:
//
//	features                 libvips state, supported formats and converter
//	                         binaries found on PATH.
//
//	providers                built-in providers the current configuration
//	                         registers, and why the others are skipped.
//
//	detect <file>            mimetype of file, matching patterns and whether
//	                         a preview is available.
//
//	mounts                   list mounts stored in the database.
//
//	mount-previews <name> on|off
//	                         enable or disable previews for a mount.
//
// Environment:
//
//	CONFIG_FILE  - explicit config.yml (default: ./config.yml or /etc/media-preview)
//	ENV_FILE     - explicit .env file (default: ./.env when present)
//	DATABASE_DIR - Path to database directory (default: /database)
package main
