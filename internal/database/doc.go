// Package database stores mount configuration in SQLite.
//
// A mount is a named storage root. Whether previews may be generated for a
// file is decided by the mount with the longest root containing it; files
// outside every mount are not restricted.
//
// The database uses WAL mode and creates its schema on open.
package database
