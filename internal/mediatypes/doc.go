// Package mediatypes maps files to MIME types and broad categories.
//
// Lookups go through a static extension table first, since it is cheap and
// gives the vendor types that preview provider patterns are written against
// (for example the OpenDocument and OOXML families). Files with unknown or
// missing extensions are sniffed with github.com/gabriel-vasile/mimetype.
//
//	mime := mediatypes.Detect("/media/reports/q3.odt")
//	// "application/vnd.oasis.opendocument.text"
package mediatypes
