package mediatypes

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileType represents the broad category of a file.
type FileType string

const (
	// FileTypeImage represents a raster or vector image.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeAudio represents an audio file.
	FileTypeAudio FileType = "audio"
	// FileTypeDocument represents an office or page-description document.
	FileTypeDocument FileType = "document"
	// FileTypeText represents plain or lightly marked-up text.
	FileTypeText FileType = "text"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// DefaultMimeType is returned when a file's type cannot be determined.
const DefaultMimeType = "application/octet-stream"

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".xbm":  "image/x-xbitmap",
	".psd":  "application/x-photoshop",
	".tga":  "image/x-tga",
	".sgi":  "image/x-sgi",
	".emf":  "image/emf",
	".kra":  "application/x-krita",

	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",

	// Audio
	".mp3": "audio/mpeg",

	// Documents
	".pdf":  "application/pdf",
	".ai":   "application/illustrator",
	".eps":  "application/postscript",
	".ps":   "application/postscript",
	".ttf":  "application/x-font",
	".otf":  "application/x-font",
	".doc":  "application/msword",
	".xls":  "application/vnd.ms-excel",
	".ppt":  "application/vnd.ms-powerpoint",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".odt":  "application/vnd.oasis.opendocument.text",
	".ods":  "application/vnd.oasis.opendocument.spreadsheet",
	".odp":  "application/vnd.oasis.opendocument.presentation",
	".odg":  "application/vnd.oasis.opendocument.graphics",
	".sxw":  "application/vnd.sun.xml.writer",
	".sxc":  "application/vnd.sun.xml.calc",

	// Text
	".txt": "text/plain",
	".log": "text/plain",
	".md":  "text/markdown",
}

// GetMimeType returns the MIME type for a given file extension.
// The extension is matched case-insensitively and must include the leading dot.
// Returns DefaultMimeType if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return DefaultMimeType
}

// GetFileType returns the category of a MIME type.
func GetFileType(mimeType string) FileType {
	major, minor, _ := strings.Cut(mimeType, "/")
	switch {
	case major == "image":
		return FileTypeImage
	case major == "video":
		return FileTypeVideo
	case major == "audio":
		return FileTypeAudio
	case major == "text":
		return FileTypeText
	case major == "application" && isDocument(minor):
		return FileTypeDocument
	}
	return FileTypeOther
}

func isDocument(minor string) bool {
	for _, prefix := range []string{"pdf", "msword", "vnd.ms-", "vnd.openxmlformats-", "vnd.oasis.opendocument.", "vnd.sun.xml.", "postscript", "illustrator"} {
		if strings.HasPrefix(minor, prefix) {
			return true
		}
	}
	return false
}

// Detect returns the MIME type of the file at path. The extension table is
// consulted first; unknown extensions fall back to sniffing the content.
// Parameters such as charset are stripped.
func Detect(path string) string {
	if mime, ok := MimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}

	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return DefaultMimeType
	}
	mime, _, _ := strings.Cut(detected.String(), ";")
	return strings.TrimSpace(mime)
}
