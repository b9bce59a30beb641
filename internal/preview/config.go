package preview

// Config is the read-only view of configuration the package needs. Every getter
// returns def when the key is unset or cannot be converted.
type Config interface {
	Bool(key string, def bool) bool
	String(key, def string) string
	Strings(key string, def []string) []string
	Int(key string, def int) int
}

// Configuration keys.
const (
	KeyEnablePreviews   = "enable_previews"
	KeyEnabledProviders = "enabledPreviewProviders"
	KeyLibreOfficePath  = "preview_libreoffice_path"
	KeyFFmpegPath       = "preview_ffmpeg_path"

	// KeyConcurrencyPrefix is joined with a generation kind, e.g.
	// "preview_concurrency_all".
	KeyConcurrencyPrefix = "preview_concurrency_"
)

// Generation kinds understood by the Gate.
const (
	KindAll = "all"
	KindNew = "new"
)

// DefaultEnabledProviders is used when enabledPreviewProviders is not set. It
// only lists providers that are cheap and need nothing beyond Go itself.
var DefaultEnabledProviders = []string{
	`Preview\BMP`,
	`Preview\GIF`,
	`Preview\JPEG`,
	`Preview\Krita`,
	`Preview\MarkDown`,
	`Preview\MP3`,
	`Preview\OpenDocument`,
	`Preview\PNG`,
	`Preview\TXT`,
	`Preview\XBitmap`,
}

func previewsEnabled(cfg Config) bool {
	return cfg.Bool(KeyEnablePreviews, true)
}
