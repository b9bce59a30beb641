package preview

// ImageLibrary answers questions about the native image library.
type ImageLibrary interface {
	// Available reports whether the library is loaded.
	Available() bool
	// SupportsFormat reports whether the library can read the named format,
	// e.g. "SVG", "PDF" or "HEIC".
	SupportsFormat(name string) bool
}

// BinaryLocator finds external converter programs.
type BinaryLocator interface {
	FindBinaryPath(name string) (path string, ok bool)
}

// FeatureProbe is everything the CoreBootstrapper asks about the host.
type FeatureProbe interface {
	ImageLibrary
	BinaryLocator
}
