package handlers

import (
	"context"
	"time"

	"media-preview/internal/database"
	"media-preview/internal/preview"
	"media-preview/internal/warmup"
)

// PreviewService is the part of preview.Manager the handlers use.
type PreviewService interface {
	Enabled() bool
	Providers() []preview.Entry
	IsMimeSupported(mimeType string) bool
	IsAvailable(file preview.File) bool
	GetPreview(ctx context.Context, file preview.File, width, height int, crop bool, mode preview.Mode, mimeType string) (*preview.Preview, error)
}

// MountStore is the part of database.Database the handlers use.
type MountStore interface {
	Ping(ctx context.Context) error
	ListMounts(ctx context.Context) ([]database.Mount, error)
	MountForPath(ctx context.Context, path string) (*database.Mount, error)
	SetPreviewsEnabled(ctx context.Context, name string, enabled bool) error
}

// Warmer pre-renders previews for a whole mount. *warmup.Warmer implements it.
type Warmer interface {
	Start(mount preview.Mount) error
	Status() warmup.Status
}

// Handlers serves the HTTP API.
type Handlers struct {
	previews  PreviewService
	mounts    MountStore
	warmer    Warmer
	mediaDir  string
	startTime time.Time
}

// New returns handlers serving files below mediaDir. mounts may be nil, in
// which case no file is restricted by mount configuration.
func New(previews PreviewService, mounts MountStore, mediaDir string) *Handlers {
	return &Handlers{
		previews:  previews,
		mounts:    mounts,
		mediaDir:  mediaDir,
		startTime: time.Now(),
	}
}

// SetWarmer enables the warmup endpoints.
func (h *Handlers) SetWarmer(w Warmer) {
	h.warmer = w
}
