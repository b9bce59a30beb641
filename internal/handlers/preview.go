package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"media-preview/internal/logging"
	"media-preview/internal/preview"
)

// Preview sizes used when the request does not give one.
const (
	defaultPreviewWidth  = 256
	defaultPreviewHeight = 256
)

type previewParams struct {
	width, height int
	crop          bool
	mode          preview.Mode
}

func intParam(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// boolParam accepts 1/0 and anything strconv.ParseBool does.
func boolParam(r *http.Request, name string, def bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// parsePreviewParams reads x and y (pixels, -1 for the largest preview),
// a (keep aspect ratio, default true; a=0 crops) and mode (fill or cover).
// Range checks are left to the generator.
func parsePreviewParams(r *http.Request) (previewParams, bool) {
	width, ok := intParam(r, "x", defaultPreviewWidth)
	if !ok {
		return previewParams{}, false
	}
	height, ok := intParam(r, "y", defaultPreviewHeight)
	if !ok {
		return previewParams{}, false
	}

	mode := preview.Mode(strings.ToLower(r.URL.Query().Get("mode")))
	if mode == "" {
		mode = preview.ModeFill
	}

	return previewParams{
		width:  width,
		height: height,
		crop:   !boolParam(r, "a", true),
		mode:   mode,
	}, true
}

// GetPreview renders and serves a preview image.
func (h *Handlers) GetPreview(w http.ResponseWriter, r *http.Request) {
	if !h.previews.Enabled() {
		writeJSONError(w, "previews are disabled", http.StatusServiceUnavailable)
		return
	}

	params, ok := parsePreviewParams(r)
	if !ok {
		writeJSONError(w, "x and y must be integers", http.StatusBadRequest)
		return
	}

	file, err := h.resolveFile(r)
	if err != nil {
		writeFileError(w, err)
		return
	}

	if file.Mount != nil && !file.Mount.PreviewsEnabled {
		writeJSONError(w, "previews are disabled on this mount", http.StatusForbidden)
		return
	}

	logging.Debug("Preview requested: %s (%s) %dx%d crop=%v mode=%s",
		file.ID, file.MimeType, params.width, params.height, params.crop, params.mode)

	p, err := h.previews.GetPreview(r.Context(), file, params.width, params.height, params.crop, params.mode, "")
	if err != nil {
		writePreviewError(w, err)
		return
	}

	w.Header().Set("Content-Type", p.MimeType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, p.Path)
}

// PreviewAvailable reports whether a preview can be produced for the file.
func (h *Handlers) PreviewAvailable(w http.ResponseWriter, r *http.Request) {
	file, err := h.resolveFile(r)
	if err != nil {
		writeFileError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"path":      file.ID,
		"mime":      file.MimeType,
		"available": h.previews.IsAvailable(file),
	})
}

// MimeSupported reports whether any provider is registered for ?mime=.
func (h *Handlers) MimeSupported(w http.ResponseWriter, r *http.Request) {
	mime := strings.TrimSpace(r.URL.Query().Get("mime"))
	if mime == "" {
		writeJSONError(w, "mime is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"mime":      mime,
		"supported": h.previews.IsMimeSupported(mime),
	})
}

// ProviderInfo describes one registered pattern.
type ProviderInfo struct {
	Pattern   string `json:"pattern"`
	Factories int    `json:"factories"`
}

// ListProviders returns the registered patterns in dispatch order.
func (h *Handlers) ListProviders(w http.ResponseWriter, _ *http.Request) {
	entries := h.previews.Providers()
	out := make([]ProviderInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, ProviderInfo{Pattern: e.Pattern, Factories: len(e.Factories)})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"enabled":   h.previews.Enabled(),
		"providers": out,
	})
}
