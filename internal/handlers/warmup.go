package handlers

import (
	"errors"
	"net/http"

	"media-preview/internal/logging"
	"media-preview/internal/preview"
	"media-preview/internal/warmup"

	"github.com/gorilla/mux"
)

// StartWarmup renders previews for every file on the mount named in the
// route. It returns 202 once the warmup has started.
func (h *Handlers) StartWarmup(w http.ResponseWriter, r *http.Request) {
	if h.warmer == nil || h.mounts == nil {
		writeJSONError(w, "warmup is not configured", http.StatusServiceUnavailable)
		return
	}
	if !h.previews.Enabled() {
		writeJSONError(w, "previews are disabled", http.StatusServiceUnavailable)
		return
	}

	name := mux.Vars(r)["name"]
	mounts, err := h.mounts.ListMounts(r.Context())
	if err != nil {
		logging.Error("Failed to list mounts: %v", err)
		writeJSONError(w, "failed to list mounts", http.StatusInternalServerError)
		return
	}

	var target *preview.Mount
	for _, m := range mounts {
		if m.Name == name {
			target = &preview.Mount{Name: m.Name, Root: m.Root, PreviewsEnabled: m.PreviewsEnabled}
			break
		}
	}
	if target == nil {
		writeJSONError(w, "mount not found", http.StatusNotFound)
		return
	}

	switch err := h.warmer.Start(*target); {
	case errors.Is(err, warmup.ErrPreviewsDisabled):
		writeJSONError(w, err.Error(), http.StatusForbidden)
		return
	case errors.Is(err, warmup.ErrBusy):
		writeJSONError(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		logging.Error("Failed to start warmup of %s: %v", name, err)
		writeJSONError(w, "failed to start warmup", http.StatusInternalServerError)
		return
	}

	logging.Info("Preview warmup of mount %s started", name)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, h.warmer.Status())
}

// WarmupStatus reports the running or last warmup.
func (h *Handlers) WarmupStatus(w http.ResponseWriter, _ *http.Request) {
	if h.warmer == nil {
		writeJSONError(w, "warmup is not configured", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.warmer.Status())
}
