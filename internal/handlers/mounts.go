package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"media-preview/internal/database"
	"media-preview/internal/logging"

	"github.com/gorilla/mux"
)

// ListMounts returns every mount.
func (h *Handlers) ListMounts(w http.ResponseWriter, r *http.Request) {
	if h.mounts == nil {
		writeJSONError(w, "mount storage is not configured", http.StatusServiceUnavailable)
		return
	}

	mounts, err := h.mounts.ListMounts(r.Context())
	if err != nil {
		logging.Error("Failed to list mounts: %v", err)
		writeJSONError(w, "failed to list mounts", http.StatusInternalServerError)
		return
	}
	if mounts == nil {
		mounts = []database.Mount{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, mounts)
}

type setPreviewsRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetMountPreviews toggles previews for the mount named in the route.
func (h *Handlers) SetMountPreviews(w http.ResponseWriter, r *http.Request) {
	if h.mounts == nil {
		writeJSONError(w, "mount storage is not configured", http.StatusServiceUnavailable)
		return
	}

	var req setPreviewsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil || req.Enabled == nil {
		writeJSONError(w, `body must be {"enabled": true|false}`, http.StatusBadRequest)
		return
	}

	name := mux.Vars(r)["name"]
	if err := h.mounts.SetPreviewsEnabled(r.Context(), name, *req.Enabled); err != nil {
		if errors.Is(err, database.ErrMountNotFound) {
			writeJSONError(w, "mount not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to update mount %s: %v", name, err)
		writeJSONError(w, "failed to update mount", http.StatusInternalServerError)
		return
	}

	logging.Info("Previews on mount %s set to %v", name, *req.Enabled)
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{"name": name, "previewsEnabled": *req.Enabled})
}
