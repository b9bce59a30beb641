package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"media-preview/internal/logging"
	"media-preview/internal/preview"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, statusCode int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"status": status})
}

// writePreviewError maps preview errors to status codes.
func writePreviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, preview.ErrInvalidArgument):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, preview.ErrNotFound):
		writeJSONError(w, "preview not found", http.StatusNotFound)
	case errors.Is(err, preview.ErrResourceExhausted), errors.Is(err, preview.ErrNoDelegate):
		w.Header().Set("Retry-After", "5")
		writeJSONError(w, "preview generation unavailable, try again later", http.StatusServiceUnavailable)
	default:
		logging.Error("Preview request failed: %v", err)
		writeJSONError(w, "preview generation failed", http.StatusInternalServerError)
	}
}

// isSubPath reports whether path is base or below it.
func isSubPath(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
