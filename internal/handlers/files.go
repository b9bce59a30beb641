package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"

	"media-preview/internal/filesystem"
	"media-preview/internal/logging"
	"media-preview/internal/mediatypes"
	"media-preview/internal/preview"

	"github.com/gorilla/mux"
)

var (
	errBadPath   = errors.New("invalid path")
	errNoFile    = errors.New("file not found")
	errDirectory = errors.New("path is a directory")
)

// resolveFile turns the {path} route variable into a preview.File, including
// its detected mimetype and the mount it lives on.
func (h *Handlers) resolveFile(r *http.Request) (preview.File, error) {
	rel := mux.Vars(r)["path"]
	if rel == "" {
		return preview.File{}, errBadPath
	}

	absMediaDir, err := filepath.Abs(h.mediaDir)
	if err != nil {
		return preview.File{}, fmt.Errorf("resolve media dir: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(absMediaDir, filepath.FromSlash(rel)))
	if err != nil || !isSubPath(absMediaDir, absPath) {
		return preview.File{}, errBadPath
	}

	info, err := filesystem.Stat(r.Context(), absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return preview.File{}, errNoFile
		}
		return preview.File{}, err
	}
	if info.IsDir() {
		return preview.File{}, errDirectory
	}

	file := preview.File{
		ID:       filepath.ToSlash(rel),
		Name:     info.Name(),
		Path:     absPath,
		MimeType: mediatypes.Detect(absPath),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}

	if h.mounts != nil {
		m, err := h.mounts.MountForPath(r.Context(), absPath)
		if err != nil {
			logging.Warn("Mount lookup for %s failed: %v", absPath, err)
		} else if m != nil {
			file.Mount = &preview.Mount{
				Name:            m.Name,
				Root:            m.Root,
				PreviewsEnabled: m.PreviewsEnabled,
			}
		}
	}

	return file, nil
}

// writeFileError reports a resolveFile failure.
func writeFileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadPath), errors.Is(err, errDirectory):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errNoFile):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	default:
		logging.Error("Failed to access file: %v", err)
		writeJSONError(w, "failed to access file", http.StatusInternalServerError)
	}
}
