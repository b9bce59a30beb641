package startup

import (
	"errors"
	"fmt"
	"os"

	"media-preview/internal/logging"
)

// ensureDirectory creates path if it is missing and fails if it exists as
// something other than a directory.
func ensureDirectory(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat %s: %w", path, err)
	case !info.IsDir():
		return fmt.Errorf("%s exists but is not a directory", path)
	}
	return nil
}

// ensureWritable is ensureDirectory plus a write probe.
func ensureWritable(dir string) error {
	if err := ensureDirectory(dir); err != nil {
		return err
	}

	probe, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		logging.Warn("failed to remove write test file %s: %v", name, err)
	}
	return nil
}

func logMediaContents(dir string) {
	if !logging.IsDebugEnabled() {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var files, dirs int
	for _, e := range entries {
		switch {
		case e.IsDir():
			dirs++
		default:
			files++
		}
	}
	logging.Debug("    Media contents: %d files, %d directories (top level)", files, dirs)
}
