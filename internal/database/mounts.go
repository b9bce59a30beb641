package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrMountNotFound is returned when no mount has the requested name.
var ErrMountNotFound = errors.New("mount not found")

// Mount is a storage root whose files may get previews.
type Mount struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Root            string    `json:"root"`
	PreviewsEnabled bool      `json:"previewsEnabled"`
	CreatedAt       time.Time `json:"createdAt"`
}

func cleanRoot(root string) string {
	return filepath.Clean(root)
}

// UpsertMount creates the mount or updates its root and preview flag.
func (d *Database) UpsertMount(ctx context.Context, name, root string, previewsEnabled bool) (err error) {
	start := time.Now()
	defer func() { recordQuery("upsert_mount", start, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("mount name is required")
	}
	if !filepath.IsAbs(root) {
		return fmt.Errorf("mount root must be absolute: %q", root)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
	INSERT INTO mounts (name, root, previews_enabled)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		root = excluded.root,
		previews_enabled = excluded.previews_enabled,
		updated_at = strftime('%s', 'now')
	`, name, cleanRoot(root), previewsEnabled)
	return err
}

// ListMounts returns every mount ordered by name.
func (d *Database) ListMounts(ctx context.Context) (mounts []Mount, err error) {
	start := time.Now()
	defer func() { recordQuery("list_mounts", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
	SELECT id, name, root, previews_enabled, created_at
	FROM mounts ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		m, scanErr := scanMount(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		mounts = append(mounts, *m)
	}
	err = rows.Err()
	return mounts, err
}

// MountForPath returns the mount with the longest root containing path, or
// nil when path is on no mount.
func (d *Database) MountForPath(ctx context.Context, path string) (mount *Mount, err error) {
	start := time.Now()
	defer func() { recordQuery("mount_for_path", start, err) }()

	path = filepath.Clean(path)

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Prefix filtering happens in Go: LIKE treats '_' and '%' in roots as
	// wildcards.
	rows, err := d.db.QueryContext(ctx, `
	SELECT id, name, root, previews_enabled, created_at
	FROM mounts ORDER BY length(root) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		m, scanErr := scanMount(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		if within(m.Root, path) {
			return m, nil
		}
	}
	err = rows.Err()
	return nil, err
}

// within reports whether path is root or below it.
func within(root, path string) bool {
	if root == path {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(path, root)
}

// SetPreviewsEnabled toggles previews for the named mount.
func (d *Database) SetPreviewsEnabled(ctx context.Context, name string, enabled bool) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_previews_enabled", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx, `
	UPDATE mounts SET previews_enabled = ?, updated_at = strftime('%s', 'now')
	WHERE name = ?
	`, enabled, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrMountNotFound, name)
	}
	return nil
}

// CountMounts returns how many mounts have previews enabled and disabled.
func (d *Database) CountMounts(ctx context.Context) (enabled, disabled int, err error) {
	mounts, err := d.ListMounts(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, m := range mounts {
		if m.PreviewsEnabled {
			enabled++
		} else {
			disabled++
		}
	}
	return enabled, disabled, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMount(s scanner) (*Mount, error) {
	var m Mount
	var createdAt int64
	if err := s.Scan(&m.ID, &m.Name, &m.Root, &m.PreviewsEnabled, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMountNotFound
		}
		return nil, err
	}
	m.CreatedAt = time.Unix(createdAt, 0)
	return &m, nil
}
