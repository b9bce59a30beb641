package main

import (
	"context"
	"image"
	"path/filepath"
	"testing"

	"media-preview/internal/database"
	"media-preview/internal/media"
	"media-preview/internal/metrics"
	"media-preview/internal/preview"
	"media-preview/internal/semaphore"
	"media-preview/internal/startup"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopProvider struct{}

func (noopProvider) MimeType() string { return "image/png" }
func (noopProvider) Thumbnail(context.Context, preview.File, int, int) (image.Image, error) {
	return image.NewGray(image.Rect(0, 0, 1, 1)), nil
}

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSeedMediaMount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mediaDir := t.TempDir()

	seedMediaMount(ctx, db, mediaDir)
	mounts, err := db.ListMounts(ctx)
	require.NoError(t, err)
	require.Len(t, mounts, 1)
	assert.Equal(t, "media", mounts[0].Name)
	assert.Equal(t, mediaDir, mounts[0].Root)
	assert.True(t, mounts[0].PreviewsEnabled)

	// existing mounts are left alone
	require.NoError(t, db.SetPreviewsEnabled(ctx, "media", false))
	seedMediaMount(ctx, db, t.TempDir())
	mounts, err = db.ListMounts(ctx)
	require.NoError(t, err)
	require.Len(t, mounts, 1)
	assert.False(t, mounts[0].PreviewsEnabled)
}

func TestNewLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		limiter, backend, client := newLimiter(ctx, &startup.Config{})
		assert.IsType(t, &semaphore.Local{}, limiter)
		assert.Equal(t, "local", backend)
		assert.Nil(t, client)
	})

	t.Run("redis", func(t *testing.T) {
		mini := miniredis.RunT(t)
		limiter, backend, client := newLimiter(ctx, &startup.Config{RedisAddr: mini.Addr()})
		require.NotNil(t, client)
		t.Cleanup(func() { client.Close() })
		assert.IsType(t, &semaphore.Redis{}, limiter)
		assert.Equal(t, "redis "+mini.Addr(), backend)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		mini, err := miniredis.Run()
		require.NoError(t, err)
		addr := mini.Addr()
		mini.Close()

		limiter, backend, client := newLimiter(ctx, &startup.Config{RedisAddr: addr})
		assert.IsType(t, &semaphore.Local{}, limiter)
		assert.Contains(t, backend, "redis unavailable")
		assert.Nil(t, client)
	})
}

func TestStatsProvider(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.UpsertMount(ctx, "media", t.TempDir(), true))
	require.NoError(t, db.UpsertMount(ctx, "private", t.TempDir(), false))

	values := startup.NewValues(nil)
	manager := preview.NewManager(values, nil, nil)
	manager.RegisterProvider("image/png", preview.FactoryFunc(func() (preview.Provider, bool) {
		return noopProvider{}, true
	}))
	assert.True(t, manager.IsMimeSupported("image/png"))

	generator := media.NewGenerator(filepath.Join(t.TempDir(), "previews"), manager, values, semaphore.NewLocal())

	sp := &statsProvider{manager: manager, generator: generator, db: db}
	var _ metrics.StatsProvider = sp

	stats := sp.GetStats()
	assert.Equal(t, 1, stats.RegisteredPatterns)
	assert.Equal(t, 1, stats.MimeTypesCached)
	assert.Zero(t, stats.CachedPreviews)
	assert.Equal(t, 1, stats.MountsPreviewsEnabled)
	assert.Equal(t, 1, stats.MountsPreviewsDisabled)
}
