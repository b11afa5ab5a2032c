package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/infrastructure/database"
	"github.com/simplesocial/social-server/internal/infrastructure/database/dbtest"
	"github.com/simplesocial/social-server/internal/infrastructure/mediastore"
)

func TestReadinessCheck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "media")
	store, err := mediastore.New(context.Background(), &config.Config{
		MediaStoreBackend: config.MediaBackendLocal,
		LocalStoragePath:  dir,
	}, zerolog.Nop())
	require.NoError(t, err)

	t.Run("ready", func(t *testing.T) {
		ready := newReadinessCheck(dbtest.NewSQLite(t), store)
		assert.NoError(t, ready(context.Background()))
	})

	t.Run("database closed", func(t *testing.T) {
		db := dbtest.NewSQLite(t)
		require.NoError(t, database.Close(db))
		err := newReadinessCheck(db, store)(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database")
	})

	t.Run("media directory gone", func(t *testing.T) {
		ready := newReadinessCheck(dbtest.NewSQLite(t), store)
		require.NoError(t, os.RemoveAll(dir))
		err := ready(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "media store")
	})
}

func TestNewMediaDir(t *testing.T) {
	dir := t.TempDir()
	store, err := mediastore.NewLocalStore(&config.Config{LocalStoragePath: dir}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, dir, string(newMediaDir(store)))
}
