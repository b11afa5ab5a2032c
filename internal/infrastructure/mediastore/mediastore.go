// Package mediastore holds the media store backends posts are uploaded to.
package mediastore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/domain/post"
)

// New builds the media store selected by MEDIA_STORE_BACKEND.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (post.MediaStore, error) {
	var (
		store post.MediaStore
		err   error
	)
	switch cfg.MediaStoreBackend {
	case config.MediaBackendImageKit:
		store, err = NewImageKitStore(cfg, log)
	case config.MediaBackendS3:
		store, err = NewS3Store(ctx, cfg, log)
	case config.MediaBackendLocal:
		store, err = NewLocalStore(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported media store backend %q", cfg.MediaStoreBackend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// HealthChecker is implemented by backends that can verify they are usable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Check runs the store's health check when the backend has one.
func Check(ctx context.Context, store post.MediaStore) error {
	if hc, ok := store.(HealthChecker); ok {
		return hc.Health(ctx)
	}
	return nil
}

// StaticDir returns the directory to serve under /media, or "" when the
// backend hosts its own files.
func StaticDir(store post.MediaStore) string {
	if local, ok := store.(*LocalStore); ok {
		return local.BasePath()
	}
	return ""
}

var (
	_ HealthChecker = (*LocalStore)(nil)
	_ HealthChecker = (*S3Store)(nil)
)
