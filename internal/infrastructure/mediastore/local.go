package mediastore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/domain/post"
	"github.com/simplesocial/social-server/internal/infrastructure/metrics"
)

// LocalStore writes media to the local filesystem. The HTTP server exposes the
// directory under /media.
type LocalStore struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
}

func NewLocalStore(cfg *config.Config, log zerolog.Logger) (*LocalStore, error) {
	logger := log.With().Str("component", "local-store").Logger()

	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if basePath == "" {
		return nil, fmt.Errorf("MEDIA_LOCAL_STORAGE_PATH is required for the local media store")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	store := &LocalStore{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(strings.TrimSpace(cfg.LocalStorageBaseURL), "/"),
		log:      logger,
	}
	logger.Info().Str("path", basePath).Str("base_url", store.baseURL).Msg("local media store initialized")
	return store, nil
}

func (l *LocalStore) Backend() string {
	return config.MediaBackendLocal
}

// BasePath is the directory media files are written to.
func (l *LocalStore) BasePath() string {
	return l.basePath
}

func (l *LocalStore) Upload(ctx context.Context, upload post.MediaUpload) (*post.MediaResult, error) {
	start := time.Now()

	name := filepath.Base(filepath.Clean("/" + upload.FileName))
	if name == "/" || name == "." {
		return nil, fmt.Errorf("invalid file name %q", upload.FileName)
	}
	if filepath.Ext(name) == "" {
		if mt := mimetype.Lookup(upload.ContentType); mt != nil {
			name += mt.Extension()
		}
	}
	fullPath := filepath.Join(l.basePath, name)

	written, err := writeFile(ctx, fullPath, upload.Body)
	if err != nil {
		metrics.RecordMediaStoreOperation(l.Backend(), "upload", "error", time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordMediaStoreOperation(l.Backend(), "upload", "success", time.Since(start).Seconds())

	l.log.Debug().Str("name", name).Int64("bytes", written).Msg("file written to local storage")

	return &post.MediaResult{
		StatusCode: http.StatusCreated,
		URL:        l.urlFor(name, fullPath),
		Name:       name,
		FileID:     name,
	}, nil
}

// Health checks that the storage directory is writable.
func (l *LocalStore) Health(ctx context.Context) error {
	testFile := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}

func (l *LocalStore) urlFor(name, fullPath string) string {
	if l.baseURL != "" {
		return l.baseURL + "/" + name
	}
	abs, err := filepath.Abs(fullPath)
	if err != nil {
		abs = fullPath
	}
	return "file://" + filepath.ToSlash(abs)
}

func writeFile(ctx context.Context, path string, body io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(file, body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return written, nil
}

var _ post.MediaStore = (*LocalStore)(nil)
