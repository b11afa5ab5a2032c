package post

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/utils/platformerrors"
	"github.com/simplesocial/social-server/internal/utils/postid"
)

const deletedMessage = "Post deleted successfully"

// FileTypeFor derives a post's file type from the declared content type.
func FileTypeFor(contentType string) FileType {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/") {
		return FileTypeVideo
	}
	return FileTypeImage
}

// Service handles the post lifecycle: upload, lookup and owner-only deletion.
type Service struct {
	repo      Repository
	media     MediaStore
	tempDir   string
	maxBytes  int64
	uploadTag string
	log       zerolog.Logger
}

func NewService(cfg *config.Config, repo Repository, media MediaStore, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		media:     media,
		tempDir:   cfg.UploadTempDir,
		maxBytes:  cfg.MaxUploadBytes,
		uploadTag: cfg.MediaUploadTag,
		log:       log.With().Str("component", "post-service").Logger(),
	}
}

// Upload stages the payload in a temporary file, forwards it to the media
// store and records the post once the store confirms success. The staged file
// is removed on every path.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*Post, error) {
	if req.Body == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"file is required", nil, "4c9f8dea-7a6b-4f0d-8e1c-2b5a6d7f8e90")
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	staged, err := os.CreateTemp(s.tempDir, "upload-*"+ext)
	if err != nil {
		return nil, internalError(ctx, "failed to stage upload", err, "5d0a9efb-8b7c-4a1e-9f2d-3c6b7e8a9f01")
	}
	defer func() {
		if closeErr := staged.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			s.log.Warn().Err(closeErr).Msg("close staged upload")
		}
		if rmErr := os.Remove(staged.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.log.Warn().Err(rmErr).Str("path", staged.Name()).Msg("remove staged upload")
		}
	}()

	written, err := io.Copy(staged, io.LimitReader(req.Body, s.maxBytes+1))
	if err != nil {
		return nil, internalError(ctx, "failed to stage upload", err, "6e1b0f0c-9c8d-4b2f-8a3e-4d7c8f9b0a12")
	}
	if written == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"file is empty", nil, "7f2c1a1d-0d9e-4c3a-9b4f-5e8d9a0c1b23")
	}
	if written > s.maxBytes {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file exceeds max size of %d bytes", s.maxBytes), nil, "8a3d2b2e-1e0f-4d4b-8c5a-6f9e0b1d2c34")
	}

	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		if contentType, err = sniffContentType(staged); err != nil {
			return nil, internalError(ctx, "failed to detect content type", err, "9b4e3c3f-2f1a-4e5c-9d6b-7a0f1c2e3d45")
		}
	}
	if _, err := staged.Seek(0, io.SeekStart); err != nil {
		return nil, internalError(ctx, "failed to rewind staged upload", err, "0c5f4d4a-3a2b-4f6d-8e7c-8b1a2d3f4e56")
	}

	storageName := uuid.NewString() + ext
	result, err := s.media.Upload(ctx, MediaUpload{
		Body:        staged,
		Size:        written,
		FileName:    storageName,
		ContentType: contentType,
		Tags:        []string{s.uploadTag},
	})
	if err != nil {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"media upload failed", err, "1d6a5e5b-4b3c-4a7e-9f8d-9c2b3e4a5f67",
			map[string]any{"backend": s.media.Backend()})
	}
	if !succeeded(result) {
		status := 0
		if result != nil {
			status = result.StatusCode
		}
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"media upload failed", nil, "2e7b6f6c-5c4d-4b8f-8a9e-0d3c4f5b6a78",
			map[string]any{"backend": s.media.Backend(), "status_code": status})
	}

	fileName := result.Name
	if fileName == "" {
		fileName = storageName
	}

	created, err := s.repo.Create(ctx, &Post{
		UserID:   req.UserID,
		Caption:  req.Caption,
		URL:      result.URL,
		FileType: FileTypeFor(req.ContentType),
		FileName: fileName,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to save post")
	}

	s.log.Info().
		Str("post_id", created.ID).
		Str("user_id", created.UserID).
		Str("file_type", string(created.FileType)).
		Int64("bytes", written).
		Msg("post created")
	return created, nil
}

// Get returns a single post.
func (s *Service) Get(ctx context.Context, id string) (*Post, error) {
	if !postid.IsValid(id) {
		return nil, invalidIDError(ctx, id)
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a post after checking that the requester owns it.
func (s *Service) Delete(ctx context.Context, id, requesterID string) (*DeleteResult, error) {
	if !postid.IsValid(id) {
		return nil, invalidIDError(ctx, id)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.UserID != requesterID {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"You don't have permission to delete this post", nil, "3f8c7a7d-6d5e-4c9a-9b0f-1e4d5a6c7b89",
			map[string]any{"post_id": id, "requester_id": requesterID})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.log.Info().Str("post_id", id).Str("user_id", requesterID).Msg("post deleted")
	return &DeleteResult{Success: true, Message: deletedMessage}, nil
}

func succeeded(result *MediaResult) bool {
	if result == nil || strings.TrimSpace(result.URL) == "" {
		return false
	}
	return result.StatusCode >= 200 && result.StatusCode < 300
}

func sniffContentType(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	return detected.String(), nil
}

func invalidIDError(ctx context.Context, id string) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
		"Invalid post ID", nil, "4a9d8b8e-7e6f-4d0b-8c1a-2f5e6b7d8c90", map[string]any{"post_id": id})
}

func internalError(ctx context.Context, message string, err error, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, message, err, code)
}
