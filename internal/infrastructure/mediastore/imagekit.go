package mediastore

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/domain/post"
	"github.com/simplesocial/social-server/internal/infrastructure/metrics"
)

// ImageKitStore uploads media to ImageKit's upload API.
type ImageKitStore struct {
	client    *resty.Client
	uploadURL string
	folder    string
	log       zerolog.Logger
}

type imageKitUploadResponse struct {
	FileID string `json:"fileId"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

func NewImageKitStore(cfg *config.Config, log zerolog.Logger) (*ImageKitStore, error) {
	if strings.TrimSpace(cfg.ImageKitPrivateKey) == "" {
		return nil, fmt.Errorf("IMAGEKIT_PRIVATE_KEY is required for the imagekit media store")
	}

	client := resty.New().
		SetTimeout(cfg.MediaStoreTimeout).
		SetBasicAuth(cfg.ImageKitPrivateKey, "").
		SetHeader("Accept", "application/json")

	store := &ImageKitStore{
		client:    client,
		uploadURL: strings.TrimSpace(cfg.ImageKitUploadURL),
		folder:    cfg.ImageKitFolder,
		log:       log.With().Str("component", "imagekit-store").Logger(),
	}
	store.log.Info().Str("upload_url", store.uploadURL).Msg("imagekit media store initialized")
	return store, nil
}

func (s *ImageKitStore) Backend() string {
	return config.MediaBackendImageKit
}

// Upload posts the file as multipart form data. A non-2xx reply is reported
// through MediaResult.StatusCode rather than an error.
func (s *ImageKitStore) Upload(ctx context.Context, upload post.MediaUpload) (*post.MediaResult, error) {
	start := time.Now()

	form := map[string]string{
		"fileName":          upload.FileName,
		"useUniqueFileName": "false",
	}
	if len(upload.Tags) > 0 {
		form["tags"] = strings.Join(upload.Tags, ",")
	}
	if s.folder != "" {
		form["folder"] = s.folder
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetMultipartField("file", upload.FileName, upload.ContentType, upload.Body).
		SetMultipartFormData(form).
		SetResult(&imageKitUploadResponse{}).
		Post(s.uploadURL)
	if err != nil {
		metrics.RecordMediaStoreOperation(s.Backend(), "upload", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("imagekit upload: %w", err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		metrics.RecordMediaStoreOperation(s.Backend(), "upload", "rejected", time.Since(start).Seconds())
		s.log.Warn().
			Int("status", resp.StatusCode()).
			Str("body", truncate(resp.String(), 512)).
			Msg("imagekit rejected upload")
		return &post.MediaResult{StatusCode: resp.StatusCode()}, nil
	}

	out, _ := resp.Result().(*imageKitUploadResponse)
	if out == nil {
		out = &imageKitUploadResponse{}
	}
	metrics.RecordMediaStoreOperation(s.Backend(), "upload", "success", time.Since(start).Seconds())
	s.log.Debug().Str("file_id", out.FileID).Str("name", out.Name).Msg("uploaded to imagekit")

	return &post.MediaResult{
		StatusCode: resp.StatusCode(),
		URL:        out.URL,
		Name:       out.Name,
		FileID:     out.FileID,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ post.MediaStore = (*ImageKitStore)(nil)
