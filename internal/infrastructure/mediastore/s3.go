package mediastore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/domain/post"
	"github.com/simplesocial/social-server/internal/infrastructure/metrics"
)

// S3Store uploads media to an S3-compatible bucket.
type S3Store struct {
	bucket     string
	publicBase string
	client     *s3.Client
	log        zerolog.Logger
}

func NewS3Store(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Store, error) {
	logger := log.With().Str("component", "s3-store").Logger()

	bucket := strings.TrimSpace(cfg.S3Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("MEDIA_S3_BUCKET is required for the s3 media store")
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	store := &S3Store{
		bucket:     bucket,
		publicBase: publicBaseURL(cfg, bucket),
		client:     client,
		log:        logger,
	}
	logger.Info().Str("bucket", bucket).Str("public_base", store.publicBase).Msg("s3 media store initialized")
	return store, nil
}

func (s *S3Store) Backend() string {
	return config.MediaBackendS3
}

func (s *S3Store) Upload(ctx context.Context, upload post.MediaUpload) (*post.MediaResult, error) {
	start := time.Now()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(upload.FileName),
		Body:        upload.Body,
		ContentType: aws.String(upload.ContentType),
	}
	if upload.Size > 0 {
		input.ContentLength = aws.Int64(upload.Size)
	}
	if len(upload.Tags) > 0 {
		input.Tagging = aws.String(url.Values{"tags": {strings.Join(upload.Tags, ",")}}.Encode())
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		metrics.RecordMediaStoreOperation(s.Backend(), "upload", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("s3 put object: %w", err)
	}
	metrics.RecordMediaStoreOperation(s.Backend(), "upload", "success", time.Since(start).Seconds())

	fileID := upload.FileName
	if out.ETag != nil {
		fileID = strings.Trim(*out.ETag, `"`)
	}

	return &post.MediaResult{
		StatusCode: http.StatusOK,
		URL:        s.publicBase + "/" + url.PathEscape(upload.FileName),
		Name:       upload.FileName,
		FileID:     fileID,
	}, nil
}

// Health checks that the bucket is reachable.
func (s *S3Store) Health(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

func publicBaseURL(cfg *config.Config, bucket string) string {
	endpoint := strings.TrimSuffix(cfg.S3PublicEndpoint, "/")
	if endpoint == "" {
		endpoint = strings.TrimSuffix(cfg.S3Endpoint, "/")
	}
	if endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.S3Region)
	}
	return endpoint + "/" + bucket
}

var _ post.MediaStore = (*S3Store)(nil)
