package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Auth modes.
const (
	AuthModeLocal = "local"
	AuthModeJWKS  = "jwks"
)

// Media store backends.
const (
	MediaBackendImageKit = "imagekit"
	MediaBackendS3       = "s3"
	MediaBackendLocal    = "local"
)

// Config holds the environment driven configuration for the social service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"simple-social"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	LogPIILevel     string        `env:"LOG_PII_LEVEL" envDefault:"hashed"` // Options: "none", "hashed" or "full"
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database. postgres:// and sqlite:// URLs are supported.
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"sqlite://social.db"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Authentication
	AuthMode              string        `env:"AUTH_MODE" envDefault:"local"` // Options: "local" or "jwks"
	AuthJWTSecret         string        `env:"AUTH_JWT_SECRET"`
	AuthTokenTTL          time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"1h"`
	AuthIssuer            string        `env:"AUTH_ISSUER" envDefault:"simple-social"`
	AuthAudience          string        `env:"AUTH_AUDIENCE" envDefault:"simple-social:auth"`
	AuthJWKSURL           string        `env:"AUTH_JWKS_URL"`
	AuthMinPasswordLength int           `env:"AUTH_MIN_PASSWORD_LENGTH" envDefault:"3"`

	// Media Store Selection
	MediaStoreBackend string        `env:"MEDIA_STORE_BACKEND" envDefault:"imagekit"` // Options: "imagekit", "s3" or "local"
	MediaUploadTag    string        `env:"MEDIA_UPLOAD_TAG" envDefault:"backend-upload"`
	MediaStoreTimeout time.Duration `env:"MEDIA_STORE_TIMEOUT" envDefault:"30s"`
	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES" envDefault:"104857600"`
	UploadTempDir     string        `env:"UPLOAD_TEMP_DIR"`

	// ImageKit
	ImageKitPrivateKey string `env:"IMAGEKIT_PRIVATE_KEY"`
	ImageKitUploadURL  string `env:"IMAGEKIT_UPLOAD_URL" envDefault:"https://upload.imagekit.io/api/v1/files/upload"`
	ImageKitFolder     string `env:"IMAGEKIT_FOLDER" envDefault:"/"`

	// S3 Storage Configuration
	S3Endpoint       string `env:"MEDIA_S3_ENDPOINT"`
	S3PublicEndpoint string `env:"MEDIA_S3_PUBLIC_ENDPOINT"`
	S3Region         string `env:"MEDIA_S3_REGION" envDefault:"us-east-1"`
	S3Bucket         string `env:"MEDIA_S3_BUCKET"`
	S3AccessKeyID    string `env:"MEDIA_S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"MEDIA_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle   bool   `env:"MEDIA_S3_USE_PATH_STYLE" envDefault:"true"`

	// Local Storage Configuration
	LocalStoragePath    string `env:"MEDIA_LOCAL_STORAGE_PATH" envDefault:"./media-data"`
	LocalStorageBaseURL string `env:"MEDIA_LOCAL_STORAGE_BASE_URL" envDefault:"http://localhost:8000/media"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.AuthMode = strings.ToLower(strings.TrimSpace(c.AuthMode))
	c.MediaStoreBackend = strings.ToLower(strings.TrimSpace(c.MediaStoreBackend))
	c.S3Bucket = strings.TrimSpace(c.S3Bucket)
	c.S3AccessKeyID = strings.TrimSpace(c.S3AccessKeyID)
	c.S3SecretKey = strings.TrimSpace(c.S3SecretKey)
	c.S3Endpoint = strings.TrimSpace(c.S3Endpoint)
	c.S3PublicEndpoint = strings.TrimSpace(c.S3PublicEndpoint)
	c.ImageKitPrivateKey = strings.TrimSpace(c.ImageKitPrivateKey)

	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 100 * 1024 * 1024
	}
	if c.UploadTempDir == "" {
		c.UploadTempDir = os.TempDir()
	}

	switch c.AuthMode {
	case AuthModeLocal:
		if strings.TrimSpace(c.AuthJWTSecret) == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_MODE is local")
		}
	case AuthModeJWKS:
		if strings.TrimSpace(c.AuthJWKSURL) == "" {
			return fmt.Errorf("AUTH_JWKS_URL is required when AUTH_MODE is jwks")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.AuthMode)
	}

	switch c.MediaStoreBackend {
	case MediaBackendImageKit:
		if c.ImageKitPrivateKey == "" {
			return fmt.Errorf("IMAGEKIT_PRIVATE_KEY is required when MEDIA_STORE_BACKEND is imagekit")
		}
	case MediaBackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("MEDIA_S3_BUCKET is required when MEDIA_STORE_BACKEND is s3")
		}
	case MediaBackendLocal:
		if strings.TrimSpace(c.LocalStoragePath) == "" {
			return fmt.Errorf("MEDIA_LOCAL_STORAGE_PATH is required when MEDIA_STORE_BACKEND is local")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_STORE_BACKEND %q", c.MediaStoreBackend)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
