package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/domain/identity"
	"github.com/simplesocial/social-server/internal/domain/post"
	"github.com/simplesocial/social-server/internal/infrastructure/auth"
	"github.com/simplesocial/social-server/internal/infrastructure/database"
	"github.com/simplesocial/social-server/internal/infrastructure/logger"
	"github.com/simplesocial/social-server/internal/infrastructure/mediastore"
	"github.com/simplesocial/social-server/internal/infrastructure/observability"
	postrepo "github.com/simplesocial/social-server/internal/infrastructure/repository/post"
	userrepo "github.com/simplesocial/social-server/internal/infrastructure/repository/user"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/handlers"
)

// @title Simple Social API
// @version 1.0
// @description Media sharing backend: accounts, uploads, feed and owner-only deletes
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	db         *gorm.DB
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, db *gorm.DB, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		db:         db,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	defer func() {
		if err := database.Close(a.db); err != nil {
			a.log.Error().Err(err).Msg("close database")
		}
	}()
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := newGormDB(ctx, newDatabaseConfig(cfg), log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	userRepository := userrepo.NewRepository(db, log)
	postRepository := postrepo.NewRepository(db)

	identityProvider, err := newIdentityProvider(ctx, cfg, userRepository, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize identity provider")
	}

	mediaStore, err := mediastore.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize media store")
	}

	postService := post.NewService(cfg, postRepository, mediaStore, log)
	feedService := post.NewFeedService(postRepository, userRepository, log)
	handlerProvider := handlers.NewProvider(cfg, identityProvider, postService, feedService, log)

	httpServer := httpserver.New(cfg, log, handlerProvider, identityProvider,
		newReadinessCheck(db, mediaStore), newMediaDir(mediaStore))
	app := NewApplication(httpServer, db, log)

	postCount, err := postRepository.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("count posts")
	}

	log.Info().
		Str("auth_mode", cfg.AuthMode).
		Int64("posts", postCount).
		Str("media_backend", mediaStore.Backend()).
		Bool("sqlite", database.IsSQLite(cfg.DatabaseURL)).
		Msg("starting simple-social")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	level := gormlogger.Warn
	if cfg.LogLevel == "debug" {
		level = gormlogger.Info
	}
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        level,
	}
}

func newGormDB(ctx context.Context, dbCfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

// newIdentityProvider selects the account backend. Local mode owns passwords
// and issues its own tokens; jwks mode trusts an external issuer.
func newIdentityProvider(ctx context.Context, cfg *config.Config, users *userrepo.Repository, log zerolog.Logger) (identity.Provider, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWKS:
		jwks, err := auth.FetchJWKS(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("fetch jwks: %w", err)
		}
		return auth.NewJWKSProvider(cfg, jwks, users, log), nil
	default:
		tokens, err := auth.NewTokenService(cfg)
		if err != nil {
			return nil, err
		}
		return identity.NewLocalProvider(users, tokens, cfg.AuthMinPasswordLength, log), nil
	}
}

// newReadinessCheck requires both the database and the media store to respond.
func newReadinessCheck(db *gorm.DB, store post.MediaStore) httpserver.ReadinessCheck {
	return func(ctx context.Context) error {
		if err := database.Ping(ctx, db); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := mediastore.Check(ctx, store); err != nil {
			return fmt.Errorf("media store: %w", err)
		}
		return nil
	}
}

func newMediaDir(store post.MediaStore) httpserver.MediaDir {
	return httpserver.MediaDir(mediastore.StaticDir(store))
}
