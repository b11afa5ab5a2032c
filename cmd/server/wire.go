//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/domain/identity"
	"github.com/simplesocial/social-server/internal/domain/post"
	"github.com/simplesocial/social-server/internal/infrastructure/logger"
	"github.com/simplesocial/social-server/internal/infrastructure/mediastore"
	postrepo "github.com/simplesocial/social-server/internal/infrastructure/repository/post"
	userrepo "github.com/simplesocial/social-server/internal/infrastructure/repository/user"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/handlers"
)

var repositorySet = wire.NewSet(
	userrepo.NewRepository,
	postrepo.NewRepository,
	wire.Bind(new(identity.UserStore), new(*userrepo.Repository)),
	wire.Bind(new(post.UserDirectory), new(*userrepo.Repository)),
	wire.Bind(new(post.Repository), new(*postrepo.Repository)),
)

var serviceSet = wire.NewSet(
	post.NewService,
	post.NewFeedService,
	wire.Bind(new(handlers.PostService), new(*post.Service)),
	wire.Bind(new(handlers.FeedService), new(*post.FeedService)),
)

// BuildApplication assembles the service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		repositorySet,
		newIdentityProvider,
		mediastore.New,
		serviceSet,
		handlers.NewProvider,
		newReadinessCheck,
		newMediaDir,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}
