package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/domain/identity"
	"github.com/simplesocial/social-server/internal/domain/post"
)

// PostService is the subset of post.Service the handlers call.
type PostService interface {
	Upload(ctx context.Context, req post.UploadRequest) (*post.Post, error)
	Get(ctx context.Context, id string) (*post.Post, error)
	Delete(ctx context.Context, id, requesterID string) (*post.DeleteResult, error)
}

// FeedService builds the feed for a requester.
type FeedService interface {
	BuildFeed(ctx context.Context, requesterID string) ([]post.FeedItem, error)
}

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Auth *AuthHandler
	Post *PostHandler
	Feed *FeedHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(cfg *config.Config, identityProvider identity.Provider, posts PostService, feed FeedService, log zerolog.Logger) *Provider {
	return &Provider{
		Auth: NewAuthHandler(identityProvider, log),
		Post: NewPostHandler(posts, cfg.MaxUploadBytes, log),
		Feed: NewFeedHandler(feed, log),
	}
}
