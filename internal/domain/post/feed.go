package post

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/utils/platformerrors"
)

// FeedService assembles the feed from scratch on every request.
type FeedService struct {
	repo  Repository
	users UserDirectory
	log   zerolog.Logger
}

func NewFeedService(repo Repository, users UserDirectory, log zerolog.Logger) *FeedService {
	return &FeedService{
		repo:  repo,
		users: users,
		log:   log.With().Str("component", "feed-service").Logger(),
	}
}

// BuildFeed returns every post, newest first, tagged with the author's email
// and whether requesterID owns it.
func (s *FeedService) BuildFeed(ctx context.Context, requesterID string) ([]FeedItem, error) {
	posts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list posts")
	}

	authors, err := s.users.ListAuthors(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list users")
	}

	emails := make(map[string]string, len(authors))
	for _, a := range authors {
		emails[a.ID] = a.Email
	}

	feed := make([]FeedItem, 0, len(posts))
	for _, p := range posts {
		email, ok := emails[p.UserID]
		if !ok {
			email = UnknownAuthor
		}
		feed = append(feed, FeedItem{
			Post:    *p,
			IsOwner: p.UserID == requesterID,
			Email:   email,
		})
	}

	s.log.Debug().Int("posts", len(feed)).Str("requester_id", requesterID).Msg("feed built")
	return feed, nil
}
