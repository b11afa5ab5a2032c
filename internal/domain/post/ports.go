package post

import "context"

// Repository defines persistence operations for posts.
type Repository interface {
	// Create persists a new post, filling ID and CreatedAt when unset.
	Create(ctx context.Context, p *Post) (*Post, error)

	// ListAll returns every post ordered by CreatedAt descending. Posts with
	// equal timestamps keep insertion order.
	ListAll(ctx context.Context) ([]*Post, error)

	// GetByID returns a NOT_FOUND platform error when the post is absent.
	GetByID(ctx context.Context, id string) (*Post, error)

	// Delete returns a NOT_FOUND platform error when no post was removed.
	Delete(ctx context.Context, id string) error
}

// UserDirectory lists the users the feed attributes posts to.
type UserDirectory interface {
	ListAuthors(ctx context.Context) ([]Author, error)
}

// MediaStore stores uploaded media and returns an addressable URL.
type MediaStore interface {
	Upload(ctx context.Context, upload MediaUpload) (*MediaResult, error)
	Backend() string
}
