package post

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/simplesocial/social-server/internal/domain/post"
	"github.com/simplesocial/social-server/internal/infrastructure/database/entities"
	"github.com/simplesocial/social-server/internal/utils/platformerrors"
	"github.com/simplesocial/social-server/internal/utils/postid"
)

// Repository handles post persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	entity := entities.Post{
		ID:        p.ID,
		UserID:    p.UserID,
		Caption:   p.Caption,
		URL:       p.URL,
		FileType:  string(p.FileType),
		FileName:  p.FileName,
		CreatedAt: p.CreatedAt,
	}
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	if entity.ID == "" {
		entity.ID = postid.NewAt(entity.CreatedAt)
	}

	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create post",
			err,
			"a1c4e7f0-2b5d-4f8a-9c1e-3d6f9a2b5c8e",
		)
	}

	created := mapEntity(entity)
	return &created, nil
}

// ListAll returns every post, newest first. Ids are monotonic, so ties on
// created_at resolve to insertion order.
func (r *Repository) ListAll(ctx context.Context) ([]*domain.Post, error) {
	var rows []entities.Post
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list posts",
			err,
			"b2d5f8a1-3c6e-4a9b-8d2f-4e7a0b3c6d9f",
		)
	}

	posts := make([]*domain.Post, 0, len(rows))
	for _, row := range rows {
		p := mapEntity(row)
		posts = append(posts, &p)
	}
	return posts, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var entity entities.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewErrorWithContext(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"Post not found",
				err,
				"c3e6a9b2-4d7f-4b0c-9e3a-5f8b1c4d7e0a",
				map[string]any{"post_id": id},
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get post",
			err,
			"d4f7b0c3-5e8a-4c1d-8f4b-6a9c2d5e8f1b",
		)
	}
	p := mapEntity(entity)
	return &p, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Post{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete post",
			result.Error,
			"e5a8c1d4-6f9b-4d2e-9a5c-7b0d3e6f9a2c",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewErrorWithContext(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"Post not found",
			nil,
			"f6b9d2e5-7a0c-4e3f-8b6d-8c1e4f7a0b3d",
			map[string]any{"post_id": id},
		)
	}
	return nil
}

// Count returns the number of stored posts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Post{}).Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count posts",
			err,
			"a7c0e3f6-8b1d-4f4a-9c7e-9d2f5a8b1c4e",
		)
	}
	return count, nil
}

func mapEntity(entity entities.Post) domain.Post {
	return domain.Post{
		ID:        entity.ID,
		UserID:    entity.UserID,
		Caption:   entity.Caption,
		URL:       entity.URL,
		FileType:  domain.FileType(entity.FileType),
		FileName:  entity.FileName,
		CreatedAt: entity.CreatedAt.UTC(),
	}
}

var _ domain.Repository = (*Repository)(nil)
