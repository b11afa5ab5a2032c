package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/simplesocial/social-server/internal/domain/identity"
	"github.com/simplesocial/social-server/internal/domain/post"
	"github.com/simplesocial/social-server/internal/infrastructure/database/entities"
	"github.com/simplesocial/social-server/internal/utils/platformerrors"
)

// Repository persists user accounts. It backs both the identity provider and
// the feed's author lookup.
type Repository struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewRepository(db *gorm.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "user-repository").Logger(),
	}
}

func (r *Repository) Create(ctx context.Context, u *identity.User) error {
	entity := toEntity(u)
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		if isDuplicate(err) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"REGISTER_USER_ALREADY_EXISTS",
				err,
				"b8d1f4a7-9c2e-4a5b-8d8f-0e3a6b9c2d5f",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create user",
			err,
			"c9e2a5b8-0d3f-4b6c-9e9a-1f4b7c0d3e6a",
		)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// Upsert inserts the user or refreshes the email of an existing row with the
// same id. Used for accounts minted by an external issuer. An email already
// held by another account never blocks the caller: new rows fall back to the
// id as their email and existing rows keep the email they have.
func (r *Repository) Upsert(ctx context.Context, u *identity.User) (*identity.User, error) {
	existing, err := r.GetByID(ctx, u.ID)
	if err != nil && !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, err
	}
	if existing == nil {
		return r.insertExternal(ctx, u)
	}

	if u.Email == "" || u.Email == existing.Email {
		return existing, nil
	}
	err = r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", u.ID).Update("email", u.Email).Error
	if err != nil && isDuplicate(err) {
		r.log.Warn().Str("user_id", u.ID).Msg("email claim belongs to another account, keeping stored email")
		return existing, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update user",
			err,
			"d0f3b6c9-1e4a-4c7d-8f0b-2a5c8d1e4f7b",
		)
	}
	existing.Email = u.Email
	return existing, nil
}

func (r *Repository) insertExternal(ctx context.Context, u *identity.User) (*identity.User, error) {
	err := r.Create(ctx, u)
	if platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
		// A concurrent request for the same subject may have inserted it first.
		if existing, getErr := r.GetByID(ctx, u.ID); getErr == nil {
			return existing, nil
		}
		if u.Email != u.ID {
			r.log.Warn().Str("user_id", u.ID).Msg("email claim belongs to another account, using subject as email")
			fallback := *u
			fallback.Email = u.ID
			fallback.IsVerified = false
			err = r.Create(ctx, &fallback)
		}
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, u.ID)
}

// ListAuthors returns the id and email of every user.
func (r *Repository) ListAuthors(ctx context.Context) ([]post.Author, error) {
	var rows []entities.User
	if err := r.db.WithContext(ctx).Select("id", "email").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list users",
			err,
			"e1a4c7d0-2f5b-4d8e-9a1c-3b6d9e2f5a8c",
		)
	}
	authors := make([]post.Author, 0, len(rows))
	for _, row := range rows {
		authors = append(authors, post.Author{ID: row.ID, Email: row.Email})
	}
	return authors, nil
}

func (r *Repository) findOne(ctx context.Context, query string, arg string) (*identity.User, error) {
	var entity entities.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"user not found",
				err,
				"f2b5d8e1-3a6c-4e9f-8b2d-4c7e0f3a6b9d",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get user",
			err,
			"a3c6e9f2-4b7d-4f0a-9c3e-5d8f1a4b7c0e",
		)
	}
	u := fromEntity(entity)
	return &u, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func toEntity(u *identity.User) entities.User {
	return entities.User{
		ID:             u.ID,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		IsActive:       u.IsActive,
		IsSuperuser:    u.IsSuperuser,
		IsVerified:     u.IsVerified,
		CreatedAt:      u.CreatedAt,
	}
}

func fromEntity(entity entities.User) identity.User {
	return identity.User{
		ID:             entity.ID,
		Email:          entity.Email,
		HashedPassword: entity.HashedPassword,
		IsActive:       entity.IsActive,
		IsSuperuser:    entity.IsSuperuser,
		IsVerified:     entity.IsVerified,
		CreatedAt:      entity.CreatedAt.UTC(),
	}
}

var (
	_ identity.UserStore = (*Repository)(nil)
	_ post.UserDirectory = (*Repository)(nil)
)
