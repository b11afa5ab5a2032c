package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplesocial/social-server/internal/domain/identity"
	"github.com/simplesocial/social-server/internal/infrastructure/database/dbtest"
	"github.com/simplesocial/social-server/internal/infrastructure/repository/user"
	"github.com/simplesocial/social-server/internal/utils/platformerrors"
)

func newUser(email string) *identity.User {
	return &identity.User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: "hash",
		IsActive:       true,
	}
}

func TestCreateAndLookup(t *testing.T) {
	repo := user.NewRepository(dbtest.NewSQLite(t), zerolog.Nop())
	ctx := context.Background()

	alice := newUser("alice@example.com")
	require.NoError(t, repo.Create(ctx, alice))

	byID, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.Equal(t, "hash", byID.HashedPassword)
	assert.True(t, byID.IsActive)

	byEmail, err := repo.GetByEmail(ctx, " Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := user.NewRepository(dbtest.NewSQLite(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("alice@example.com")))
	err := repo.Create(ctx, newUser("alice@example.com"))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))
}

func TestCreateInactiveUser(t *testing.T) {
	repo := user.NewRepository(dbtest.NewSQLite(t), zerolog.Nop())
	ctx := context.Background()

	u := newUser("bob@example.com")
	u.IsActive = false
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestUpsert(t *testing.T) {
	repo := user.NewRepository(dbtest.NewSQLite(t), zerolog.Nop())
	ctx := context.Background()

	u := newUser("carol@example.com")
	inserted, err := repo.Upsert(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, u.ID, inserted.ID)

	updated, err := repo.Upsert(ctx, &identity.User{ID: u.ID, Email: "carol@new.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "carol@new.example.com", updated.Email)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol@new.example.com", got.Email)
	assert.True(t, got.IsActive)
}

func TestUpsertEmailTakenByAnotherAccount(t *testing.T) {
	repo := user.NewRepository(dbtest.NewSQLite(t), zerolog.Nop())
	ctx := context.Background()

	owner := newUser("dana@example.com")
	require.NoError(t, repo.Create(ctx, owner))

	t.Run("new subject falls back to its id", func(t *testing.T) {
		got, err := repo.Upsert(ctx, &identity.User{ID: "ext-new", Email: "dana@example.com", IsActive: true, IsVerified: true})
		require.NoError(t, err)
		assert.Equal(t, "ext-new", got.ID)
		assert.Equal(t, "ext-new", got.Email)
		assert.False(t, got.IsVerified)

		again, err := repo.Upsert(ctx, &identity.User{ID: "ext-new", Email: "dana@example.com", IsActive: true})
		require.NoError(t, err)
		assert.Equal(t, "ext-new", again.Email)
	})

	t.Run("existing subject keeps its email", func(t *testing.T) {
		_, err := repo.Upsert(ctx, &identity.User{ID: "ext-old", Email: "erin@example.com", IsActive: true})
		require.NoError(t, err)

		got, err := repo.Upsert(ctx, &identity.User{ID: "ext-old", Email: "dana@example.com", IsActive: true})
		require.NoError(t, err)
		assert.Equal(t, "erin@example.com", got.Email)

		stored, err := repo.GetByID(ctx, "ext-old")
		require.NoError(t, err)
		assert.Equal(t, "erin@example.com", stored.Email)
	})

	still, err := repo.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", still.Email)
}

func TestListAuthors(t *testing.T) {
	repo := user.NewRepository(dbtest.NewSQLite(t), zerolog.Nop())
	ctx := context.Background()

	authors, err := repo.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Empty(t, authors)

	alice := newUser("alice@example.com")
	bob := newUser("bob@example.com")
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))

	authors, err = repo.ListAuthors(ctx)
	require.NoError(t, err)
	emails := map[string]string{}
	for _, a := range authors {
		emails[a.ID] = a.Email
	}
	assert.Equal(t, map[string]string{alice.ID: "alice@example.com", bob.ID: "bob@example.com"}, emails)
}
