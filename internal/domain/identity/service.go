package identity

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/simplesocial/social-server/internal/utils/platformerrors"
)

const (
	tokenTypeBearer = "bearer"

	// bcrypt rejects passwords longer than this.
	maxPasswordBytes = 72
)

// LocalProvider implements Provider on top of the local user table.
type LocalProvider struct {
	users             UserStore
	tokens            TokenIssuer
	minPasswordLength int
	bcryptCost        int
	now               func() time.Time
	log               zerolog.Logger
}

// LocalOption customizes a LocalProvider.
type LocalOption func(*LocalProvider)

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) LocalOption {
	return func(p *LocalProvider) { p.bcryptCost = cost }
}

func NewLocalProvider(users UserStore, tokens TokenIssuer, minPasswordLength int, log zerolog.Logger, opts ...LocalOption) *LocalProvider {
	p := &LocalProvider{
		users:             users,
		tokens:            tokens,
		minPasswordLength: minPasswordLength,
		bcryptCost:        bcrypt.DefaultCost,
		now:               time.Now,
		log:               log.With().Str("component", "identity-provider").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register creates a new active account.
func (p *LocalProvider) Register(ctx context.Context, email, password string) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"invalid email address", err, "5f0c9a51-8d7e-4c1a-9b2f-3e6d7a8c9b01")
	}
	if len(password) < p.minPasswordLength {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"password is too short", nil, "6a1d0b62-9e8f-4d2b-8c3a-4f7e8b9d0c12")
	}
	if len(password) > maxPasswordBytes {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"password is too long", nil, "b3e8c1f6-4a2d-4f9b-8e1c-0d7a5b6c9e23")
	}

	existing, err := p.users.GetByEmail(ctx, email)
	if err != nil && !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"REGISTER_USER_ALREADY_EXISTS", nil, "7b2e1c73-0f9a-4e3c-9d4b-5a8f9c0e1d23")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to hash password", err, "8c3f2d84-1a0b-4f4d-8e5c-6b9a0d1f2e34")
	}

	user := &User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: string(hash),
		IsActive:       true,
		CreatedAt:      p.now().UTC(),
	}
	if err := p.users.Create(ctx, user); err != nil {
		return nil, err
	}

	p.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues a bearer token.
func (p *LocalProvider) Login(ctx context.Context, email, password string) (*Token, error) {
	badCredentials := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
		"LOGIN_BAD_CREDENTIALS", nil, "9d4a3e95-2b1c-4a5e-9f6d-7c0b1e2a3f45")

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, badCredentials
	}

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, badCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, badCredentials
	}
	if !user.IsActive {
		return nil, badCredentials
	}

	signed, err := p.tokens.Issue(user)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to issue token", err, "0e5b4fa6-3c2d-4b6f-8a7e-8d1c2f3b4a56")
	}
	return &Token{AccessToken: signed, TokenType: tokenTypeBearer}, nil
}

// CurrentUser resolves the account behind a bearer token.
func (p *LocalProvider) CurrentUser(ctx context.Context, bearerToken string) (*User, error) {
	claims, err := p.tokens.Verify(bearerToken)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
			"invalid token", err, "1f6c5ab7-4d3e-4c7a-9b8f-9e2d3a4c5b67")
	}

	user, err := p.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
				"unknown user", err, "2a7d6bc8-5e4f-4d8b-8c9a-0f3e4b5d6c78")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
			"inactive user", nil, "3b8e7cd9-6f5a-4e9c-9d0b-1a4f5c6e7d89")
	}
	return user, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(addr.Address), nil
}

var _ Provider = (*LocalProvider)(nil)
