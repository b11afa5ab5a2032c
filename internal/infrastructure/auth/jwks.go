package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/domain/identity"
	"github.com/simplesocial/social-server/internal/utils/platformerrors"
)

// FetchJWKS loads the key set from AUTH_JWKS_URL and keeps it refreshed.
func FetchJWKS(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*keyfunc.JWKS, error) {
	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}
	return keyfunc.Get(cfg.AuthJWKSURL, options)
}

// JWKSProvider accepts RS256 tokens minted by an external issuer. Accounts are
// created on first sight from the token's sub and email claims.
type JWKSProvider struct {
	jwks     *keyfunc.JWKS
	issuer   string
	audience string
	users    identity.UserStore
	log      zerolog.Logger
}

func NewJWKSProvider(cfg *config.Config, jwks *keyfunc.JWKS, users identity.UserStore, log zerolog.Logger) *JWKSProvider {
	return &JWKSProvider{
		jwks:     jwks,
		issuer:   strings.TrimSpace(cfg.AuthIssuer),
		audience: strings.TrimSpace(cfg.AuthAudience),
		users:    users,
		log:      log.With().Str("component", "jwks-provider").Logger(),
	}
}

func (p *JWKSProvider) Register(ctx context.Context, email, password string) (*identity.User, error) {
	return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotImplemented,
		"registration is handled by the external identity provider", nil, "b4d7f0a3-5c8e-4a1b-9d4f-6e9a2b5c8d1f")
}

func (p *JWKSProvider) Login(ctx context.Context, email, password string) (*identity.Token, error) {
	return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotImplemented,
		"login is handled by the external identity provider", nil, "c5e8a1b4-6d9f-4b2c-8e5a-7f0b3c6d9e2a")
}

func (p *JWKSProvider) CurrentUser(ctx context.Context, bearerToken string) (*identity.User, error) {
	claims := &tokenClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}
	if p.audience != "" {
		opts = append(opts, jwt.WithAudience(p.audience))
	}

	token, err := jwt.ParseWithClaims(bearerToken, claims, p.jwks.Keyfunc, opts...)
	if err == nil && (!token.Valid || claims.Subject == "") {
		err = errors.New("token has no subject")
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized,
			"invalid token", err, "d6f9b2c5-7e0a-4c3d-9f6b-8a1c4d7e0f3b")
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	verified := email != ""
	if email == "" {
		email = claims.Subject
	}

	user, err := p.users.Upsert(ctx, &identity.User{
		ID:         claims.Subject,
		Email:      email,
		IsActive:   true,
		IsVerified: verified,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to sync user")
	}
	if !user.IsActive {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized,
			"inactive user", nil, "e7a0c3d6-8f1b-4d4e-8a7c-9b2d5e8f1a4c")
	}
	return user, nil
}

var _ identity.Provider = (*JWKSProvider)(nil)
