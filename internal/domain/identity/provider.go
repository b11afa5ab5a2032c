package identity

import "context"

// Provider issues and validates user identities. Handlers depend only on this
// interface; the local account store and an external JWKS issuer both satisfy it.
type Provider interface {
	Register(ctx context.Context, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (*Token, error)
	CurrentUser(ctx context.Context, bearerToken string) (*User, error)
}

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Upsert(ctx context.Context, user *User) (*User, error)
}

// TokenIssuer signs and verifies bearer tokens for local accounts.
type TokenIssuer interface {
	Issue(user *User) (string, error)
	Verify(token string) (*Claims, error)
}
