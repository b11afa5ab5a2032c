package identity

import "time"

// User is an account known to the identity provider.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	IsSuperuser    bool      `json:"is_superuser"`
	IsVerified     bool      `json:"is_verified"`
	CreatedAt      time.Time `json:"-"`
}

// Token is the bearer token issued on login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Claims are the identity facts carried by a verified bearer token.
type Claims struct {
	Subject string
	Email   string
}
