package responses

import (
	"time"

	"github.com/simplesocial/social-server/internal/domain/identity"
	"github.com/simplesocial/social-server/internal/domain/post"
)

type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	IsVerified  bool   `json:"is_verified"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type PostResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Caption   string    `json:"caption"`
	URL       string    `json:"url"`
	FileType  string    `json:"file_type"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedItemResponse struct {
	PostResponse
	IsOwner bool   `json:"is_owner"`
	Email   string `json:"email"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func MapUser(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		IsVerified:  u.IsVerified,
	}
}

func MapToken(t *identity.Token) TokenResponse {
	return TokenResponse{AccessToken: t.AccessToken, TokenType: t.TokenType}
}

func MapPost(p *post.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Caption:   p.Caption,
		URL:       p.URL,
		FileType:  string(p.FileType),
		FileName:  p.FileName,
		CreatedAt: p.CreatedAt,
	}
}

// MapFeed always returns a non-nil slice so an empty feed encodes as [].
func MapFeed(items []post.FeedItem) []FeedItemResponse {
	out := make([]FeedItemResponse, 0, len(items))
	for i := range items {
		out = append(out, FeedItemResponse{
			PostResponse: MapPost(&items[i].Post),
			IsOwner:      items[i].IsOwner,
			Email:        items[i].Email,
		})
	}
	return out
}

func MapDelete(r *post.DeleteResult) DeleteResponse {
	return DeleteResponse{Success: r.Success, Message: r.Message}
}
