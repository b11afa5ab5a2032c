package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// User mirrors the server's user payload.
type User struct {
	ID          string `json:"id" yaml:"id"`
	Email       string `json:"email" yaml:"email"`
	IsActive    bool   `json:"is_active" yaml:"is_active"`
	IsSuperuser bool   `json:"is_superuser" yaml:"is_superuser"`
	IsVerified  bool   `json:"is_verified" yaml:"is_verified"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Post is a created post as returned by the upload endpoint.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Caption   string    `json:"caption"`
	URL       string    `json:"url"`
	FileType  string    `json:"file_type"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedItem is a post enriched with author email and ownership.
type FeedItem struct {
	Post
	IsOwner bool   `json:"is_owner"`
	Email   string `json:"email"`
}

// DeleteResult confirms a deletion.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// APIError carries a non-2xx response. Detail is the server's error message
// when the body is JSON, otherwise the raw body text.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
}

// APIClient talks to the social server over HTTP. Every call is a single
// request with no retries.
type APIClient struct {
	httpClient *resty.Client
}

// NewAPIClient constructs a client for baseURL.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		httpClient: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Login exchanges credentials for a bearer token.
func (c *APIClient) Login(ctx context.Context, email, password string) (*Token, error) {
	var token Token
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": email,
			"password": password,
		}).
		SetResult(&token).
		Post("/auth/jwt/login")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates an account.
func (c *APIClient) Register(ctx context.Context, email, password string) (*User, error) {
	var user User
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"email":    email,
			"password": password,
		}).
		SetResult(&user).
		Post("/auth/register")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser fetches the user the session token belongs to.
func (c *APIClient) CurrentUser(ctx context.Context, sess *Session) (*User, error) {
	var user User
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeaders(sess.Headers()).
		SetResult(&user).
		Get("/auth/users/me")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &user, nil
}

// Upload sends a media file and caption.
func (c *APIClient) Upload(ctx context.Context, sess *Session, fileName, contentType string, body io.Reader, caption string) (*Post, error) {
	var created Post
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeaders(sess.Headers()).
		SetMultipartField("file", fileName, contentType, body).
		SetMultipartFormData(map[string]string{"caption": caption}).
		SetResult(&created).
		Post("/upload")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &created, nil
}

// Feed fetches every post, newest first.
func (c *APIClient) Feed(ctx context.Context, sess *Session) ([]FeedItem, error) {
	var items []FeedItem
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeaders(sess.Headers()).
		SetResult(&items).
		Get("/feed")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return items, nil
}

// DeletePost removes a post owned by the session user.
func (c *APIClient) DeletePost(ctx context.Context, sess *Session, id string) (*DeleteResult, error) {
	var result DeleteResult
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeaders(sess.Headers()).
		SetPathParam("id", id).
		SetResult(&result).
		Delete("/posts/{id}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() || resp.StatusCode() >= http.StatusMultipleChoices {
		return &APIError{StatusCode: resp.StatusCode(), Detail: errorDetail(resp.Body())}
	}
	return nil
}

func errorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != nil && payload.Error.Message != "" {
			return payload.Error.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response"
	}
	return text
}
