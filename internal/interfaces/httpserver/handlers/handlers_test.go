package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/domain/identity"
	"github.com/simplesocial/social-server/internal/domain/post"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/handlers"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/middlewares"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/routes"
	"github.com/simplesocial/social-server/internal/utils/platformerrors"
)

// MockIdentityProvider is a mock implementation of identity.Provider.
type MockIdentityProvider struct {
	RegisterFunc    func(ctx context.Context, email, password string) (*identity.User, error)
	LoginFunc       func(ctx context.Context, email, password string) (*identity.Token, error)
	CurrentUserFunc func(ctx context.Context, bearerToken string) (*identity.User, error)
}

func (m *MockIdentityProvider) Register(ctx context.Context, email, password string) (*identity.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockIdentityProvider) Login(ctx context.Context, email, password string) (*identity.Token, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockIdentityProvider) CurrentUser(ctx context.Context, bearerToken string) (*identity.User, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx, bearerToken)
	}
	return nil, nil
}

// MockPostService is a mock implementation of handlers.PostService.
type MockPostService struct {
	UploadFunc func(ctx context.Context, req post.UploadRequest) (*post.Post, error)
	GetFunc    func(ctx context.Context, id string) (*post.Post, error)
	DeleteFunc func(ctx context.Context, id, requesterID string) (*post.DeleteResult, error)
}

func (m *MockPostService) Upload(ctx context.Context, req post.UploadRequest) (*post.Post, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockPostService) Get(ctx context.Context, id string) (*post.Post, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPostService) Delete(ctx context.Context, id, requesterID string) (*post.DeleteResult, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, requesterID)
	}
	return nil, nil
}

// MockFeedService is a mock implementation of handlers.FeedService.
type MockFeedService struct {
	BuildFeedFunc func(ctx context.Context, requesterID string) ([]post.FeedItem, error)
}

func (m *MockFeedService) BuildFeed(ctx context.Context, requesterID string) ([]post.FeedItem, error) {
	if m.BuildFeedFunc != nil {
		return m.BuildFeedFunc(ctx, requesterID)
	}
	return nil, nil
}

var alice = &identity.User{ID: "alice-id", Email: "alice@example.com", IsActive: true}

// tokenProvider accepts the single bearer token "alice-token".
func tokenProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		CurrentUserFunc: func(ctx context.Context, token string) (*identity.User, error) {
			if token == "alice-token" {
				return alice, nil
			}
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "invalid token", nil, "")
		},
	}
}

func setupTestRouter(idp identity.Provider, posts handlers.PostService, feed handlers.FeedService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.RequestID())

	cfg := &config.Config{MaxUploadBytes: 1 << 20}
	provider := handlers.NewProvider(cfg, idp, posts, feed, zerolog.Nop())
	routes.NewProvider(provider).Register(r, middlewares.AuthMiddleware(idp, zerolog.Nop()))
	return r
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer alice-token")
	return req
}

func decodeError(t *testing.T, body []byte) platformerrors.HTTPErrorResponse {
	t.Helper()
	var resp platformerrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func multipartBody(t *testing.T, fileName, contentType string, data []byte, caption string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if fileName != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.WriteField("caption", caption))
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := setupTestRouter(tokenProvider(), &MockPostService{}, &MockFeedService{})

	for _, tc := range []struct{ method, path, auth string }{
		{http.MethodGet, "/feed", ""},
		{http.MethodGet, "/feed", "Bearer wrong"},
		{http.MethodGet, "/feed", "Basic abc"},
		{http.MethodPost, "/upload", ""},
		{http.MethodDelete, "/posts/post_x", ""},
		{http.MethodGet, "/auth/users/me", ""},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.auth != "" {
			req.Header.Set("Authorization", tc.auth)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s %q", tc.method, tc.path, tc.auth)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	}
}

func TestLogin(t *testing.T) {
	idp := tokenProvider()
	idp.LoginFunc = func(ctx context.Context, email, password string) (*identity.Token, error) {
		if email == "alice@example.com" && password == "secret" {
			return &identity.Token{AccessToken: "alice-token", TokenType: "bearer"}, nil
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "LOGIN_BAD_CREDENTIALS", nil, "")
	}
	r := setupTestRouter(idp, &MockPostService{}, &MockFeedService{})

	login := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/jwt/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := login(url.Values{"username": {"alice@example.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access_token":"alice-token","token_type":"bearer"}`, w.Body.String())

	w = login(url.Values{"username": {"alice@example.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "LOGIN_BAD_CREDENTIALS", decodeError(t, w.Body.Bytes()).Detail)

	w = login(url.Values{"username": {"alice@example.com"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister(t *testing.T) {
	idp := tokenProvider()
	idp.RegisterFunc = func(ctx context.Context, email, password string) (*identity.User, error) {
		if email == "taken@example.com" {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "REGISTER_USER_ALREADY_EXISTS", nil, "")
		}
		return &identity.User{ID: "new-id", Email: email, IsActive: true}, nil
	}
	r := setupTestRouter(idp, &MockPostService{}, &MockFeedService{})

	register := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := register(`{"email":"bob@example.com","password":"secret"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"new-id","email":"bob@example.com","is_active":true,"is_superuser":false,"is_verified":false}`, w.Body.String())

	w = register(`{"email":"taken@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = register(`{"email":"bob@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	r := setupTestRouter(tokenProvider(), &MockPostService{}, &MockFeedService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/auth/users/me", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"alice-id","email":"alice@example.com","is_active":true,"is_superuser":false,"is_verified":false}`, w.Body.String())
}

func TestUpload(t *testing.T) {
	created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	var got post.UploadRequest
	var gotBody []byte
	posts := &MockPostService{
		UploadFunc: func(ctx context.Context, req post.UploadRequest) (*post.Post, error) {
			got = req
			gotBody, _ = io.ReadAll(req.Body)
			return &post.Post{
				ID:        "post_01hzz",
				UserID:    req.UserID,
				Caption:   req.Caption,
				URL:       "https://cdn.example.com/x.mp4",
				FileType:  post.FileTypeFor(req.ContentType),
				FileName:  "x.mp4",
				CreatedAt: created,
			}, nil
		},
	}
	r := setupTestRouter(tokenProvider(), posts, &MockFeedService{})

	body, contentType := multipartBody(t, "clip.mp4", "video/mp4", []byte("mp4-data"), "beach day")
	req := authed(httptest.NewRequest(http.MethodPost, "/upload", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "alice-id", got.UserID)
	assert.Equal(t, "beach day", got.Caption)
	assert.Equal(t, "clip.mp4", got.FileName)
	assert.Equal(t, "video/mp4", got.ContentType)
	assert.Equal(t, []byte("mp4-data"), gotBody)
	assert.JSONEq(t, `{
		"id": "post_01hzz",
		"user_id": "alice-id",
		"caption": "beach day",
		"url": "https://cdn.example.com/x.mp4",
		"file_type": "video",
		"file_name": "x.mp4",
		"created_at": "2025-05-01T10:00:00Z"
	}`, w.Body.String())
}

func TestUploadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		r := setupTestRouter(tokenProvider(), &MockPostService{}, &MockFeedService{})
		body, contentType := multipartBody(t, "", "", nil, "no file")
		req := authed(httptest.NewRequest(http.MethodPost, "/upload", body))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	tests := []struct {
		name       string
		errType    platformerrors.ErrorType
		message    string
		wantStatus int
		wantDetail string
	}{
		{"store failure", platformerrors.ErrorTypeExternal, "media upload failed", http.StatusBadGateway, "media upload failed"},
		{"internal failure", platformerrors.ErrorTypeInternal, "failed to stage upload", http.StatusInternalServerError, "internal server error"},
		{"database failure", platformerrors.ErrorTypeDatabaseError, "failed to create post", http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := &MockPostService{
				UploadFunc: func(ctx context.Context, req post.UploadRequest) (*post.Post, error) {
					return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, tt.errType, tt.message, nil, "code-1")
				},
			}
			r := setupTestRouter(tokenProvider(), posts, &MockFeedService{})
			body, contentType := multipartBody(t, "a.png", "image/png", []byte("png"), "")
			req := authed(httptest.NewRequest(http.MethodPost, "/upload", body))
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w.Body.Bytes())
			assert.Equal(t, tt.wantDetail, resp.Detail)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}
}

func TestFeed(t *testing.T) {
	feed := &MockFeedService{
		BuildFeedFunc: func(ctx context.Context, requesterID string) ([]post.FeedItem, error) {
			assert.Equal(t, "alice-id", requesterID)
			return []post.FeedItem{{
				Post: post.Post{
					ID:        "post_1",
					UserID:    "alice-id",
					Caption:   "hi",
					URL:       "https://cdn.example.com/a.png",
					FileType:  post.FileTypeImage,
					FileName:  "a.png",
					CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
				},
				IsOwner: true,
				Email:   "alice@example.com",
			}}, nil
		},
	}
	r := setupTestRouter(tokenProvider(), &MockPostService{}, feed)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/feed", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{
		"id": "post_1",
		"user_id": "alice-id",
		"caption": "hi",
		"url": "https://cdn.example.com/a.png",
		"file_type": "image",
		"file_name": "a.png",
		"created_at": "2025-05-01T10:00:00Z",
		"is_owner": true,
		"email": "alice@example.com"
	}]`, w.Body.String())
}

func TestFeedEmpty(t *testing.T) {
	r := setupTestRouter(tokenProvider(), &MockPostService{}, &MockFeedService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/feed", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestDeletePost(t *testing.T) {
	tests := []struct {
		name       string
		errType    platformerrors.ErrorType
		wantStatus int
	}{
		{"owner", "", http.StatusOK},
		{"invalid id", platformerrors.ErrorTypeValidation, http.StatusBadRequest},
		{"not owner", platformerrors.ErrorTypeForbidden, http.StatusForbidden},
		{"missing", platformerrors.ErrorTypeNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := &MockPostService{
				DeleteFunc: func(ctx context.Context, id, requesterID string) (*post.DeleteResult, error) {
					assert.Equal(t, "post_abc", id)
					assert.Equal(t, "alice-id", requesterID)
					if tt.errType != "" {
						return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, tt.errType, "nope", nil, "")
					}
					return &post.DeleteResult{Success: true, Message: "Post deleted successfully"}, nil
				},
			}
			r := setupTestRouter(tokenProvider(), posts, &MockFeedService{})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, authed(httptest.NewRequest(http.MethodDelete, "/posts/post_abc", nil)))
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.errType == "" {
				assert.JSONEq(t, `{"success":true,"message":"Post deleted successfully"}`, w.Body.String())
			}
		})
	}
}

func TestGetPost(t *testing.T) {
	posts := &MockPostService{
		GetFunc: func(ctx context.Context, id string) (*post.Post, error) {
			if id != "post_abc" {
				return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "Post not found", nil, "")
			}
			return &post.Post{ID: id, UserID: "bob", FileType: post.FileTypeImage}, nil
		},
	}
	r := setupTestRouter(tokenProvider(), posts, &MockFeedService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/posts/post_abc", nil)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/posts/post_zzz", nil)))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", decodeError(t, w.Body.Bytes()).Detail)
}
