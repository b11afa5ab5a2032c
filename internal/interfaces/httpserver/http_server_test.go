package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/simplesocial/social-server/internal/config"
	"github.com/simplesocial/social-server/internal/domain/identity"
	"github.com/simplesocial/social-server/internal/domain/post"
	"github.com/simplesocial/social-server/internal/infrastructure/auth"
	"github.com/simplesocial/social-server/internal/infrastructure/database/dbtest"
	"github.com/simplesocial/social-server/internal/infrastructure/mediastore"
	postrepo "github.com/simplesocial/social-server/internal/infrastructure/repository/post"
	userrepo "github.com/simplesocial/social-server/internal/infrastructure/repository/user"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/handlers"
)

type feedEntry struct {
	ID      string `json:"id"`
	Caption string `json:"caption"`
	URL     string `json:"url"`
	IsOwner bool   `json:"is_owner"`
	Email   string `json:"email"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, ready httpserver.ReadinessCheck) *testServer {
	t.Helper()
	cfg := &config.Config{
		ServiceName:           "simple-social",
		Environment:           "test",
		AuthMode:              config.AuthModeLocal,
		AuthJWTSecret:         "test-secret",
		AuthTokenTTL:          time.Hour,
		AuthIssuer:            "simple-social",
		AuthAudience:          "simple-social:auth",
		AuthMinPasswordLength: 3,
		MediaStoreBackend:     config.MediaBackendLocal,
		MediaUploadTag:        "backend-upload",
		MaxUploadBytes:        1 << 20,
		UploadTempDir:         t.TempDir(),
		LocalStoragePath:      t.TempDir(),
		LocalStorageBaseURL:   "http://localhost:8000/media",
	}
	log := zerolog.Nop()

	db := dbtest.NewSQLite(t)
	users := userrepo.NewRepository(db, log)
	posts := postrepo.NewRepository(db)

	tokens, err := auth.NewTokenService(cfg)
	require.NoError(t, err)
	idp := identity.NewLocalProvider(users, tokens, cfg.AuthMinPasswordLength, log, identity.WithBcryptCost(bcrypt.MinCost))

	media, err := mediastore.New(context.Background(), cfg, log)
	require.NoError(t, err)

	provider := handlers.NewProvider(cfg, idp,
		post.NewService(cfg, posts, media, log),
		post.NewFeedService(posts, users, log),
		log)
	srv := httpserver.New(cfg, log, provider, idp, ready, httpserver.MediaDir(mediastore.StaticDir(media)))
	return &testServer{t: t, handler: srv.Handler()}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) signup(email, password string) string {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"`+email+`","password":"`+password+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	form := url.Values{"username": {email}, "password": {password}}
	req = httptest.NewRequest(http.MethodPost, "/auth/jwt/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = s.do(req)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &token))
	require.Equal(s.t, "bearer", token.TokenType)
	return token.AccessToken
}

func (s *testServer) upload(token, fileName, contentType, caption string, data []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(s.t, err)
	_, err = part.Write(data)
	require.NoError(s.t, err)
	require.NoError(s.t, writer.WriteField("caption", caption))
	require.NoError(s.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return s.do(req)
}

func (s *testServer) feed(token string) []feedEntry {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := s.do(req)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var entries []feedEntry
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &entries))
	return entries
}

func (s *testServer) delete(token, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return s.do(req)
}

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.signup("a@x.com", "pwd")
	bob := s.signup("b@x.com", "pwd")

	w := s.upload(alice, "hello.png", "image/png", "hi", []byte("png-bytes"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		ID       string `json:"id"`
		URL      string `json:"url"`
		FileType string `json:"file_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.ID, "post_"))
	assert.True(t, strings.HasPrefix(created.URL, "http://localhost:8000/media/"))
	assert.Equal(t, "image", created.FileType)

	asAlice := s.feed(alice)
	require.Len(t, asAlice, 1)
	assert.Equal(t, created.ID, asAlice[0].ID)
	assert.Equal(t, "hi", asAlice[0].Caption)
	assert.True(t, asAlice[0].IsOwner)
	assert.Equal(t, "a@x.com", asAlice[0].Email)

	asBob := s.feed(bob)
	require.Len(t, asBob, 1)
	assert.False(t, asBob[0].IsOwner)
	assert.Equal(t, "a@x.com", asBob[0].Email)

	w = s.delete(bob, created.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.Len(t, s.feed(alice), 1)

	w = s.delete(alice, created.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Post deleted successfully"}`, w.Body.String())
	assert.Empty(t, s.feed(alice))

	w = s.delete(alice, created.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.delete(alice, "not-a-post-id")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadedMediaIsServed(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.signup("a@x.com", "pwd")

	w := s.upload(alice, "hello.png", "image/png", "hi", []byte("png-bytes"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := strings.TrimPrefix(created.URL, "http://localhost:8000")
	w = s.do(httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestFeedIsNewestFirst(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.signup("a@x.com", "pwd")
	bob := s.signup("b@x.com", "pwd")

	for _, tc := range []struct{ token, caption string }{
		{alice, "first"},
		{bob, "second"},
		{alice, "third"},
	} {
		w := s.upload(tc.token, tc.caption+".mp4", "video/mp4", tc.caption, []byte(tc.caption))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	entries := s.feed(bob)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Caption)
	assert.Equal(t, "second", entries[1].Caption)
	assert.Equal(t, "first", entries[2].Caption)
	assert.Equal(t, []bool{false, true, false}, []bool{entries[0].IsOwner, entries[1].IsOwner, entries[2].IsOwner})
}

func TestRegisterDuplicateAndBadLogin(t *testing.T) {
	s := newTestServer(t, nil)
	s.signup("a@x.com", "pwd")

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"email":"a@x.com","password":"pwd"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusConflict, s.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"c@x.com","password":"`+strings.Repeat("p", 73)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, s.do(req).Code)

	form := url.Values{"username": {"a@x.com"}, "password": {"wrong"}}
	req = httptest.NewRequest(http.MethodPost, "/auth/jwt/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusUnauthorized, s.do(req).Code)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = s.do(httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "simple_social_api_requests_total")
}

func TestReadinessFailure(t *testing.T) {
	s := newTestServer(t, func(ctx context.Context) error { return errors.New("db down") })

	w := s.do(httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestFeedRequiresToken(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/feed", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
