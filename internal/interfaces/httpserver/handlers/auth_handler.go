package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/domain/identity"
	"github.com/simplesocial/social-server/internal/infrastructure/metrics"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/middlewares"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/requests"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/responses"
	"github.com/simplesocial/social-server/internal/utils/platformerrors"
)

// AuthHandler exposes registration, login and current-user endpoints.
type AuthHandler struct {
	provider identity.Provider
	log      zerolog.Logger
}

func NewAuthHandler(provider identity.Provider, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /auth/jwt/login
// @Summary Log in
// @Description Exchanges email and password for a bearer token
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} responses.TokenResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Router /auth/jwt/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req requests.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		platformerrors.WriteValidationError(c, "username and password are required")
		return
	}

	token, err := h.provider.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.RecordAuthAttempt("login", "error")
		platformerrors.WriteError(c, err, h.log)
		return
	}
	metrics.RecordAuthAttempt("login", "success")

	c.JSON(http.StatusOK, responses.MapToken(token))
}

// Register handles POST /auth/register
// @Summary Register
// @Description Creates a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requests.RegisterRequest true "Credentials"
// @Success 201 {object} responses.UserResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 409 {object} platformerrors.HTTPErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req requests.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "email and password are required")
		return
	}

	user, err := h.provider.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.RecordAuthAttempt("register", "error")
		platformerrors.WriteError(c, err, h.log)
		return
	}
	metrics.RecordAuthAttempt("register", "success")

	c.JSON(http.StatusCreated, responses.MapUser(user))
}

// Me handles GET /auth/users/me
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.UserResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Router /auth/users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middlewares.UserFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, responses.MapUser(user))
}
