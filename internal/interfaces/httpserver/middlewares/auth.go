package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/domain/identity"
	"github.com/simplesocial/social-server/internal/utils/platformerrors"
)

const userContextKey = "user"

// AuthMiddleware resolves the bearer token to a user through the identity
// provider. Requests without a valid token are rejected with 401.
func AuthMiddleware(provider identity.Provider, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Header("WWW-Authenticate", "Bearer")
			platformerrors.WriteUnauthorized(c, "Unauthorized")
			return
		}

		user, err := provider.CurrentUser(c.Request.Context(), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			platformerrors.WriteError(c, err, logger)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(c *gin.Context) (*identity.User, bool) {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*identity.User)
	return user, ok && user != nil
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
