package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/simplesocial/social-server/internal/interfaces/httpserver/handlers"
)

// Provider coordinates all route registrations.
type Provider struct {
	handlers *handlers.Provider
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{handlers: handlerProvider}
}

// Register attaches the API routes. Everything except registration and login
// sits behind requireAuth.
func (p *Provider) Register(engine *gin.Engine, requireAuth gin.HandlerFunc) {
	auth := engine.Group("/auth")
	auth.POST("/register", p.handlers.Auth.Register)
	auth.POST("/jwt/login", p.handlers.Auth.Login)
	auth.GET("/users/me", requireAuth, p.handlers.Auth.Me)

	protected := engine.Group("/", requireAuth)
	registerPostRoutes(protected, p.handlers.Post)
	registerFeedRoutes(protected, p.handlers.Feed)
}

func registerPostRoutes(router gin.IRoutes, handler *handlers.PostHandler) {
	router.POST("/upload", handler.Upload)
	router.GET("/posts/:id", handler.Get)
	router.DELETE("/posts/:id", handler.Delete)
}

func registerFeedRoutes(router gin.IRoutes, handler *handlers.FeedHandler) {
	router.GET("/feed", handler.Get)
}
