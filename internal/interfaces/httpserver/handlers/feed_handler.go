package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/interfaces/httpserver/middlewares"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/responses"
	"github.com/simplesocial/social-server/internal/utils/platformerrors"
)

// FeedHandler serves the reverse-chronological feed.
type FeedHandler struct {
	service FeedService
	log     zerolog.Logger
}

func NewFeedHandler(service FeedService, log zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		service: service,
		log:     log.With().Str("handler", "feed").Logger(),
	}
}

// Get handles GET /feed
// @Summary Feed
// @Description Returns every post newest first, tagged with author email and ownership
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Success 200 {array} responses.FeedItemResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Failure 500 {object} platformerrors.HTTPErrorResponse
// @Router /feed [get]
func (h *FeedHandler) Get(c *gin.Context) {
	user, ok := middlewares.UserFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "Unauthorized")
		return
	}

	items, err := h.service.BuildFeed(c.Request.Context(), user.ID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.MapFeed(items))
}
