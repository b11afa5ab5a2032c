package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/simplesocial/social-server/internal/domain/post"
	"github.com/simplesocial/social-server/internal/infrastructure/metrics"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/middlewares"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/requests"
	"github.com/simplesocial/social-server/internal/interfaces/httpserver/responses"
	"github.com/simplesocial/social-server/internal/utils/platformerrors"
)

// multipartOverhead leaves room for form fields and boundaries on top of the
// file size limit.
const multipartOverhead = 1 << 20

// PostHandler exposes upload, fetch and delete endpoints for posts.
type PostHandler struct {
	service  PostService
	maxBytes int64
	log      zerolog.Logger
}

func NewPostHandler(service PostService, maxBytes int64, log zerolog.Logger) *PostHandler {
	return &PostHandler{
		service:  service,
		maxBytes: maxBytes,
		log:      log.With().Str("handler", "post").Logger(),
	}
}

// Upload handles POST /upload
// @Summary Upload media
// @Description Uploads an image or video with a caption and creates a post
// @Tags Posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Media file"
// @Param caption formData string false "Caption"
// @Success 200 {object} responses.PostResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Failure 502 {object} platformerrors.HTTPErrorResponse
// @Failure 500 {object} platformerrors.HTTPErrorResponse
// @Router /upload [post]
func (h *PostHandler) Upload(c *gin.Context) {
	user, ok := middlewares.UserFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "Unauthorized")
		return
	}

	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			platformerrors.WriteValidationError(c, "file is too large")
			return
		}
		platformerrors.WriteValidationError(c, "file is required")
		return
	}

	var form requests.UploadForm
	if err := c.ShouldBind(&form); err != nil {
		platformerrors.WriteValidationError(c, "invalid upload form")
		return
	}

	file, err := header.Open()
	if err != nil {
		platformerrors.WriteError(c, platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler,
			platformerrors.ErrorTypeInternal, "failed to read upload", err, "b0e3a6d9-2c5f-4e8b-9a1d-4f7c0e3b6a9d"), h.log)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	created, err := h.service.Upload(c.Request.Context(), post.UploadRequest{
		UserID:      user.ID,
		Caption:     form.Caption,
		FileName:    header.Filename,
		ContentType: contentType,
		Body:        file,
	})
	if err != nil {
		metrics.RecordUpload(string(post.FileTypeFor(contentType)), "error", 0)
		platformerrors.WriteError(c, err, h.log)
		return
	}
	metrics.RecordUpload(string(created.FileType), "success", header.Size)

	c.JSON(http.StatusOK, responses.MapPost(created))
}

// Get handles GET /posts/:id
// @Summary Get post
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} responses.PostResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	var uri requests.PostURI
	if err := c.ShouldBindUri(&uri); err != nil {
		platformerrors.WriteValidationError(c, "Invalid post ID")
		return
	}

	p, err := h.service.Get(c.Request.Context(), uri.ID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.MapPost(p))
}

// Delete handles DELETE /posts/:id
// @Summary Delete post
// @Description Deletes a post owned by the current user
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} responses.DeleteResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	user, ok := middlewares.UserFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "Unauthorized")
		return
	}

	var uri requests.PostURI
	if err := c.ShouldBindUri(&uri); err != nil {
		platformerrors.WriteValidationError(c, "Invalid post ID")
		return
	}

	result, err := h.service.Delete(c.Request.Context(), uri.ID, user.ID)
	if err != nil {
		metrics.RecordDeletion("error")
		platformerrors.WriteError(c, err, h.log)
		return
	}
	metrics.RecordDeletion("success")

	c.JSON(http.StatusOK, responses.MapDelete(result))
}
