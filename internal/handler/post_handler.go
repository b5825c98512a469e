package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swediversity/swediversity-api/internal/models"
	"github.com/swediversity/swediversity-api/internal/service"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
	"github.com/swediversity/swediversity-api/pkg/response"
)

// PostHandler wires HTTP endpoints to the post service.
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a new handler.
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// ListByKind godoc
// @Summary List posts of a content type
// @Tags Posts
// @Produce json
// @Param contentType path string true "Content type"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /posts/contentType/{contentType} [get]
func (h *PostHandler) ListByKind(c *gin.Context) {
	posts, err := h.posts.ListByKind(c.Request.Context(), models.PostKind(c.Param("contentType")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, nil)
}

// Get godoc
// @Summary Get a post
// @Tags Posts
// @Produce json
// @Param id path string true "Post id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /posts/contentId/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}

// ListByAuthor godoc
// @Summary List posts written by a user
// @Tags Posts
// @Produce json
// @Param userId path string true "Author id"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /posts/userId/{userId} [get]
func (h *PostHandler) ListByAuthor(c *gin.Context) {
	posts, err := h.posts.ListByAuthor(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, nil)
}

// Create godoc
// @Summary Create a post of a content type
// @Tags Posts
// @Accept json
// @Produce json
// @Param contentType path string true "Content type"
// @Param payload body service.PostRequest true "Post payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /posts/contentType/{contentType} [post]
func (h *PostHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid post payload"))
		return
	}
	post, err := h.posts.Create(c.Request.Context(), claims.UserID, models.PostKind(c.Param("contentType")), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// CreateAdmin godoc
// @Summary Create an administration post
// @Tags Posts
// @Accept json
// @Produce json
// @Param payload body service.PostRequest true "Post payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /posts/adminContent [post]
func (h *PostHandler) CreateAdmin(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid post payload"))
		return
	}
	post, err := h.posts.CreateAdmin(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// Delete godoc
// @Summary Delete a post
// @Description Authors may delete their own posts; admins may delete any post
// @Tags Posts
// @Param id path string true "Post id"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /posts/contentId/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.posts.Delete(c.Request.Context(), c.Param("id"), claims.UserID, claims.Admin); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
