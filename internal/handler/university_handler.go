package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swediversity/swediversity-api/internal/service"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
	"github.com/swediversity/swediversity-api/pkg/response"
)

// UniversityHandler wires HTTP endpoints to the university services.
type UniversityHandler struct {
	universities *service.UniversityService
	search       *service.SearchService
	stats        *service.StatsService
}

// NewUniversityHandler creates a new handler.
func NewUniversityHandler(universities *service.UniversityService, search *service.SearchService, stats *service.StatsService) *UniversityHandler {
	return &UniversityHandler{universities: universities, search: search, stats: stats}
}

// List godoc
// @Summary List universities
// @Tags Universities
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /universities [get]
func (h *UniversityHandler) List(c *gin.Context) {
	universities, err := h.universities.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, universities, nil)
}

// ByCity godoc
// @Summary List universities in a city
// @Tags Universities
// @Produce json
// @Param city query string true "City name"
// @Success 200 {object} response.Envelope
// @Router /universities/byCity [get]
func (h *UniversityHandler) ByCity(c *gin.Context) {
	universities, err := h.universities.ListByCity(c.Request.Context(), c.Query("city"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, universities, nil)
}

// Search godoc
// @Summary Fuzzy-search universities by name
// @Tags Universities
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} response.Envelope
// @Router /universities/search [get]
func (h *UniversityHandler) Search(c *gin.Context) {
	matches, err := h.search.Universities(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matches, nil)
}

// ByName godoc
// @Summary Get a university by exact name
// @Tags Universities
// @Produce json
// @Param name path string true "University name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /universities/name/{name} [get]
func (h *UniversityHandler) ByName(c *gin.Context) {
	university, err := h.universities.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, university, nil)
}

// Get godoc
// @Summary Get a university
// @Tags Universities
// @Produce json
// @Param id path string true "University id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /universities/{id} [get]
func (h *UniversityHandler) Get(c *gin.Context) {
	university, err := h.universities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, university, nil)
}

// Interest godoc
// @Summary Get a university's like count
// @Tags Universities
// @Produce json
// @Param id path string true "University id"
// @Success 200 {object} response.Envelope
// @Router /universities/{id}/interest [get]
func (h *UniversityHandler) Interest(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.universities.Get(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	likes, err := h.stats.UniversityLikes(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"university_id": id, "num_of_likes": likes}, nil)
}

// Create godoc
// @Summary Create a university
// @Tags Universities
// @Accept json
// @Produce json
// @Param payload body service.UniversityRequest true "University payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /universities [post]
func (h *UniversityHandler) Create(c *gin.Context) {
	var req service.UniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid university payload"))
		return
	}
	university, err := h.universities.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, university)
}

// Patch godoc
// @Summary Update a university
// @Tags Universities
// @Accept json
// @Produce json
// @Param id path string true "University id"
// @Param payload body service.UniversityPatch true "Fields to update"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /universities/{id} [patch]
func (h *UniversityHandler) Patch(c *gin.Context) {
	var patch service.UniversityPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid patch payload"))
		return
	}
	university, err := h.universities.Patch(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, university, nil)
}

// Delete godoc
// @Summary Delete a university
// @Tags Universities
// @Param id path string true "University id"
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /universities/{id} [delete]
func (h *UniversityHandler) Delete(c *gin.Context) {
	if err := h.universities.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
