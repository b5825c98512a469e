package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/swediversity/swediversity-api/internal/service"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
	"github.com/swediversity/swediversity-api/pkg/response"
)

// ProgramHandler wires HTTP endpoints to the program services.
type ProgramHandler struct {
	programs *service.ProgramService
	search   *service.SearchService
	stats    *service.StatsService
}

// NewProgramHandler creates a new handler.
func NewProgramHandler(programs *service.ProgramService, search *service.SearchService, stats *service.StatsService) *ProgramHandler {
	return &ProgramHandler{programs: programs, search: search, stats: stats}
}

// List godoc
// @Summary List programs
// @Tags Programs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	programs, err := h.programs.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// ByPrerequisites godoc
// @Summary List programs unlocked by a prerequisite set
// @Description Expands the held prerequisites through the implication map and returns programs whose requirements are covered
// @Tags Programs
// @Produce json
// @Param prerequisites query string true "Comma-separated prerequisite tags"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /programs/byPrerequisites [get]
func (h *ProgramHandler) ByPrerequisites(c *gin.Context) {
	var held []string
	if raw := c.Query("prerequisites"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				held = append(held, tag)
			}
		}
	}
	matches, err := h.programs.ByPrerequisites(c.Request.Context(), held)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matches, nil)
}

// ByUniversity godoc
// @Summary List programs offered by a university
// @Tags Programs
// @Produce json
// @Param universityName query string true "University name"
// @Success 200 {object} response.Envelope
// @Router /programs/byUniversity [get]
func (h *ProgramHandler) ByUniversity(c *gin.Context) {
	programs, err := h.programs.ListByUniversity(c.Request.Context(), c.Query("universityName"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// Search godoc
// @Summary Fuzzy-search programs by name
// @Tags Programs
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} response.Envelope
// @Router /programs/search [get]
func (h *ProgramHandler) Search(c *gin.Context) {
	matches, err := h.search.Programs(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matches, nil)
}

// Get godoc
// @Summary Get a program
// @Tags Programs
// @Produce json
// @Param id path string true "Program id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programs/{id} [get]
func (h *ProgramHandler) Get(c *gin.Context) {
	program, err := h.programs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Tuition godoc
// @Summary Get a program's tuition converted to a foreign currency
// @Tags Programs
// @Produce json
// @Param id path string true "Program id"
// @Param currency query string false "Target currency (default KRW)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programs/{id}/tuition [get]
func (h *ProgramHandler) Tuition(c *gin.Context) {
	quote, err := h.programs.TuitionQuote(c.Request.Context(), c.Param("id"), c.Query("currency"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quote, nil)
}

// Interest godoc
// @Summary Get a program's like count
// @Tags Programs
// @Produce json
// @Param id path string true "Program id"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/interest [get]
func (h *ProgramHandler) Interest(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.programs.Get(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	likes, err := h.stats.ProgramLikes(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"program_id": id, "num_of_likes": likes}, nil)
}

// Create godoc
// @Summary Create a program
// @Tags Programs
// @Accept json
// @Produce json
// @Param payload body service.ProgramRequest true "Program payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /programs [post]
func (h *ProgramHandler) Create(c *gin.Context) {
	var req service.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program payload"))
		return
	}
	program, err := h.programs.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Patch godoc
// @Summary Update a program
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program id"
// @Param payload body service.ProgramPatch true "Fields to update"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /programs/{id} [patch]
func (h *ProgramHandler) Patch(c *gin.Context) {
	var patch service.ProgramPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid patch payload"))
		return
	}
	program, err := h.programs.Patch(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Delete godoc
// @Summary Delete a program
// @Tags Programs
// @Param id path string true "Program id"
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /programs/{id} [delete]
func (h *ProgramHandler) Delete(c *gin.Context) {
	if err := h.programs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
