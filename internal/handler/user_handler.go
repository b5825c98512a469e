package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swediversity/swediversity-api/internal/service"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
	"github.com/swediversity/swediversity-api/pkg/response"
)

// UserHandler wires HTTP endpoints to the user service.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type meritPointRequest struct {
	MeritPoint float64 `json:"meritPoint" binding:"required"`
}

type prerequisitesRequest struct {
	Prerequisites []string `json:"prerequisites"`
}

type interestRequest struct {
	ID string `json:"id" binding:"required"`
}

// List godoc
// @Summary List all users
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/all [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}

// Get godoc
// @Summary Get a user by id
// @Tags Users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/id/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// ByUserName godoc
// @Summary Get a user by username
// @Tags Users
// @Produce json
// @Param userName path string true "Username"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/userName/{userName} [get]
func (h *UserHandler) ByUserName(c *gin.Context) {
	user, err := h.users.GetByUserName(c.Request.Context(), c.Param("userName"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Grade godoc
// @Summary Get a prospective student's grade information
// @Tags Users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/grade [get]
func (h *UserHandler) Grade(c *gin.Context) {
	info, err := h.users.Grade(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// SetMeritPoint godoc
// @Summary Update a prospective student's merit point
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param payload body meritPointRequest true "Merit point"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /users/modify/{id}/meritPoint [post]
func (h *UserHandler) SetMeritPoint(c *gin.Context) {
	var req meritPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid merit point payload"))
		return
	}
	if err := h.users.SetMeritPoint(c.Request.Context(), c.Param("id"), req.MeritPoint); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "merit point updated"}, nil)
}

// SetPrerequisites godoc
// @Summary Replace a prospective student's prerequisite set
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param payload body prerequisitesRequest true "Prerequisite tags"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /users/modify/{id}/prerequisites [post]
func (h *UserHandler) SetPrerequisites(c *gin.Context) {
	var req prerequisitesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid prerequisites payload"))
		return
	}
	if err := h.users.SetPrerequisites(c.Request.Context(), c.Param("id"), req.Prerequisites); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "prerequisites updated"}, nil)
}

// ProgramInterests godoc
// @Summary List the programs on a user's interest list
// @Tags Users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/programs [get]
func (h *UserHandler) ProgramInterests(c *gin.Context) {
	ids, err := h.users.ProgramInterests(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ids, nil)
}

// AddProgramInterest godoc
// @Summary Add a program to a user's interest list
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param payload body interestRequest true "Program id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/programs [post]
func (h *UserHandler) AddProgramInterest(c *gin.Context) {
	var req interestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid interest payload"))
		return
	}
	if err := h.users.AddProgramInterest(c.Request.Context(), c.Param("id"), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "program added to interest list"}, nil)
}

// RemoveProgramInterest godoc
// @Summary Remove a program from a user's interest list
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param payload body interestRequest true "Program id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/programs [delete]
func (h *UserHandler) RemoveProgramInterest(c *gin.Context) {
	var req interestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid interest payload"))
		return
	}
	if err := h.users.RemoveProgramInterest(c.Request.Context(), c.Param("id"), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "program removed from interest list"}, nil)
}

// UniversityInterests godoc
// @Summary List the universities on a user's interest list
// @Tags Users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/universities [get]
func (h *UserHandler) UniversityInterests(c *gin.Context) {
	ids, err := h.users.UniversityInterests(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ids, nil)
}

// AddUniversityInterest godoc
// @Summary Add a university to a user's interest list
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param payload body interestRequest true "University id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/universities [post]
func (h *UserHandler) AddUniversityInterest(c *gin.Context) {
	var req interestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid interest payload"))
		return
	}
	if err := h.users.AddUniversityInterest(c.Request.Context(), c.Param("id"), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "university added to interest list"}, nil)
}

// RemoveUniversityInterest godoc
// @Summary Remove a university from a user's interest list
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param payload body interestRequest true "University id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/universities [delete]
func (h *UserHandler) RemoveUniversityInterest(c *gin.Context) {
	var req interestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid interest payload"))
		return
	}
	if err := h.users.RemoveUniversityInterest(c.Request.Context(), c.Param("id"), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "university removed from interest list"}, nil)
}

// Delete godoc
// @Summary Delete a user
// @Tags Users
// @Param id path string true "User id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
