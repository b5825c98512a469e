package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swediversity/swediversity-api/internal/service"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
	"github.com/swediversity/swediversity-api/pkg/response"
)

// ConsentHandler wires HTTP endpoints to the consent form service.
type ConsentHandler struct {
	consents *service.ConsentService
}

// NewConsentHandler creates a new handler.
func NewConsentHandler(consents *service.ConsentService) *ConsentHandler {
	return &ConsentHandler{consents: consents}
}

// Get godoc
// @Summary Get a consent form
// @Tags Consents
// @Produce json
// @Param id path string true "Consent form id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /consents/{id} [get]
func (h *ConsentHandler) Get(c *gin.Context) {
	consent, err := h.consents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, consent, nil)
}

// Create godoc
// @Summary Create a consent form
// @Tags Consents
// @Accept json
// @Produce json
// @Param payload body service.ConsentRequest true "Consent payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /consents [post]
func (h *ConsentHandler) Create(c *gin.Context) {
	var req service.ConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid consent payload"))
		return
	}
	consent, err := h.consents.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, consent)
}
