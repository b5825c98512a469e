package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/swediversity/swediversity-api/internal/models"
	"github.com/swediversity/swediversity-api/internal/service"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
	"github.com/swediversity/swediversity-api/pkg/response"
)

// RecordHandler wires HTTP endpoints to the admission record services.
type RecordHandler struct {
	records *service.RecordService
	stats   *service.StatsService
}

// NewRecordHandler creates a new handler.
func NewRecordHandler(records *service.RecordService, stats *service.StatsService) *RecordHandler {
	return &RecordHandler{records: records, stats: stats}
}

// ListByProgram godoc
// @Summary List admission records for a program
// @Tags Records
// @Produce json
// @Param programName path string true "Program name"
// @Success 200 {object} response.Envelope
// @Router /records/{programName} [get]
func (h *RecordHandler) ListByProgram(c *gin.Context) {
	records, err := h.records.ListByProgram(c.Request.Context(), c.Param("programName"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Stats godoc
// @Summary Get the mean minimum admission score for a selection group
// @Tags Records
// @Produce json
// @Param programName query string true "Program name"
// @Param round query string true "Admission round"
// @Param selectionGroup query string true "Selection group"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/stats [get]
func (h *RecordHandler) Stats(c *gin.Context) {
	stats, err := h.stats.SelectionGroupAvg(
		c.Request.Context(),
		c.Query("programName"),
		models.Round(c.Query("round")),
		models.SelectionGroup(c.Query("selectionGroup")),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export godoc
// @Summary Export all admission records
// @Tags Records
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format: csv or pdf (default csv)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /records/export [get]
func (h *RecordHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	data, contentType, err := h.records.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("admission_records_%s.%s", time.Now().UTC().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// Create godoc
// @Summary Create an admission record
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body service.RecordRequest true "Record payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /records [post]
func (h *RecordHandler) Create(c *gin.Context) {
	var req service.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid record payload"))
		return
	}
	record, err := h.records.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Delete godoc
// @Summary Delete an admission record
// @Tags Records
// @Param id path string true "Record id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /records/{id} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	if err := h.records.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
