package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/swediversity/swediversity-api/internal/models"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
	"github.com/swediversity/swediversity-api/pkg/export"
)

type recordRepository interface {
	ListByProgram(ctx context.Context, programName string) ([]models.Record, error)
	ListAll(ctx context.Context) ([]models.Record, error)
	FindByID(ctx context.Context, id string) (*models.Record, error)
	Create(ctx context.Context, record *models.Record) error
	Delete(ctx context.Context, id string) error
}

// RecordRequest is the admin payload for inserting an admission record.
type RecordRequest struct {
	ProgramName        string                `json:"program_name" validate:"required"`
	MinScore           float64               `json:"min_score" validate:"gte=0,lte=22.5"`
	NumOfApplicants    int                   `json:"num_of_applicants" validate:"gte=0"`
	NumOfQualified     int                   `json:"num_of_qualified" validate:"gte=0"`
	AcceptedApplicants int                   `json:"accepted_applicants" validate:"gte=0"`
	Year               int                   `json:"year" validate:"required"`
	NumOfFirstChoice   *int                  `json:"num_of_first_choice,omitempty"`
	Round              models.Round          `json:"round" validate:"required"`
	Selection          models.Selection      `json:"selection" validate:"required"`
	SelectionGroup     models.SelectionGroup `json:"selection_group" validate:"required"`
}

// RecordService provides admission record queries, admin mutations and the
// tabular export. Every mutation triggers a statistics recompute for the
// record's key; recompute failures are logged inside the stats service and
// never surface here.
type RecordService struct {
	repo      recordRepository
	stats     *StatsService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecordService constructs a RecordService instance.
func NewRecordService(repo recordRepository, stats *StatsService, validate *validator.Validate, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RecordService{
		repo:      repo,
		stats:     stats,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// ListByProgram returns every record for one program.
func (s *RecordService) ListByProgram(ctx context.Context, programName string) ([]models.Record, error) {
	if programName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "programName is required")
	}
	records, err := s.repo.ListByProgram(ctx, programName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list records")
	}
	return records, nil
}

// Create validates and inserts a record, then recomputes the statistics for
// its key.
func (s *RecordService) Create(ctx context.Context, req RecordRequest) (*models.Record, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid record payload")
	}
	if !models.ValidRound(req.Round) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown round %q", req.Round))
	}
	if !models.ValidSelection(req.Selection) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown selection %q", req.Selection))
	}
	if !models.ValidSelectionGroup(req.SelectionGroup) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown selection group %q", req.SelectionGroup))
	}

	record := &models.Record{
		ProgramName:        req.ProgramName,
		MinScore:           req.MinScore,
		NumOfApplicants:    req.NumOfApplicants,
		NumOfQualified:     req.NumOfQualified,
		AcceptedApplicants: req.AcceptedApplicants,
		Year:               req.Year,
		NumOfFirstChoice:   req.NumOfFirstChoice,
		Round:              req.Round,
		Selection:          req.Selection,
		SelectionGroup:     req.SelectionGroup,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create record")
	}

	s.stats.Recompute(ctx, record.ProgramName, record.Round, record.SelectionGroup)
	return record, nil
}

// Delete removes a record and recomputes the statistics for its key.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete record")
	}

	s.stats.Recompute(ctx, record.ProgramName, record.Round, record.SelectionGroup)
	return nil
}

// Export renders every record as CSV or PDF.
func (s *RecordService) Export(ctx context.Context, format string) ([]byte, string, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list records")
	}

	dataset := recordDataset(records)
	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Admission Records")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func recordDataset(records []models.Record) export.Dataset {
	headers := []string{"Program", "Year", "Round", "Selection", "Group", "Min Score", "Applicants", "Qualified", "Accepted", "First Choice"}
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		firstChoice := ""
		if record.NumOfFirstChoice != nil {
			firstChoice = strconv.Itoa(*record.NumOfFirstChoice)
		}
		rows = append(rows, map[string]string{
			"Program":      record.ProgramName,
			"Year":         strconv.Itoa(record.Year),
			"Round":        string(record.Round),
			"Selection":    string(record.Selection),
			"Group":        string(record.SelectionGroup),
			"Min Score":    strconv.FormatFloat(record.MinScore, 'f', 2, 64),
			"Applicants":   strconv.Itoa(record.NumOfApplicants),
			"Qualified":    strconv.Itoa(record.NumOfQualified),
			"Accepted":     strconv.Itoa(record.AcceptedApplicants),
			"First Choice": firstChoice,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
