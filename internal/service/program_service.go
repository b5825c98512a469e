package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/swediversity/swediversity-api/internal/models"
	"github.com/swediversity/swediversity-api/internal/prereq"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type programRepository interface {
	List(ctx context.Context) ([]models.Program, error)
	ListByUniversity(ctx context.Context, universityName string) ([]models.Program, error)
	ListMatches(ctx context.Context) ([]models.ProgramMatch, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	FindByName(ctx context.Context, name string) (*models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	Delete(ctx context.Context, id string) error
}

type exchangeRateSource interface {
	Rate(ctx context.Context, currency string) (*models.ExchangeRate, error)
}

// ProgramRequest is the admin payload for creating a program.
type ProgramRequest struct {
	Name           string                 `json:"name" validate:"required"`
	Code           string                 `json:"code"`
	UniversityName string                 `json:"university_name" validate:"required"`
	Description    string                 `json:"description"`
	Prerequisites  []string               `json:"prerequisites"`
	TuitionFee     float64                `json:"tuition_fee" validate:"gte=0"`
	Category       models.ProgramCategory `json:"category" validate:"required"`
}

// ProgramPatch carries optional field updates.
type ProgramPatch struct {
	Name          *string                 `json:"name,omitempty"`
	Code          *string                 `json:"code,omitempty"`
	Description   *string                 `json:"description,omitempty"`
	Prerequisites *[]string               `json:"prerequisites,omitempty"`
	TuitionFee    *float64                `json:"tuition_fee,omitempty"`
	Category      *models.ProgramCategory `json:"category,omitempty"`
}

// ProgramService provides program queries, the prerequisite filter, tuition
// conversion and admin maintenance.
type ProgramService struct {
	repo      programRepository
	catalog   *prereq.Catalog
	exchange  exchangeRateSource
	cache     searchCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService constructs a ProgramService instance. exchange and cache
// may be nil.
func NewProgramService(repo programRepository, catalog *prereq.Catalog, exchange exchangeRateSource, cache searchCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProgramService{repo: repo, catalog: catalog, exchange: exchange, cache: cache, validator: validate, logger: logger}
}

// List returns all programs.
func (s *ProgramService) List(ctx context.Context) ([]models.Program, error) {
	programs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}

// ListByUniversity returns the programs offered by one university.
func (s *ProgramService) ListByUniversity(ctx context.Context, universityName string) ([]models.Program, error) {
	if universityName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "universityName is required")
	}
	programs, err := s.repo.ListByUniversity(ctx, universityName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs by university")
	}
	return programs, nil
}

// ByPrerequisites expands the held tag set through the catalog and returns
// every program whose required set the expansion covers. Unknown tags in the
// input reject the request.
func (s *ProgramService) ByPrerequisites(ctx context.Context, held []string) ([]models.ProgramMatch, error) {
	expansion := s.catalog.Expand(held)
	if len(expansion.Invalid) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown prerequisites: %s", strings.Join(expansion.Invalid, ", ")))
	}

	candidates, err := s.repo.ListMatches(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}

	have := make(map[string]struct{}, len(expansion.Expanded))
	for _, tag := range expansion.Expanded {
		have[tag] = struct{}{}
	}

	matches := make([]models.ProgramMatch, 0, len(candidates))
	for _, candidate := range candidates {
		covered := true
		for _, required := range candidate.Prerequisites {
			if _, ok := have[required]; !ok {
				covered = false
				break
			}
		}
		if covered {
			matches = append(matches, candidate)
		}
	}
	return matches, nil
}

// Get returns one program by id.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// TuitionQuote converts a program's tuition fee into the requested currency
// using the cached exchange rate.
func (s *ProgramService) TuitionQuote(ctx context.Context, id, currency string) (*models.TuitionQuote, error) {
	if currency == "" {
		currency = "KRW"
	}
	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.exchange == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exchange rates are not configured")
	}
	rate, err := s.exchange.Rate(ctx, currency)
	if err != nil {
		return nil, err
	}
	return &models.TuitionQuote{
		ProgramID:  program.ID,
		Currency:   rate.Currency,
		TuitionSEK: program.TuitionFee,
		Converted:  program.TuitionFee * rate.Rate,
		Rate:       rate.Rate,
		FetchedAt:  rate.FetchedAt,
	}, nil
}

// Create inserts a new program after validating its prerequisite tags and
// category.
func (s *ProgramService) Create(ctx context.Context, req ProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	if !models.ValidProgramCategory(req.Category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", req.Category))
	}
	if invalid := s.catalog.Validate(req.Prerequisites); len(invalid) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown prerequisites: %s", strings.Join(invalid, ", ")))
	}
	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "program name already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check program name")
	}

	program := &models.Program{
		Name:           req.Name,
		Code:           req.Code,
		UniversityName: req.UniversityName,
		Description:    req.Description,
		Prerequisites:  req.Prerequisites,
		TuitionFee:     req.TuitionFee,
		Category:       req.Category,
	}
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}
	s.invalidate(ctx)
	return program, nil
}

// Patch applies partial updates to a program.
func (s *ProgramService) Patch(ctx context.Context, id string, patch ProgramPatch) (*models.Program, error) {
	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		program.Name = *patch.Name
	}
	if patch.Code != nil {
		program.Code = *patch.Code
	}
	if patch.Description != nil {
		program.Description = *patch.Description
	}
	if patch.Prerequisites != nil {
		if invalid := s.catalog.Validate(*patch.Prerequisites); len(invalid) > 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown prerequisites: %s", strings.Join(invalid, ", ")))
		}
		program.Prerequisites = *patch.Prerequisites
	}
	if patch.TuitionFee != nil {
		if *patch.TuitionFee < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "tuition fee must not be negative")
		}
		program.TuitionFee = *patch.TuitionFee
	}
	if patch.Category != nil {
		if !models.ValidProgramCategory(*patch.Category) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", *patch.Category))
		}
		program.Category = *patch.Category
	}
	if program.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
	}

	if err := s.repo.Update(ctx, program); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}
	s.invalidate(ctx)
	return program, nil
}

// Delete removes a program.
func (s *ProgramService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete program")
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProgramService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, "programs")
	}
}
