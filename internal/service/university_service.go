package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/swediversity/swediversity-api/internal/models"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type universityRepository interface {
	List(ctx context.Context) ([]models.University, error)
	ListByCity(ctx context.Context, city string) ([]models.University, error)
	FindByID(ctx context.Context, id string) (*models.University, error)
	FindByName(ctx context.Context, name string) (*models.University, error)
	Create(ctx context.Context, university *models.University) error
	Update(ctx context.Context, university *models.University) error
	Delete(ctx context.Context, id string) error
}

type searchCacheInvalidator interface {
	Invalidate(ctx context.Context, corpus string)
}

// UniversityRequest is the admin payload for creating a university.
type UniversityRequest struct {
	Name string `json:"name" validate:"required"`
	City string `json:"city" validate:"required"`
}

// UniversityPatch carries optional field updates.
type UniversityPatch struct {
	Name *string `json:"name,omitempty"`
	City *string `json:"city,omitempty"`
}

// UniversityService provides university queries and admin maintenance.
type UniversityService struct {
	repo      universityRepository
	cache     searchCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUniversityService constructs a UniversityService instance. cache may be
// nil when no search cache is configured.
func NewUniversityService(repo universityRepository, cache searchCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *UniversityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UniversityService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns all universities.
func (s *UniversityService) List(ctx context.Context) ([]models.University, error) {
	universities, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list universities")
	}
	return universities, nil
}

// ListByCity returns the universities in one city. An unknown city yields an
// empty list, not an error.
func (s *UniversityService) ListByCity(ctx context.Context, city string) ([]models.University, error) {
	if city == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "city is required")
	}
	universities, err := s.repo.ListByCity(ctx, city)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list universities by city")
	}
	return universities, nil
}

// Get returns one university by id.
func (s *UniversityService) Get(ctx context.Context, id string) (*models.University, error) {
	university, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university")
	}
	return university, nil
}

// GetByName returns one university by exact name.
func (s *UniversityService) GetByName(ctx context.Context, name string) (*models.University, error) {
	university, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university")
	}
	return university, nil
}

// Create inserts a new university.
func (s *UniversityService) Create(ctx context.Context, req UniversityRequest) (*models.University, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid university payload")
	}
	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "university name already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check university name")
	}

	university := &models.University{Name: req.Name, City: req.City}
	if err := s.repo.Create(ctx, university); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create university")
	}
	s.invalidate(ctx)
	return university, nil
}

// Patch applies partial updates to a university.
func (s *UniversityService) Patch(ctx context.Context, id string, patch UniversityPatch) (*models.University, error) {
	university, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		university.Name = *patch.Name
	}
	if patch.City != nil {
		university.City = *patch.City
	}
	if university.Name == "" || university.City == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name and city must not be empty")
	}

	if err := s.repo.Update(ctx, university); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update university")
	}
	s.invalidate(ctx)
	return university, nil
}

// Delete removes a university.
func (s *UniversityService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete university")
	}
	s.invalidate(ctx)
	return nil
}

func (s *UniversityService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, "universities")
	}
}
