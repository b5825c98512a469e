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

type consentRepository interface {
	FindByID(ctx context.Context, id string) (*models.ConsentForm, error)
	Create(ctx context.Context, form *models.ConsentForm) error
	Sign(ctx context.Context, id, userID string) error
}

// ConsentRequest is the payload for recording a consent form.
type ConsentRequest struct {
	Topic         string   `json:"topic" validate:"required"`
	CollectedData []string `json:"collected_data" validate:"required,min=1"`
}

// ConsentService records and serves data-collection consent forms.
type ConsentService struct {
	repo      consentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConsentService constructs a ConsentService instance.
func NewConsentService(repo consentRepository, validate *validator.Validate, logger *zap.Logger) *ConsentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ConsentService{repo: repo, validator: validate, logger: logger}
}

// Get returns one consent form.
func (s *ConsentService) Get(ctx context.Context, id string) (*models.ConsentForm, error) {
	form, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "consent form not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load consent form")
	}
	return form, nil
}

// Create records a new consent form.
func (s *ConsentService) Create(ctx context.Context, req ConsentRequest) (*models.ConsentForm, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid consent payload")
	}
	form := &models.ConsentForm{Topic: req.Topic, CollectedData: req.CollectedData}
	if err := s.repo.Create(ctx, form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create consent form")
	}
	return form, nil
}
