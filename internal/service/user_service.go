package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/swediversity/swediversity-api/internal/models"
	"github.com/swediversity/swediversity-api/internal/prereq"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUserName(ctx context.Context, userName string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateMeritPoint(ctx context.Context, id string, meritPoint float64) error
	UpdatePrerequisites(ctx context.Context, id string, prerequisites []string) error
	Delete(ctx context.Context, id string) error
	ListProgramInterests(ctx context.Context, userID string) ([]string, error)
	ListUniversityInterests(ctx context.Context, userID string) ([]string, error)
	AddProgramInterest(ctx context.Context, userID, programID string) error
	RemoveProgramInterest(ctx context.Context, userID, programID string) error
	AddUniversityInterest(ctx context.Context, userID, universityID string) error
	RemoveUniversityInterest(ctx context.Context, userID, universityID string) error
}

// Merit points follow the Swedish admission scale.
const (
	minMeritPoint = 0
	maxMeritPoint = 22.5
)

// UserService provides account queries and the prospective-student profile
// and interest-list operations.
type UserService struct {
	repo    userRepository
	catalog *prereq.Catalog
	logger  *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, catalog *prereq.Catalog, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, catalog: catalog, logger: logger}
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// Get returns one user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// GetByUserName returns one user by user name. Callers use it as the
// registration availability check.
func (s *UserService) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	user, err := s.repo.FindByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Grade returns the merit/prerequisite view of a prospective student.
func (s *UserService) Grade(ctx context.Context, id string) (*models.GradeInfo, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Kind != models.UserKindProspective || user.Prospective == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user is not a prospective student")
	}
	return &models.GradeInfo{
		MeritPoint:    user.Prospective.MeritPoint,
		Prerequisites: user.Prospective.Prerequisites,
	}, nil
}

// SetMeritPoint updates a prospective student's merit point, bounded to the
// admission scale.
func (s *UserService) SetMeritPoint(ctx context.Context, id string, meritPoint float64) error {
	if meritPoint < minMeritPoint || meritPoint > maxMeritPoint {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("merit point must be between %v and %v", minMeritPoint, maxMeritPoint))
	}
	if err := s.repo.UpdateMeritPoint(ctx, id, meritPoint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "prospective student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update merit point")
	}
	return nil
}

// SetPrerequisites replaces a prospective student's held prerequisite set
// after checking every tag against the catalog vocabulary.
func (s *UserService) SetPrerequisites(ctx context.Context, id string, prerequisites []string) error {
	if invalid := s.catalog.Validate(prerequisites); len(invalid) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown prerequisites: %v", invalid))
	}
	if err := s.repo.UpdatePrerequisites(ctx, id, prerequisites); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "prospective student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update prerequisites")
	}
	return nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	return nil
}

// ProgramInterests returns the program ids on a user's interest list.
func (s *UserService) ProgramInterests(ctx context.Context, userID string) ([]string, error) {
	if err := s.requireProspective(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.repo.ListProgramInterests(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program interests")
	}
	return ids, nil
}

// UniversityInterests returns the university ids on a user's interest list.
func (s *UserService) UniversityInterests(ctx context.Context, userID string) ([]string, error) {
	if err := s.requireProspective(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.repo.ListUniversityInterests(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list university interests")
	}
	return ids, nil
}

// AddProgramInterest puts a program on the interest list and bumps its like
// counter.
func (s *UserService) AddProgramInterest(ctx context.Context, userID, programID string) error {
	if err := s.requireProspective(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.AddProgramInterest(ctx, userID, programID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add program interest")
	}
	return nil
}

// RemoveProgramInterest drops a program from the interest list. A missing
// interest row or counter row is reported as not found.
func (s *UserService) RemoveProgramInterest(ctx context.Context, userID, programID string) error {
	if err := s.requireProspective(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.RemoveProgramInterest(ctx, userID, programID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program is not on the interest list")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove program interest")
	}
	return nil
}

// AddUniversityInterest puts a university on the interest list and bumps its
// like counter.
func (s *UserService) AddUniversityInterest(ctx context.Context, userID, universityID string) error {
	if err := s.requireProspective(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.AddUniversityInterest(ctx, userID, universityID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add university interest")
	}
	return nil
}

// RemoveUniversityInterest drops a university from the interest list.
func (s *UserService) RemoveUniversityInterest(ctx context.Context, userID, universityID string) error {
	if err := s.requireProspective(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.RemoveUniversityInterest(ctx, userID, universityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "university is not on the interest list")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove university interest")
	}
	return nil
}

func (s *UserService) requireProspective(ctx context.Context, userID string) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.Kind != models.UserKindProspective {
		return appErrors.Clone(appErrors.ErrValidation, "interest lists are only available to prospective students")
	}
	return nil
}
