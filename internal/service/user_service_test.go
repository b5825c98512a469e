package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swediversity/swediversity-api/internal/models"
	"github.com/swediversity/swediversity-api/internal/prereq"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type mockUserRepo struct {
	users         map[string]*models.User
	meritSet      map[string]float64
	prereqSet     map[string][]string
	programLists  map[string][]string
	removeErr     error
	addedPrograms []string
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{
		users:        map[string]*models.User{},
		meritSet:     map[string]float64{},
		prereqSet:    map[string][]string{},
		programLists: map[string][]string{},
	}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByUserName(ctx context.Context, userName string) (*models.User, error) {
	for _, u := range m.users {
		if u.UserName == userName {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

func (m *mockUserRepo) UpdateMeritPoint(ctx context.Context, id string, meritPoint float64) error {
	u, ok := m.users[id]
	if !ok || u.Kind != models.UserKindProspective {
		return sql.ErrNoRows
	}
	m.meritSet[id] = meritPoint
	return nil
}

func (m *mockUserRepo) UpdatePrerequisites(ctx context.Context, id string, prerequisites []string) error {
	u, ok := m.users[id]
	if !ok || u.Kind != models.UserKindProspective {
		return sql.ErrNoRows
	}
	m.prereqSet[id] = prerequisites
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) ListProgramInterests(ctx context.Context, userID string) ([]string, error) {
	return m.programLists[userID], nil
}

func (m *mockUserRepo) ListUniversityInterests(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func (m *mockUserRepo) AddProgramInterest(ctx context.Context, userID, programID string) error {
	m.addedPrograms = append(m.addedPrograms, programID)
	m.programLists[userID] = append(m.programLists[userID], programID)
	return nil
}

func (m *mockUserRepo) RemoveProgramInterest(ctx context.Context, userID, programID string) error {
	return m.removeErr
}

func (m *mockUserRepo) AddUniversityInterest(ctx context.Context, userID, universityID string) error {
	return nil
}

func (m *mockUserRepo) RemoveUniversityInterest(ctx context.Context, userID, universityID string) error {
	return m.removeErr
}

func testCatalog(t *testing.T) *prereq.Catalog {
	t.Helper()
	catalog, err := prereq.NewCatalog()
	require.NoError(t, err)
	return catalog
}

func prospective(id string) *models.User {
	return &models.User{ID: id, Email: id + "@example.com", UserName: id, Kind: models.UserKindProspective, Prospective: &models.ProspectiveProfile{}}
}

func TestSetMeritPointBounds(t *testing.T) {
	repo := newMockUserRepo(prospective("u1"))
	svc := NewUserService(repo, testCatalog(t), nil)

	require.NoError(t, svc.SetMeritPoint(context.Background(), "u1", 22.5))
	require.NoError(t, svc.SetMeritPoint(context.Background(), "u1", 0))

	err := svc.SetMeritPoint(context.Background(), "u1", 23)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = svc.SetMeritPoint(context.Background(), "u1", -0.5)
	require.Error(t, err)
}

func TestSetMeritPointNonProspective(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u2", Kind: models.UserKindNormal})
	svc := NewUserService(repo, testCatalog(t), nil)

	err := svc.SetMeritPoint(context.Background(), "u2", 15)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSetPrerequisitesValidatesTags(t *testing.T) {
	repo := newMockUserRepo(prospective("u1"))
	svc := NewUserService(repo, testCatalog(t), nil)

	require.NoError(t, svc.SetPrerequisites(context.Background(), "u1", []string{"Math4", "Biology1"}))
	assert.Equal(t, []string{"Math4", "Biology1"}, repo.prereqSet["u1"])

	err := svc.SetPrerequisites(context.Background(), "u1", []string{"Math4", "Alchemy1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeRequiresProspective(t *testing.T) {
	merit := 19.0
	user := prospective("u1")
	user.Prospective.MeritPoint = &merit
	repo := newMockUserRepo(user, &models.User{ID: "u2", Kind: models.UserKindStudent})
	svc := NewUserService(repo, testCatalog(t), nil)

	grade, err := svc.Grade(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 19.0, *grade.MeritPoint)

	_, err = svc.Grade(context.Background(), "u2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestInterestListsProspectiveOnly(t *testing.T) {
	repo := newMockUserRepo(prospective("u1"), &models.User{ID: "u2", Kind: models.UserKindNormal})
	svc := NewUserService(repo, testCatalog(t), nil)

	require.NoError(t, svc.AddProgramInterest(context.Background(), "u1", "p1"))
	assert.Equal(t, []string{"p1"}, repo.addedPrograms)

	err := svc.AddProgramInterest(context.Background(), "u2", "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRemoveInterestMissingCounterIsNotFound(t *testing.T) {
	repo := newMockUserRepo(prospective("u1"))
	repo.removeErr = sql.ErrNoRows
	svc := NewUserService(repo, testCatalog(t), nil)

	err := svc.RemoveProgramInterest(context.Background(), "u1", "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = svc.RemoveUniversityInterest(context.Background(), "u1", "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeleteUnknownUser(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), testCatalog(t), nil)

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
