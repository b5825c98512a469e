package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swediversity/swediversity-api/internal/models"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type mockRecordRepo struct {
	records map[string]*models.Record
	created []*models.Record
}

func newMockRecordRepo(records ...*models.Record) *mockRecordRepo {
	m := &mockRecordRepo{records: map[string]*models.Record{}}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return m
}

func (m *mockRecordRepo) ListByProgram(ctx context.Context, programName string) ([]models.Record, error) {
	var records []models.Record
	for _, r := range m.records {
		if r.ProgramName == programName {
			records = append(records, *r)
		}
	}
	return records, nil
}

func (m *mockRecordRepo) ListAll(ctx context.Context) ([]models.Record, error) {
	var records []models.Record
	for _, r := range m.records {
		records = append(records, *r)
	}
	return records, nil
}

func (m *mockRecordRepo) FindByID(ctx context.Context, id string) (*models.Record, error) {
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRecordRepo) Create(ctx context.Context, record *models.Record) error {
	record.ID = "generated-id"
	m.created = append(m.created, record)
	m.records[record.ID] = record
	return nil
}

func (m *mockRecordRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.records, id)
	return nil
}

func validRecordRequest() RecordRequest {
	return RecordRequest{
		ProgramName:        "Datateknik",
		MinScore:           17.1,
		NumOfApplicants:    900,
		NumOfQualified:     700,
		AcceptedApplicants: 120,
		Year:               2025,
		Round:              models.Round1,
		Selection:          models.Selection1,
		SelectionGroup:     models.GroupB1,
	}
}

func newTestRecordService(repo *mockRecordRepo, stats *mockStatsRepo) *RecordService {
	return NewRecordService(repo, NewStatsService(stats, nil, nil), nil, nil)
}

func TestCreateRecordTriggersRecompute(t *testing.T) {
	repo := newMockRecordRepo()
	stats := &mockStatsRepo{mean: 17.1}
	svc := newTestRecordService(repo, stats)

	record, err := svc.Create(context.Background(), validRecordRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	require.Len(t, stats.replaced, 1)
	assert.Equal(t, "Datateknik", stats.replaced[0].ProgramName)
	assert.Equal(t, models.GroupB1, stats.replaced[0].SelectionGroup)
}

func TestCreateRecordRecomputeFailureDoesNotSurface(t *testing.T) {
	repo := newMockRecordRepo()
	stats := &mockStatsRepo{meanErr: assert.AnError}
	svc := newTestRecordService(repo, stats)

	_, err := svc.Create(context.Background(), validRecordRequest())
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
}

func TestCreateRecordInvalidEnum(t *testing.T) {
	svc := newTestRecordService(newMockRecordRepo(), &mockStatsRepo{})

	req := validRecordRequest()
	req.Round = "round9"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = validRecordRequest()
	req.SelectionGroup = "Z1"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
}

func TestCreateRecordScoreBounds(t *testing.T) {
	svc := newTestRecordService(newMockRecordRepo(), &mockStatsRepo{})

	req := validRecordRequest()
	req.MinScore = 23
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
}

func TestDeleteRecordTriggersRecompute(t *testing.T) {
	existing := &models.Record{ID: "r1", ProgramName: "Datateknik", Round: models.Round1, SelectionGroup: models.GroupB1}
	repo := newMockRecordRepo(existing)
	stats := &mockStatsRepo{mean: 0}
	svc := newTestRecordService(repo, stats)

	require.NoError(t, svc.Delete(context.Background(), "r1"))
	require.Len(t, stats.replaced, 1)
	assert.Zero(t, stats.replaced[0].Score)
}

func TestDeleteRecordNotFound(t *testing.T) {
	svc := newTestRecordService(newMockRecordRepo(), &mockStatsRepo{})

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportCSV(t *testing.T) {
	first := 340
	record := &models.Record{ID: "r1", ProgramName: "Datateknik", MinScore: 17.1, Year: 2025, NumOfFirstChoice: &first, Round: models.Round1, Selection: models.Selection1, SelectionGroup: models.GroupB1}
	svc := newTestRecordService(newMockRecordRepo(record), &mockStatsRepo{})

	payload, contentType, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	body := string(payload)
	assert.True(t, strings.Contains(body, "Datateknik"))
	assert.True(t, strings.Contains(body, "17.10"))
	assert.True(t, strings.Contains(body, "340"))
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := newTestRecordService(newMockRecordRepo(), &mockStatsRepo{})

	_, _, err := svc.Export(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
