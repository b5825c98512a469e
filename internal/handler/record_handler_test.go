package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swediversity/swediversity-api/internal/models"
	"github.com/swediversity/swediversity-api/internal/service"
)

type recordRepoStub struct {
	records []models.Record
	created *models.Record
}

func (s *recordRepoStub) ListByProgram(ctx context.Context, programName string) ([]models.Record, error) {
	return s.records, nil
}

func (s *recordRepoStub) ListAll(ctx context.Context) ([]models.Record, error) {
	return s.records, nil
}

func (s *recordRepoStub) FindByID(ctx context.Context, id string) (*models.Record, error) {
	for i := range s.records {
		if s.records[i].ID == id {
			return &s.records[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *recordRepoStub) Create(ctx context.Context, record *models.Record) error {
	s.created = record
	return nil
}

func (s *recordRepoStub) Delete(ctx context.Context, id string) error { return nil }

type statsRepoStub struct {
	stats    map[string]*models.MinMeritStats
	replaced []models.MinMeritStats
}

func (s *statsRepoStub) MeanMinScore(ctx context.Context, programName string, round models.Round, group models.SelectionGroup) (float64, error) {
	return 0, nil
}

func (s *statsRepoStub) ReplaceMinMeritStats(ctx context.Context, stats *models.MinMeritStats) error {
	s.replaced = append(s.replaced, *stats)
	return nil
}

func (s *statsRepoStub) FindMinMeritStats(ctx context.Context, programName string, round models.Round, group models.SelectionGroup) (*models.MinMeritStats, error) {
	key := programName + "/" + string(round) + "/" + string(group)
	stats, ok := s.stats[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stats, nil
}

func (s *statsRepoStub) ProgramLikes(ctx context.Context, programID string) (int, error) {
	return 0, nil
}

func (s *statsRepoStub) UniversityLikes(ctx context.Context, universityID string) (int, error) {
	return 0, nil
}

func newRecordHandler(repo *recordRepoStub, stats *statsRepoStub) *RecordHandler {
	statsSvc := service.NewStatsService(stats, nil, nil)
	recordSvc := service.NewRecordService(repo, statsSvc, nil, nil)
	return NewRecordHandler(recordSvc, statsSvc)
}

func TestRecordHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &recordRepoStub{records: []models.Record{
		{
			ID:             "r1",
			ProgramName:    "Datateknik",
			MinScore:       17.1,
			Year:           2023,
			Round:          models.Round1,
			Selection:      models.Selection1,
			SelectionGroup: models.GroupB1,
		},
	}}
	h := newRecordHandler(repo, &statsRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/records/export", nil)

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.True(t, strings.Contains(w.Body.String(), "Datateknik"))
}

func TestRecordHandlerExportUnsupportedFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newRecordHandler(&recordRepoStub{}, &statsRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/records/export?format=xlsx", nil)

	h.Export(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordHandlerStatsUnrecordedKeyIsZero(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newRecordHandler(&recordRepoStub{}, &statsRepoStub{stats: map[string]*models.MinMeritStats{}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/records/stats?programName=Datateknik&round=round1&selectionGroup=B1", nil)

	h.Stats(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"score":0`)
}

func TestRecordHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newRecordHandler(&recordRepoStub{}, &statsRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/records", bytes.NewReader([]byte(`not json`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordHandlerCreateTriggersRecompute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &recordRepoStub{}
	stats := &statsRepoStub{}
	h := newRecordHandler(repo, stats)

	body := []byte(`{
		"program_name": "Datateknik",
		"min_score": 17.1,
		"num_of_applicants": 340,
		"num_of_qualified": 300,
		"accepted_applicants": 120,
		"year": 2023,
		"round": "round1",
		"selection": "selection1",
		"selection_group": "B1"
	}`)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/records", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.created)
	require.Len(t, stats.replaced, 1)
	assert.Equal(t, "Datateknik", stats.replaced[0].ProgramName)
}
