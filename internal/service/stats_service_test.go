package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swediversity/swediversity-api/internal/models"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type mockStatsRepo struct {
	mean        float64
	meanErr     error
	replaced    []*models.MinMeritStats
	replaceErr  error
	stored      *models.MinMeritStats
	programHits int
	uniHits     int
}

func (m *mockStatsRepo) MeanMinScore(ctx context.Context, programName string, round models.Round, group models.SelectionGroup) (float64, error) {
	if m.meanErr != nil {
		return 0, m.meanErr
	}
	return m.mean, nil
}

func (m *mockStatsRepo) ReplaceMinMeritStats(ctx context.Context, stats *models.MinMeritStats) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaced = append(m.replaced, stats)
	return nil
}

func (m *mockStatsRepo) FindMinMeritStats(ctx context.Context, programName string, round models.Round, group models.SelectionGroup) (*models.MinMeritStats, error) {
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	return m.stored, nil
}

func (m *mockStatsRepo) ProgramLikes(ctx context.Context, programID string) (int, error) {
	return m.programHits, nil
}

func (m *mockStatsRepo) UniversityLikes(ctx context.Context, universityID string) (int, error) {
	return m.uniHits, nil
}

func TestRecomputeReplacesWithMean(t *testing.T) {
	repo := &mockStatsRepo{mean: 17.4}
	svc := NewStatsService(repo, nil, nil)

	svc.Recompute(context.Background(), "Datateknik", models.Round1, models.GroupB1)

	require.Len(t, repo.replaced, 1)
	assert.Equal(t, 17.4, repo.replaced[0].Score)
	assert.Equal(t, "Datateknik", repo.replaced[0].ProgramName)
}

func TestRecomputeEmptySetWritesZero(t *testing.T) {
	repo := &mockStatsRepo{mean: 0}
	svc := NewStatsService(repo, nil, nil)

	svc.Recompute(context.Background(), "Datateknik", models.Round2, models.GroupB2)

	require.Len(t, repo.replaced, 1)
	assert.Zero(t, repo.replaced[0].Score)
}

func TestRecomputeSwallowsFailures(t *testing.T) {
	repo := &mockStatsRepo{meanErr: assert.AnError}
	svc := NewStatsService(repo, nil, nil)

	// Must not panic or surface the error.
	svc.Recompute(context.Background(), "Datateknik", models.Round1, models.GroupB1)
	assert.Empty(t, repo.replaced)
}

func TestSelectionGroupAvgValidatesKey(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{}, nil, nil)

	_, err := svc.SelectionGroupAvg(context.Background(), "Datateknik", "round9", models.GroupB1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.SelectionGroupAvg(context.Background(), "", models.Round1, models.GroupB1)
	require.Error(t, err)

	_, err = svc.SelectionGroupAvg(context.Background(), "Datateknik", models.Round1, "Z9")
	require.Error(t, err)
}

func TestSelectionGroupAvgNeverRecordedIsZero(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{}, nil, nil)

	stats, err := svc.SelectionGroupAvg(context.Background(), "Datateknik", models.Round1, models.GroupB1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.Score)
	assert.Equal(t, "Datateknik", stats.ProgramName)
	assert.Equal(t, models.Round1, stats.Round)
	assert.Equal(t, models.GroupB1, stats.SelectionGroup)
}

func TestSelectionGroupAvgMissFallsBackToMean(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{mean: 14.8}, nil, nil)

	stats, err := svc.SelectionGroupAvg(context.Background(), "Datateknik", models.Round2, models.GroupB2)
	require.NoError(t, err)
	assert.Equal(t, 14.8, stats.Score)
}

func TestSelectionGroupAvgReturnsStored(t *testing.T) {
	stored := &models.MinMeritStats{ProgramName: "Datateknik", Round: models.Round1, SelectionGroup: models.GroupB1, Score: 16.2}
	svc := NewStatsService(&mockStatsRepo{stored: stored}, nil, nil)

	stats, err := svc.SelectionGroupAvg(context.Background(), "Datateknik", models.Round1, models.GroupB1)
	require.NoError(t, err)
	assert.Equal(t, 16.2, stats.Score)
}

func TestLikeCounts(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{programHits: 3, uniHits: 7}, nil, nil)

	programLikes, err := svc.ProgramLikes(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, programLikes)

	uniLikes, err := svc.UniversityLikes(context.Background(), "uni1")
	require.NoError(t, err)
	assert.Equal(t, 7, uniLikes)
}
