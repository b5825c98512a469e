package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swediversity/swediversity-api/internal/models"
	"github.com/swediversity/swediversity-api/internal/search"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type mockUniversitySearchRepo struct {
	universities []models.University
	calls        int
}

func (m *mockUniversitySearchRepo) List(ctx context.Context) ([]models.University, error) {
	return m.universities, nil
}

func (m *mockUniversitySearchRepo) SearchCandidates(ctx context.Context, tokens []string) ([]models.University, error) {
	m.calls++
	return m.universities, nil
}

type mockProgramSearchRepo struct {
	programs []models.Program
}

func (m *mockProgramSearchRepo) List(ctx context.Context) ([]models.Program, error) {
	return m.programs, nil
}

func (m *mockProgramSearchRepo) SearchCandidates(ctx context.Context, tokens []string) ([]models.Program, error) {
	return m.programs, nil
}

// indexedUniversityRepo mimics the SQL retrieval stage: a candidate is
// returned only when its name contains one of the tokens, case-insensitively,
// the way ILIKE matches. List returns the whole corpus.
type indexedUniversityRepo struct {
	universities []models.University
	listCalls    int
}

func (m *indexedUniversityRepo) List(ctx context.Context) ([]models.University, error) {
	m.listCalls++
	return m.universities, nil
}

func (m *indexedUniversityRepo) SearchCandidates(ctx context.Context, tokens []string) ([]models.University, error) {
	var hits []models.University
	for _, u := range m.universities {
		name := strings.ToLower(u.Name)
		for _, token := range tokens {
			if strings.Contains(name, strings.ToLower(token)) {
				hits = append(hits, u)
				break
			}
		}
	}
	return hits, nil
}

type memoryCache struct {
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.values = map[string][]byte{}
	return nil
}

func newTestSearchService(unis *mockUniversitySearchRepo, cache searchCache) *SearchService {
	return NewSearchService(unis, &mockProgramSearchRepo{}, search.NewMatcher(0.6), cache, time.Minute, nil, nil)
}

func TestSearchRanksAndFilters(t *testing.T) {
	unis := &mockUniversitySearchRepo{universities: []models.University{
		{ID: "1", Name: "Gothenburg University"},
		{ID: "2", Name: "Stockholm University"},
	}}
	svc := newTestSearchService(unis, nil)

	matches, err := svc.Universities(context.Background(), "Goteborg University")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "1", matches[0].ID)
}

func TestSearchMisspelledQueryFallsBackToFullCorpus(t *testing.T) {
	unis := &indexedUniversityRepo{universities: []models.University{
		{ID: "1", Name: "University of Gothenburg"},
		{ID: "2", Name: "Stockholm University"},
	}}
	svc := NewSearchService(unis, &mockProgramSearchRepo{}, search.NewMatcher(0.6), nil, time.Minute, nil, nil)

	// No stored name contains "göteborg" in any folded form, so the index
	// stage finds nothing and the re-ranking stage must see the corpus.
	matches, err := svc.Universities(context.Background(), "Göteborg")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "1", matches[0].ID)
	assert.Equal(t, 1, unis.listCalls)
}

func TestSearchTokenHitSkipsFallback(t *testing.T) {
	unis := &indexedUniversityRepo{universities: []models.University{
		{ID: "1", Name: "Malmo University"},
		{ID: "2", Name: "Stockholm University"},
	}}
	svc := NewSearchService(unis, &mockProgramSearchRepo{}, search.NewMatcher(0.6), nil, time.Minute, nil, nil)

	// "Malmö" folds to "malmo" before the index stage, so the indexed
	// lookup hits directly.
	matches, err := svc.Universities(context.Background(), "Malmö")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "1", matches[0].ID)
	assert.Equal(t, 0, unis.listCalls)
}

func TestSearchEmptyQueryRejected(t *testing.T) {
	svc := newTestSearchService(&mockUniversitySearchRepo{}, nil)

	_, err := svc.Universities(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSearchNoCandidatesReturnsEmptySlice(t *testing.T) {
	svc := newTestSearchService(&mockUniversitySearchRepo{}, nil)

	matches, err := svc.Universities(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestSearchUsesCacheOnRepeat(t *testing.T) {
	unis := &mockUniversitySearchRepo{universities: []models.University{{ID: "1", Name: "Lund University"}}}
	svc := newTestSearchService(unis, newMemoryCache())

	first, err := svc.Universities(context.Background(), "Lund University")
	require.NoError(t, err)
	second, err := svc.Universities(context.Background(), "Lund University")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, unis.calls)
}

func TestInvalidateDropsCachedResults(t *testing.T) {
	unis := &mockUniversitySearchRepo{universities: []models.University{{ID: "1", Name: "Lund University"}}}
	cache := newMemoryCache()
	svc := newTestSearchService(unis, cache)

	_, err := svc.Universities(context.Background(), "Lund University")
	require.NoError(t, err)
	require.NotEmpty(t, cache.values)

	svc.Invalidate(context.Background(), "universities")
	assert.Empty(t, cache.values)
}

func TestSearchPrograms(t *testing.T) {
	programs := &mockProgramSearchRepo{programs: []models.Program{{ID: "p1", Name: "Datateknik"}}}
	svc := NewSearchService(&mockUniversitySearchRepo{}, programs, search.NewMatcher(0.6), nil, time.Minute, nil, nil)

	matches, err := svc.Programs(context.Background(), "datateknik")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].Similarity)
}
