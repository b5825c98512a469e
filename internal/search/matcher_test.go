package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityDiacriticFold(t *testing.T) {
	m := NewMatcher(0.6)
	assert.Equal(t, 1.0, m.Similarity("göteborg", "Goteborg"))
	assert.Equal(t, 1.0, m.Similarity("Malmö", "malmo"))
}

func TestSimilarityMisspelling(t *testing.T) {
	m := NewMatcher(0.6)

	// distance("goteborg","gothenburg") = 3 over length 10 → 0.7
	sim := m.Similarity("Göteborg", "Gothenburg")
	assert.InDelta(t, 0.7, sim, 1e-9)

	// Unrelated city names fall well under the threshold.
	assert.Less(t, m.Similarity("Göteborg", "Stockholm"), 0.6)
}

func TestSimilarityShortQueryMatchesToken(t *testing.T) {
	m := NewMatcher(0.6)

	// "lund" vs the token "lunds": distance 1 over length 5 → 0.8,
	// well above the whole-name score.
	sim := m.Similarity("Lund", "Lunds universitet")
	assert.InDelta(t, 0.8, sim, 1e-9)
}

func TestSimilarityEmptyStrings(t *testing.T) {
	m := NewMatcher(0.6)
	assert.Equal(t, 1.0, m.Similarity("", ""))
	assert.Equal(t, 0.0, m.Similarity("", "Lund"))
}

func TestRankOrdersByScore(t *testing.T) {
	m := NewMatcher(0.6)
	candidates := []Candidate{
		{ID: "1", Name: "Stockholm University"},
		{ID: "2", Name: "Gothenburg University"},
		{ID: "3", Name: "Gothenburg Institute"},
		{ID: "4", Name: "Gothenburg Universty"},
	}

	matches := m.Rank("Gothenburg University", candidates)
	assert.Len(t, matches, 3)
	assert.Equal(t, "2", matches[0].ID)
	assert.Equal(t, 1.0, matches[0].Similarity)
	assert.Equal(t, "4", matches[1].ID)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Similarity, matches[i].Similarity)
	}
}

func TestRankEmptyCandidates(t *testing.T) {
	m := NewMatcher(0.6)
	assert.Empty(t, m.Rank("anything", nil))
}

func TestContainsFold(t *testing.T) {
	m := NewMatcher(0.6)
	assert.True(t, m.ContainsFold("göteborg", "Göteborgs Universitet"))
	assert.True(t, m.ContainsFold("LUND", "Lunds Tekniska Högskola"))
	assert.False(t, m.ContainsFold("uppsala", "Lund"))
}
