// Package search implements approximate name matching for universities and
// programs: case- and diacritic-insensitive normalization followed by
// Levenshtein re-ranking against a similarity threshold.
package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Candidate is a searchable entity name with its identifier.
type Candidate struct {
	ID   string
	Name string
}

// Match is a candidate that passed the similarity threshold.
type Match struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// Matcher scores query strings against candidate names. Zero-value is not
// usable; construct with NewMatcher.
type Matcher struct {
	threshold float64
	fold      transform.Transformer
}

// NewMatcher returns a matcher that accepts candidates whose normalized
// similarity is at least threshold (0 accepts everything, 1 requires an
// exact normalized match).
func NewMatcher(threshold float64) *Matcher {
	return &Matcher{
		threshold: threshold,
		fold:      transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

// Normalize lowercases and strips combining marks so that "Göteborg" and
// "goteborg" compare equal. Callers feeding tokens to the candidate
// retrieval stage fold them through here first.
func (m *Matcher) Normalize(s string) string {
	folded, _, err := transform.String(m.fold, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Similarity scores the query against the whole name and against each of its
// words, returning the best, so a short query like "lund" still matches
// "Lunds universitet". Each score is 1 - dist/maxLen over the normalized
// strings, in [0, 1].
func (m *Matcher) Similarity(query, name string) float64 {
	a, b := m.Normalize(query), m.Normalize(name)
	best := ratio(a, b)
	if a == "" || best == 1 {
		return best
	}
	for _, token := range strings.Fields(b) {
		if sim := ratio(a, token); sim > best {
			best = sim
		}
	}
	return best
}

func ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// Rank scores every candidate and returns those at or above the threshold,
// best first. Ties break on name so the order is stable across calls.
func (m *Matcher) Rank(query string, candidates []Candidate) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		sim := m.Similarity(query, c.Name)
		if sim >= m.threshold {
			matches = append(matches, Match{ID: c.ID, Name: c.Name, Similarity: sim})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Name < matches[j].Name
	})
	return matches
}

// ContainsFold reports whether name contains query after normalization.
// Used for the cheap candidate pre-filter before Levenshtein re-ranking.
func (m *Matcher) ContainsFold(query, name string) bool {
	return strings.Contains(m.Normalize(name), m.Normalize(query))
}
