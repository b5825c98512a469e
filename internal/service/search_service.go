package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/swediversity/swediversity-api/internal/models"
	"github.com/swediversity/swediversity-api/internal/search"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type universitySearchRepository interface {
	List(ctx context.Context) ([]models.University, error)
	SearchCandidates(ctx context.Context, tokens []string) ([]models.University, error)
}

type programSearchRepository interface {
	List(ctx context.Context) ([]models.Program, error)
	SearchCandidates(ctx context.Context, tokens []string) ([]models.Program, error)
}

type searchCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SearchService runs the two-stage fuzzy search over university and program
// names: a cheap indexed candidate retrieval followed by Levenshtein
// re-ranking. Results are cached in Redis for a short window.
type SearchService struct {
	universities universitySearchRepository
	programs     programSearchRepository
	matcher      *search.Matcher
	cache        searchCache
	cacheTTL     time.Duration
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewSearchService constructs a SearchService instance. cache and metrics
// may be nil.
func NewSearchService(universities universitySearchRepository, programs programSearchRepository, matcher *search.Matcher, cache searchCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		universities: universities,
		programs:     programs,
		matcher:      matcher,
		cache:        cache,
		cacheTTL:     cacheTTL,
		metrics:      metrics,
		logger:       logger,
	}
}

// Universities returns universities ranked by similarity to the query.
// When indexed token matching finds nothing (a misspelling the index cannot
// bridge, such as "Göteborg" against a stored "Gothenburg"), the full corpus
// is retrieved and left to the re-ranking stage.
func (s *SearchService) Universities(ctx context.Context, query string) ([]search.Match, error) {
	return s.run(ctx, "universities", query, func(tokens []string) ([]search.Candidate, error) {
		universities, err := s.universities.SearchCandidates(ctx, tokens)
		if err != nil {
			return nil, err
		}
		if len(universities) == 0 {
			if universities, err = s.universities.List(ctx); err != nil {
				return nil, err
			}
		}
		candidates := make([]search.Candidate, 0, len(universities))
		for _, u := range universities {
			candidates = append(candidates, search.Candidate{ID: u.ID, Name: u.Name})
		}
		return candidates, nil
	})
}

// Programs returns programs ranked by similarity to the query.
func (s *SearchService) Programs(ctx context.Context, query string) ([]search.Match, error) {
	return s.run(ctx, "programs", query, func(tokens []string) ([]search.Candidate, error) {
		programs, err := s.programs.SearchCandidates(ctx, tokens)
		if err != nil {
			return nil, err
		}
		if len(programs) == 0 {
			if programs, err = s.programs.List(ctx); err != nil {
				return nil, err
			}
		}
		candidates := make([]search.Candidate, 0, len(programs))
		for _, p := range programs {
			candidates = append(candidates, search.Candidate{ID: p.ID, Name: p.Name})
		}
		return candidates, nil
	})
}

// Invalidate drops the cached search results for one corpus. Called after
// admin writes so stale names stop matching promptly.
func (s *SearchService) Invalidate(ctx context.Context, corpus string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, cacheKey(corpus, "*")); err != nil {
		s.logger.Warn("failed to invalidate search cache", zap.String("corpus", corpus), zap.Error(err))
	}
}

func (s *SearchService) run(ctx context.Context, corpus, query string, retrieve func(tokens []string) ([]search.Candidate, error)) ([]search.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "query must not be empty")
	}

	started := time.Now()
	defer func() {
		s.metrics.ObserveSearch(corpus, time.Since(started))
	}()

	key := cacheKey(corpus, strings.ToLower(query))
	if s.cache != nil {
		var cached []search.Match
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheLookup(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("search cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
	}

	// Diacritics are folded out of the tokens so "Malmö" still hits an
	// unaccented stored name at the index stage.
	candidates, err := retrieve(strings.Fields(s.matcher.Normalize(query)))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to retrieve search candidates")
	}

	matches := s.matcher.Rank(query, candidates)
	if matches == nil {
		matches = []search.Match{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, matches, s.cacheTTL); err != nil {
			s.logger.Warn("search cache write failed", zap.Error(err))
		}
	}
	return matches, nil
}

func cacheKey(corpus, query string) string {
	return fmt.Sprintf("search:%s:%s", corpus, query)
}
