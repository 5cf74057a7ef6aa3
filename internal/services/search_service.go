package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ayah-search-api/internal/models"
	"github.com/ayah-search-api/internal/repository"
	schemaservices "github.com/ayah-search-api/pkg/schema/services"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// SearchService answers free-text queries over the verse corpus with ranked,
// deduplicated matches. It is stateless across requests: the only shared
// state is the read-only stores and the provider config snapshot taken at
// construction.
type SearchService struct {
	verses     repository.VerseRepository
	embeddings repository.EmbeddingRepository
	embedder   schemaservices.Embedder
	provider   schemaservices.ProviderConfig
	cache      *ResultCache

	languages      map[string]bool
	matcherTimeout time.Duration
	logger         *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(
	verses repository.VerseRepository,
	embeddings repository.EmbeddingRepository,
	embedder schemaservices.Embedder,
	provider schemaservices.ProviderConfig,
	cache *ResultCache,
	supportedLanguages []string,
	matcherTimeout time.Duration,
	logger *slog.Logger,
) *SearchService {
	langs := make(map[string]bool, len(supportedLanguages))
	for _, l := range supportedLanguages {
		langs[l] = true
	}
	if matcherTimeout <= 0 {
		matcherTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		verses:         verses,
		embeddings:     embeddings,
		embedder:       embedder,
		provider:       provider,
		cache:          cache,
		languages:      langs,
		matcherTimeout: matcherTimeout,
		logger:         logger,
	}
}

// Search runs one query. An empty result list is a valid answer, never an
// error.
func (s *SearchService) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrInvalidQuery
	}
	if !s.languages[req.Language] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLanguage, req.Language)
	}

	limit := req.Limit
	switch {
	case limit == 0:
		limit = defaultLimit
	case limit < 1:
		limit = 1
	case limit > maxLimit:
		limit = maxLimit
	}

	method := req.Method
	if method == "" || method == models.MethodAuto {
		method = chooseMethod(query, s.provider.Enabled)
	}

	key := CacheKey(query, req.Language, method, limit)
	if cached, ok := s.cache.Get(key); ok {
		return &models.SearchResponse{Query: query, Method: method, Results: cached}, nil
	}

	var results []models.RankedResult
	var degraded bool
	var err error
	switch method {
	case models.MethodExact, models.MethodFuzzy, models.MethodFullText, models.MethodSemantic:
		results, err = s.searchSingle(ctx, method, query, req.Language, limit)
	case models.MethodHybrid:
		results, degraded, err = s.searchHybrid(ctx, query, req.Language, limit)
	default:
		return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidQuery, method)
	}
	if err != nil {
		return nil, err
	}

	// Results computed while a matcher was down are partial; caching them
	// would pin the outage for the full TTL.
	if !degraded {
		s.cache.Put(key, results)
	}
	return &models.SearchResponse{Query: query, Method: method, Results: results}, nil
}

// matcherOutput is what one matcher contributes to a query. A skipped
// matcher could not participate at all (no embedding provider); it counts
// neither as a success nor as a failure.
type matcherOutput struct {
	candidates []models.SearchCandidate
	verses     map[int64]models.Verse
	err        error
	skipped    bool
}

// searchSingle runs one matcher and returns its candidates directly,
// unweighted. A store failure is fatal here: there is no sibling method to
// fall back on.
func (s *SearchService) searchSingle(ctx context.Context, method, query, language string, limit int) ([]models.RankedResult, error) {
	out := s.runMatcher(ctx, method, query, language, limit)
	if out.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, out.err)
	}
	return rankSingle(out, limit), nil
}

// searchHybrid runs the exact, fuzzy and semantic matchers concurrently and
// merges their candidates. A failing or timed-out matcher contributes zero
// candidates; the request fails only when every matcher that could
// contribute failed, so a disabled embedding provider never converts a store
// outage into an empty success. The degraded flag reports whether any
// contributing matcher failed.
func (s *SearchService) searchHybrid(ctx context.Context, query, language string, limit int) ([]models.RankedResult, bool, error) {
	methods := []string{models.MethodExact, models.MethodFuzzy, models.MethodSemantic}
	outputs := make([]matcherOutput, len(methods))

	var wg sync.WaitGroup
	for i, method := range methods {
		wg.Add(1)
		go func(i int, method string) {
			defer wg.Done()
			mctx, cancel := context.WithTimeout(ctx, s.matcherTimeout)
			defer cancel()
			outputs[i] = s.runMatcher(mctx, method, query, language, limit)
		}(i, method)
	}
	wg.Wait()

	var candidates []models.SearchCandidate
	verses := make(map[int64]models.Verse)
	var errs []error
	contributing := 0
	for i, out := range outputs {
		if out.skipped {
			continue
		}
		contributing++
		if out.err != nil {
			s.logger.Warn("matcher degraded to zero candidates",
				"method", methods[i], "err", out.err)
			errs = append(errs, fmt.Errorf("%s: %w", methods[i], out.err))
			continue
		}
		candidates = append(candidates, out.candidates...)
		for id, v := range out.verses {
			verses[id] = v
		}
	}

	if contributing > 0 && len(errs) == contributing {
		return nil, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, errors.Join(errs...))
	}
	return combine(candidates, verses, limit), len(errs) > 0, nil
}

func (s *SearchService) runMatcher(ctx context.Context, method, query, language string, limit int) matcherOutput {
	switch method {
	case models.MethodExact:
		return s.matchExact(ctx, query, language, limit)
	case models.MethodFuzzy:
		return s.matchLexical(ctx, models.MethodFuzzy, query, language, limit)
	case models.MethodFullText:
		return s.matchLexical(ctx, models.MethodFullText, query, language, limit)
	case models.MethodSemantic:
		return s.matchSemantic(ctx, query, language, limit)
	default:
		return matcherOutput{err: fmt.Errorf("unknown method %q", method)}
	}
}

// matchExact tags substring containment matches. A match either counts or
// does not, so every candidate scores 1.0 and ordering falls back to verse
// natural order.
func (s *SearchService) matchExact(ctx context.Context, query, language string, limit int) matcherOutput {
	found, err := s.verses.MatchExact(ctx, language, query, limit)
	if err != nil {
		return matcherOutput{err: err}
	}

	out := matcherOutput{verses: make(map[int64]models.Verse, len(found))}
	for _, v := range found {
		out.candidates = append(out.candidates, models.SearchCandidate{
			VerseID: v.ID, Score: 1.0, Method: models.MethodExact,
		})
		out.verses[v.ID] = v
	}
	return out
}

// matchLexical tags trigram or full-text matches with max-normalized scores.
func (s *SearchService) matchLexical(ctx context.Context, method, query, language string, limit int) matcherOutput {
	var scored []models.ScoredVerse
	var err error
	if method == models.MethodFuzzy {
		scored, err = s.verses.MatchFuzzy(ctx, language, query, limit)
	} else {
		scored, err = s.verses.MatchFullText(ctx, language, query, limit)
	}
	if err != nil {
		return matcherOutput{err: err}
	}

	scored = normalizeScores(scored, lexicalFloor)
	out := matcherOutput{verses: make(map[int64]models.Verse, len(scored))}
	for _, sv := range scored {
		out.candidates = append(out.candidates, models.SearchCandidate{
			VerseID: sv.ID, Score: sv.Score, Method: method,
		})
		out.verses[sv.ID] = sv.Verse
	}
	return out
}

// matchSemantic embeds the query and scores nearest neighbors. Semantic
// search is an optional enhancement: a provider that cannot embed the query
// makes the matcher sit the query out, never an error.
func (s *SearchService) matchSemantic(ctx context.Context, query, language string, limit int) matcherOutput {
	embedding, err := schemaservices.EmbedQuery(ctx, s.embedder, query)
	if err != nil {
		if !errors.Is(err, schemaservices.ErrProviderUnavailable) {
			s.logger.Warn("query embedding failed", "err", err)
		}
		return matcherOutput{skipped: true}
	}

	scored, err := s.embeddings.Nearest(ctx, embedding, language, s.provider.Model, limit)
	if err != nil {
		return matcherOutput{err: err}
	}

	out := matcherOutput{verses: make(map[int64]models.Verse, len(scored))}
	for _, sv := range scored {
		out.candidates = append(out.candidates, models.SearchCandidate{
			VerseID: sv.ID, Score: sv.Score, Method: models.MethodSemantic,
		})
		out.verses[sv.ID] = sv.Verse
	}
	return out
}

// rankSingle turns one matcher's candidates into results without applying
// hybrid weights.
func rankSingle(out matcherOutput, limit int) []models.RankedResult {
	results := make([]models.RankedResult, 0, len(out.candidates))
	for _, c := range out.candidates {
		verse := out.verses[c.VerseID]
		results = append(results, models.RankedResult{
			VerseID:       c.VerseID,
			Language:      verse.Language,
			Chapter:       verse.Chapter,
			Seq:           verse.Seq,
			Text:          verse.Text,
			CombinedScore: c.Score,
			WinningMethod: c.Method,
			MethodScores:  map[string]float64{c.Method: c.Score},
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		if results[i].Chapter != results[j].Chapter {
			return results[i].Chapter < results[j].Chapter
		}
		return results[i].Seq < results[j].Seq
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
