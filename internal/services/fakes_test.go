package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ayah-search-api/internal/models"
	schemaservices "github.com/ayah-search-api/pkg/schema/services"
)

// fakeVerseRepo serves a small in-memory corpus.
type fakeVerseRepo struct {
	verses []models.Verse

	// raw scores per verse id; verses absent from the map do not match
	fuzzyScores    map[int64]float64
	fullTextScores map[int64]float64

	failExact    error
	failFuzzy    error
	failFullText error

	// embedded backs the model-skip filter of ListForEmbedding
	embedded *fakeEmbeddingRepo
}

func (f *fakeVerseRepo) MatchExact(_ context.Context, language, query string, limit int) ([]models.Verse, error) {
	if f.failExact != nil {
		return nil, f.failExact
	}
	var out []models.Verse
	for _, v := range f.verses {
		if v.Language == language && strings.Contains(strings.ToLower(v.Text), strings.ToLower(query)) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chapter != out[j].Chapter {
			return out[i].Chapter < out[j].Chapter
		}
		return out[i].Seq < out[j].Seq
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeVerseRepo) MatchFuzzy(_ context.Context, language, _ string, limit int) ([]models.ScoredVerse, error) {
	if f.failFuzzy != nil {
		return nil, f.failFuzzy
	}
	return f.scored(language, f.fuzzyScores, limit), nil
}

func (f *fakeVerseRepo) MatchFullText(_ context.Context, language, _ string, limit int) ([]models.ScoredVerse, error) {
	if f.failFullText != nil {
		return nil, f.failFullText
	}
	return f.scored(language, f.fullTextScores, limit), nil
}

func (f *fakeVerseRepo) scored(language string, scores map[int64]float64, limit int) []models.ScoredVerse {
	var out []models.ScoredVerse
	for _, v := range f.verses {
		if v.Language != language {
			continue
		}
		if score, ok := scores[v.ID]; ok {
			out = append(out, models.ScoredVerse{Verse: v, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *fakeVerseRepo) GetByIDs(_ context.Context, language string, ids []int64) ([]models.Verse, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Verse
	for _, v := range f.verses {
		if v.Language == language && want[v.ID] {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeVerseRepo) ListForEmbedding(_ context.Context, language, model string, afterID int64, limit int) ([]models.Verse, error) {
	var out []models.Verse
	for _, v := range f.verses {
		if v.Language != language || v.ID <= afterID {
			continue
		}
		if model != "" && f.embedded != nil {
			f.embedded.mu.Lock()
			_, has := f.embedded.records[recordKey(v.ID, v.Language, model)]
			f.embedded.mu.Unlock()
			if has {
				continue
			}
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeEmbeddingRepo keeps records in memory keyed by (verse, language, model).
type fakeEmbeddingRepo struct {
	mu      sync.Mutex
	records map[string]models.EmbeddingRecord
	upserts int

	nearest     []models.ScoredVerse
	failNearest error
}

func recordKey(verseID int64, language, model string) string {
	return fmt.Sprintf("%d|%s|%s", verseID, language, model)
}

func newFakeEmbeddingRepo() *fakeEmbeddingRepo {
	return &fakeEmbeddingRepo{records: map[string]models.EmbeddingRecord{}}
}

func (f *fakeEmbeddingRepo) Upsert(_ context.Context, record *models.EmbeddingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.records[recordKey(record.VerseID, record.Language, record.Model)] = *record
	return nil
}

func (f *fakeEmbeddingRepo) Nearest(_ context.Context, _ []float32, language, model string, limit int) ([]models.ScoredVerse, error) {
	if f.failNearest != nil {
		return nil, f.failNearest
	}
	out := f.nearest
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEmbeddingRepo) EmbeddedIDs(_ context.Context, language, model string, ids []int64) (map[int64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	embedded := make(map[int64]bool)
	for _, id := range ids {
		if _, ok := f.records[recordKey(id, language, model)]; ok {
			embedded[id] = true
		}
	}
	return embedded, nil
}

func (f *fakeEmbeddingRepo) DeleteByModel(_ context.Context, model string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for key := range f.records {
		if strings.HasSuffix(key, "|"+model) {
			delete(f.records, key)
			deleted++
		}
	}
	return deleted, nil
}

// fakeEmbedder produces deterministic vectors, with optional per-text or
// global failures.
type fakeEmbedder struct {
	model     string
	dimension int

	unavailable bool
	failTexts   map[string]error
	// vectorLen overrides the produced length when non-zero
	vectorLen int
}

func (f *fakeEmbedder) Model() string  { return f.model }
func (f *fakeEmbedder) Dimension() int { return f.dimension }

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string, _ schemaservices.TaskType) ([]schemaservices.EmbedResult, error) {
	results := make([]schemaservices.EmbedResult, len(texts))
	for i, text := range texts {
		if f.unavailable {
			results[i] = schemaservices.EmbedResult{Err: schemaservices.ErrProviderUnavailable}
			continue
		}
		if err, ok := f.failTexts[text]; ok {
			results[i] = schemaservices.EmbedResult{Err: err}
			continue
		}
		n := f.dimension
		if f.vectorLen != 0 {
			n = f.vectorLen
		}
		vec := make([]float32, n)
		for j := range vec {
			vec[j] = 0.1
		}
		results[i] = schemaservices.EmbedResult{Embedding: vec}
	}
	return results, nil
}
