package repository

import (
	"context"

	"github.com/ayah-search-api/internal/models"
)

// VerseRepository defines read access to the verse text store. The store is
// populated by ingestion, which is external to this service.
type VerseRepository interface {
	// MatchExact returns verses whose text contains the query,
	// case-insensitively, ordered by (chapter, seq).
	MatchExact(ctx context.Context, language, query string, limit int) ([]models.Verse, error)

	// MatchFuzzy returns verses by trigram similarity with the store's raw
	// similarity score, best first.
	MatchFuzzy(ctx context.Context, language, query string, limit int) ([]models.ScoredVerse, error)

	// MatchFullText returns verses by full-text relevance with the store's
	// raw rank score, best first.
	MatchFullText(ctx context.Context, language, query string, limit int) ([]models.ScoredVerse, error)

	// GetByIDs returns the verses with the given identifiers, restricted to
	// one language.
	GetByIDs(ctx context.Context, language string, ids []int64) ([]models.Verse, error)

	// ListForEmbedding pages through verses of a language in id order,
	// starting after afterID. When model is non-empty, verses that already
	// have an embedding record for that model are skipped.
	ListForEmbedding(ctx context.Context, language, model string, afterID int64, limit int) ([]models.Verse, error)
}

// EmbeddingRepository defines access to persisted embedding vectors.
type EmbeddingRepository interface {
	// Upsert writes one embedding record, overwriting any existing record
	// for the same (verse, language, model).
	Upsert(ctx context.Context, record *models.EmbeddingRecord) error

	// Nearest returns the verses closest to the given vector by cosine
	// distance, filtered to one language and model. Scores are similarities
	// in [0,1].
	Nearest(ctx context.Context, embedding []float32, language, model string, limit int) ([]models.ScoredVerse, error)

	// EmbeddedIDs reports which of the given verses already have a record
	// for the given model.
	EmbeddedIDs(ctx context.Context, language, model string, ids []int64) (map[int64]bool, error)

	// DeleteByModel removes every record for a retired model identifier and
	// returns how many were deleted.
	DeleteByModel(ctx context.Context, model string) (int64, error)
}
