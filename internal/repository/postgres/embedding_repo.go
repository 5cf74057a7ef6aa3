package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/ayah-search-api/internal/models"
	"github.com/ayah-search-api/internal/repository"
)

// EmbeddingRepository implements repository.EmbeddingRepository for
// PostgreSQL with pgvector.
type EmbeddingRepository struct {
	db *sqlx.DB
}

// NewEmbeddingRepository creates a new PostgreSQL embedding repository.
func NewEmbeddingRepository(db *sqlx.DB) repository.EmbeddingRepository {
	return &EmbeddingRepository{db: db}
}

// Upsert writes one embedding record. The conflict key makes concurrent
// writers for the same (verse, language, model) commute: content is
// deterministic, so last write wins safely.
func (r *EmbeddingRepository) Upsert(ctx context.Context, record *models.EmbeddingRecord) error {
	vec := pgvector.NewVector(record.Embedding)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO verse_embeddings (verse_id, language, model, embedding, dimension, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (verse_id, language, model)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			dimension = EXCLUDED.dimension,
			created_at = EXCLUDED.created_at
	`, record.VerseID, record.Language, record.Model, vec, record.Dimension, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert verse embedding: %w", err)
	}
	return nil
}

// Nearest performs cosine nearest-neighbor search filtered by language and
// model. Cosine distance is in [0,2]; the returned score is 1 - distance
// clamped to [0,1], so antipodal vectors score 0 rather than negative.
func (r *EmbeddingRepository) Nearest(ctx context.Context, embedding []float32, language, model string, limit int) ([]models.ScoredVerse, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := r.db.QueryxContext(ctx, `
		SELECT v.id, v.language, v.chapter, v.seq, v.text,
		       GREATEST(0, LEAST(1, 1 - (e.embedding <=> $1::vector))) AS score
		FROM verse_embeddings e
		JOIN verses v ON v.id = e.verse_id AND v.language = e.language
		WHERE e.language = $2 AND e.model = $3
		ORDER BY e.embedding <=> $1::vector
		LIMIT $4
	`, vec, language, model, limit)
	if err != nil {
		return nil, fmt.Errorf("nearest verse embeddings: %w", err)
	}
	defer rows.Close()

	return scanScoredVerses(rows)
}

// EmbeddedIDs reports which of the given verses already carry an embedding
// for the given model.
func (r *EmbeddingRepository) EmbeddedIDs(ctx context.Context, language, model string, ids []int64) (map[int64]bool, error) {
	embedded := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return embedded, nil
	}

	query, args, err := sqlx.In(`
		SELECT verse_id FROM verse_embeddings
		WHERE language = ? AND model = ? AND verse_id IN (?)
	`, language, model, ids)
	if err != nil {
		return nil, fmt.Errorf("build embedded ids query: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query embedded ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan embedded id: %w", err)
		}
		embedded[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embedded ids: %w", err)
	}
	return embedded, nil
}

// DeleteByModel bulk-deletes every record of a retired model.
func (r *EmbeddingRepository) DeleteByModel(ctx context.Context, model string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM verse_embeddings WHERE model = $1`, model)
	if err != nil {
		return 0, fmt.Errorf("delete embeddings by model: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted embeddings: %w", err)
	}
	return deleted, nil
}
