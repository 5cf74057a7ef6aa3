package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ayah-search-api/internal/models"
	"github.com/ayah-search-api/internal/repository"
)

// trgmFloor discards near-random trigram matches before they reach scoring.
const trgmFloor = 0.1

// VerseRepository implements repository.VerseRepository for PostgreSQL.
// Fuzzy matching relies on the pg_trgm extension; full-text matching on the
// built-in tsvector machinery with the simple configuration, which keeps
// behavior uniform across languages.
type VerseRepository struct {
	db *sqlx.DB
}

// NewVerseRepository creates a new PostgreSQL verse repository.
func NewVerseRepository(db *sqlx.DB) repository.VerseRepository {
	return &VerseRepository{db: db}
}

// MatchExact performs case-insensitive substring containment.
func (r *VerseRepository) MatchExact(ctx context.Context, language, query string, limit int) ([]models.Verse, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT id, language, chapter, seq, text
		FROM verses
		WHERE language = $1 AND text ILIKE '%' || $2 || '%'
		ORDER BY chapter, seq
		LIMIT $3
	`, language, query, limit)
	if err != nil {
		return nil, fmt.Errorf("exact match verses: %w", err)
	}
	defer rows.Close()

	var results []models.Verse
	for rows.Next() {
		var v models.Verse
		if err := rows.StructScan(&v); err != nil {
			return nil, fmt.Errorf("scan verse: %w", err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verses: %w", err)
	}

	if results == nil {
		results = []models.Verse{}
	}
	return results, nil
}

// MatchFuzzy scores verses by pg_trgm similarity.
func (r *VerseRepository) MatchFuzzy(ctx context.Context, language, query string, limit int) ([]models.ScoredVerse, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT id, language, chapter, seq, text,
		       similarity(text, $2) AS score
		FROM verses
		WHERE language = $1 AND similarity(text, $2) > $3
		ORDER BY score DESC, chapter, seq
		LIMIT $4
	`, language, query, trgmFloor, limit)
	if err != nil {
		return nil, fmt.Errorf("fuzzy match verses: %w", err)
	}
	defer rows.Close()

	return scanScoredVerses(rows)
}

// MatchFullText scores verses by ts_rank over a plain query.
func (r *VerseRepository) MatchFullText(ctx context.Context, language, query string, limit int) ([]models.ScoredVerse, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT id, language, chapter, seq, text,
		       ts_rank(to_tsvector('simple', text), plainto_tsquery('simple', $2)) AS score
		FROM verses
		WHERE language = $1
		  AND to_tsvector('simple', text) @@ plainto_tsquery('simple', $2)
		ORDER BY score DESC, chapter, seq
		LIMIT $3
	`, language, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fulltext match verses: %w", err)
	}
	defer rows.Close()

	return scanScoredVerses(rows)
}

// GetByIDs returns the requested verses in (chapter, seq) order.
func (r *VerseRepository) GetByIDs(ctx context.Context, language string, ids []int64) ([]models.Verse, error) {
	if len(ids) == 0 {
		return []models.Verse{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, language, chapter, seq, text
		FROM verses
		WHERE language = ? AND id IN (?)
		ORDER BY chapter, seq
	`, language, ids)
	if err != nil {
		return nil, fmt.Errorf("build verses query: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("get verses by ids: %w", err)
	}
	defer rows.Close()

	var results []models.Verse
	for rows.Next() {
		var v models.Verse
		if err := rows.StructScan(&v); err != nil {
			return nil, fmt.Errorf("scan verse: %w", err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verses: %w", err)
	}

	if results == nil {
		results = []models.Verse{}
	}
	return results, nil
}

// ListForEmbedding pages verses in id order, skipping ones already embedded
// with the given model.
func (r *VerseRepository) ListForEmbedding(ctx context.Context, language, model string, afterID int64, limit int) ([]models.Verse, error) {
	var rows *sqlx.Rows
	var err error
	if model == "" {
		rows, err = r.db.QueryxContext(ctx, `
			SELECT id, language, chapter, seq, text
			FROM verses
			WHERE language = $1 AND id > $2
			ORDER BY id
			LIMIT $3
		`, language, afterID, limit)
	} else {
		rows, err = r.db.QueryxContext(ctx, `
			SELECT v.id, v.language, v.chapter, v.seq, v.text
			FROM verses v
			LEFT JOIN verse_embeddings e
			  ON e.verse_id = v.id AND e.language = v.language AND e.model = $2
			WHERE v.language = $1 AND v.id > $3 AND e.verse_id IS NULL
			ORDER BY v.id
			LIMIT $4
		`, language, model, afterID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list verses for embedding: %w", err)
	}
	defer rows.Close()

	var results []models.Verse
	for rows.Next() {
		var v models.Verse
		if err := rows.StructScan(&v); err != nil {
			return nil, fmt.Errorf("scan verse: %w", err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verses: %w", err)
	}

	if results == nil {
		results = []models.Verse{}
	}
	return results, nil
}

func scanScoredVerses(rows *sqlx.Rows) ([]models.ScoredVerse, error) {
	var results []models.ScoredVerse
	for rows.Next() {
		var v models.ScoredVerse
		if err := rows.Scan(&v.ID, &v.Language, &v.Chapter, &v.Seq, &v.Text, &v.Score); err != nil {
			return nil, fmt.Errorf("scan scored verse: %w", err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scored verses: %w", err)
	}

	if results == nil {
		results = []models.ScoredVerse{}
	}
	return results, nil
}
