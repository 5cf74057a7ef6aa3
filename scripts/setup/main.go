// setup_schema.go
//
// This script creates the search schema: the verses table, the
// verse_embeddings table with its pgvector column, and the extensions and
// indexes the matchers rely on (pg_trgm for fuzzy matching, a GIN tsvector
// index for full-text ranking, and an HNSW index for nearest-neighbor
// queries).
//
// Environment variables:
//   POSTGRES_URI          - PostgreSQL connection string
//   EMBEDDING_DIMENSIONS  - vector column dimension (default: 768)
//
// Usage:
//   go run scripts/setup/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	godotenv.Load()

	postgresURI := os.Getenv("POSTGRES_URI")
	if postgresURI == "" {
		log.Fatal("POSTGRES_URI environment variable is required")
	}

	dimensions := 768
	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid EMBEDDING_DIMENSIONS: %v", err)
		}
		dimensions = d
	}

	ctx := context.Background()

	db, err := sqlx.ConnectContext(ctx, "postgres", postgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE EXTENSION IF NOT EXISTS pg_trgm`,

		`CREATE TABLE IF NOT EXISTS verses (
			id       BIGINT PRIMARY KEY,
			language TEXT NOT NULL,
			chapter  INT NOT NULL,
			seq      INT NOT NULL,
			text     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_verses_language_order
			ON verses (language, chapter, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_verses_text_trgm
			ON verses USING gin (text gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_verses_text_fts
			ON verses USING gin (to_tsvector('simple', text))`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS verse_embeddings (
			verse_id   BIGINT NOT NULL REFERENCES verses (id) ON DELETE CASCADE,
			language   TEXT NOT NULL,
			model      TEXT NOT NULL,
			embedding  vector(%d) NOT NULL,
			dimension  INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (verse_id, language, model)
		)`, dimensions),
		`CREATE INDEX IF NOT EXISTS idx_verse_embeddings_lookup
			ON verse_embeddings (language, model)`,
		`CREATE INDEX IF NOT EXISTS idx_verse_embeddings_hnsw
			ON verse_embeddings USING hnsw (embedding vector_cosine_ops)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("Failed to execute statement: %v\n%s", err, stmt)
		}
	}

	log.Printf("Schema ready (embedding dimension: %d)", dimensions)
}
