// embed_verses.go
//
// This script runs the batch embedder from the command line: it generates
// embedding records for every verse of a language that does not yet have one
// for the active model, writing them to the verse_embeddings table.
//
// Environment variables: see pkg/schema/config (POSTGRES_URI, EMBEDDING_*,
// OLLAMA_HOST, GCP_PROJECT_ID, ...).
//
// Usage:
//   go run scripts/embed/main.go -language en
//   go run scripts/embed/main.go -language ar -force
//   go run scripts/embed/main.go -language en -after 4200   (resume)

package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ayah-search-api/internal/models"
	"github.com/ayah-search-api/internal/repository/postgres"
	"github.com/ayah-search-api/internal/services"
	schemaconfig "github.com/ayah-search-api/pkg/schema/config"
	"github.com/ayah-search-api/pkg/schema/db"
	schemaservices "github.com/ayah-search-api/pkg/schema/services"
)

func main() {
	language := flag.String("language", "", "Language code to embed (required)")
	force := flag.Bool("force", false, "Regenerate embeddings that already exist")
	after := flag.Int64("after", 0, "Resume after this verse id")
	chunk := flag.Int("chunk", 100, "Chunk size per provider call")
	flag.Parse()

	godotenv.Load()

	if *language == "" {
		log.Fatal("-language is required")
	}

	storeCfg := schemaconfig.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Finish the current chunk, then stop, on Ctrl-C.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgDB, err := db.Connect(ctx, storeCfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgDB.Close()

	provider := schemaservices.ResolveProvider(storeCfg)
	embedder, err := schemaservices.NewEmbedder(ctx, provider, storeCfg, logger)
	if err != nil {
		log.Fatalf("Failed to create embedding provider: %v", err)
	}

	batch := services.NewBatchEmbedder(
		postgres.NewVerseRepository(pgDB),
		postgres.NewEmbeddingRepository(pgDB),
		embedder, provider, *chunk, logger,
	)

	summary, err := batch.Run(ctx, models.BatchEmbedRequest{
		Language: *language,
		Force:    *force,
		AfterID:  *after,
	})
	if err != nil && summary == nil {
		log.Fatalf("Batch embedding failed: %v", err)
	}
	if err != nil {
		log.Printf("Run interrupted: %v (resume with -after %d)", err, summary.LastID)
	}

	log.Printf("Attempted: %d  Succeeded: %d  Failed: %d", summary.Attempted, summary.Succeeded, summary.Failed)
	for _, f := range summary.Failures {
		log.Printf("  verse %d: %s", f.VerseID, f.Reason)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
