package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ayah-search-api/internal/models"
	"github.com/ayah-search-api/internal/repository"
	schemaservices "github.com/ayah-search-api/pkg/schema/services"
)

const defaultChunkSize = 100

// BatchEmbedder orchestrates bulk (re)generation of embedding records. It is
// the only writer of embeddings; the upsert key makes overlapping runs
// commute. A run pins the provider config it started with: hot-reloading
// configuration never changes a run mid-flight.
type BatchEmbedder struct {
	verses     repository.VerseRepository
	embeddings repository.EmbeddingRepository
	embedder   schemaservices.Embedder
	provider   schemaservices.ProviderConfig
	chunkSize  int
	logger     *slog.Logger
}

// NewBatchEmbedder creates a new batch embedder.
func NewBatchEmbedder(
	verses repository.VerseRepository,
	embeddings repository.EmbeddingRepository,
	embedder schemaservices.Embedder,
	provider schemaservices.ProviderConfig,
	chunkSize int,
	logger *slog.Logger,
) *BatchEmbedder {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchEmbedder{
		verses:     verses,
		embeddings: embeddings,
		embedder:   embedder,
		provider:   provider,
		chunkSize:  chunkSize,
		logger:     logger,
	}
}

// Run embeds the requested verses in fixed-size chunks. Verses that already
// carry a current-model record are skipped (and not counted as attempted)
// unless Force is set. Per-item failures are accumulated and reported; a
// single failing verse never aborts the run. Cancellation is cooperative:
// the current chunk is finished, then the run stops and reports what it did,
// with LastID usable as the AfterID cursor of a follow-up run.
func (b *BatchEmbedder) Run(ctx context.Context, req models.BatchEmbedRequest) (*models.BatchEmbedSummary, error) {
	if req.Language == "" {
		return nil, fmt.Errorf("%w: language is required", ErrInvalidLanguage)
	}

	provider := b.provider
	summary := &models.BatchEmbedSummary{Failures: []models.BatchFailure{}, LastID: req.AfterID}

	b.logger.Info("batch embedding started",
		"language", req.Language, "model", provider.Model,
		"force", req.Force, "after_id", req.AfterID, "ids", len(req.VerseIDs))

	var err error
	if len(req.VerseIDs) > 0 {
		err = b.runIDs(ctx, req, provider, summary)
	} else {
		err = b.runAll(ctx, req, provider, summary)
	}
	if err != nil {
		return summary, err
	}

	b.logger.Info("batch embedding finished",
		"attempted", summary.Attempted, "succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary, nil
}

// runIDs embeds an explicit verse-ID set.
func (b *BatchEmbedder) runIDs(ctx context.Context, req models.BatchEmbedRequest, provider schemaservices.ProviderConfig, summary *models.BatchEmbedSummary) error {
	verses, err := b.verses.GetByIDs(ctx, req.Language, req.VerseIDs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	pending := verses[:0:0]
	for _, v := range verses {
		if v.ID > req.AfterID {
			pending = append(pending, v)
		}
	}

	if !req.Force {
		ids := make([]int64, len(pending))
		for i, v := range pending {
			ids[i] = v.ID
		}
		embedded, err := b.embeddings.EmbeddedIDs(ctx, req.Language, provider.Model, ids)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		kept := pending[:0]
		for _, v := range pending {
			if !embedded[v.ID] {
				kept = append(kept, v)
			}
		}
		pending = kept
	}

	for start := 0; start < len(pending); start += b.chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + b.chunkSize
		if end > len(pending) {
			end = len(pending)
		}
		b.processChunk(ctx, pending[start:end], provider, summary)
	}
	return ctx.Err()
}

// runAll embeds every not-yet-covered verse of a language, paging by id.
func (b *BatchEmbedder) runAll(ctx context.Context, req models.BatchEmbedRequest, provider schemaservices.ProviderConfig, summary *models.BatchEmbedSummary) error {
	skipModel := provider.Model
	if req.Force {
		skipModel = ""
	}

	cursor := req.AfterID
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := b.verses.ListForEmbedding(ctx, req.Language, skipModel, cursor, b.chunkSize)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if len(chunk) == 0 {
			return nil
		}

		b.processChunk(ctx, chunk, provider, summary)
		cursor = chunk[len(chunk)-1].ID
	}
}

// processChunk embeds one chunk and upserts the resulting records. Partial
// success is the norm: each verse fails or succeeds on its own.
func (b *BatchEmbedder) processChunk(ctx context.Context, verses []models.Verse, provider schemaservices.ProviderConfig, summary *models.BatchEmbedSummary) {
	texts := make([]string, len(verses))
	for i, v := range verses {
		texts[i] = v.Text
	}

	results, err := b.embedder.EmbedBatch(ctx, texts, schemaservices.TaskTypeDocument)
	if err != nil || len(results) != len(verses) {
		if err == nil {
			err = fmt.Errorf("got %d results for %d texts", len(results), len(verses))
		}
		for _, v := range verses {
			summary.Attempted++
			summary.LastID = v.ID
			b.recordFailure(summary, v.ID, err)
		}
		return
	}

	for i, v := range verses {
		summary.Attempted++
		summary.LastID = v.ID

		result := results[i]
		if result.Err != nil {
			b.recordFailure(summary, v.ID, result.Err)
			continue
		}
		if len(result.Embedding) != provider.Dimension {
			b.recordFailure(summary, v.ID, fmt.Errorf("%w: got %d, model %s declares %d",
				ErrDimensionMismatch, len(result.Embedding), provider.Model, provider.Dimension))
			continue
		}

		record := &models.EmbeddingRecord{
			VerseID:   v.ID,
			Language:  v.Language,
			Model:     provider.Model,
			Embedding: result.Embedding,
			Dimension: provider.Dimension,
		}
		if err := b.embeddings.Upsert(ctx, record); err != nil {
			b.recordFailure(summary, v.ID, err)
			continue
		}
		summary.Succeeded++
	}
}

func (b *BatchEmbedder) recordFailure(summary *models.BatchEmbedSummary, verseID int64, err error) {
	summary.Failed++
	summary.Failures = append(summary.Failures, models.BatchFailure{
		VerseID: verseID,
		Reason:  failureReason(err),
	})
	b.logger.Debug("verse embedding failed", "verse_id", verseID, "err", err)
}

// failureReason maps errors onto stable reason strings for the summary.
func failureReason(err error) string {
	switch {
	case errors.Is(err, schemaservices.ErrProviderUnavailable):
		return "ProviderUnavailable"
	case errors.Is(err, ErrDimensionMismatch):
		return "DimensionMismatch"
	default:
		return err.Error()
	}
}
