package services

import (
	"context"
	"errors"
)

// TaskType distinguishes query-side from document-side embeddings for
// providers that support asymmetric retrieval models.
type TaskType string

const (
	TaskTypeQuery    TaskType = "RETRIEVAL_QUERY"
	TaskTypeDocument TaskType = "RETRIEVAL_DOCUMENT"
)

// ErrProviderUnavailable tags an embedding failure caused by the provider as
// a whole being unreachable or disabled, as opposed to a per-text problem.
// Semantic search treats it as "no candidates", never as a request failure.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// EmbedResult is the outcome for one input text. Exactly one of Embedding or
// Err is set.
type EmbedResult struct {
	Embedding []float32
	Err       error
}

// Embedder defines the interface for text embedding operations. EmbedBatch
// returns one result per input text, in input order; a provider-level outage
// fails every result uniformly with ErrProviderUnavailable rather than
// returning partial vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([]EmbedResult, error)

	// Model returns the model identifier embeddings are produced with.
	Model() string

	// Dimension returns the vector dimension the model produces.
	Dimension() int
}

// EmbedQuery embeds a single query text. It returns ErrProviderUnavailable
// when the provider cannot produce a vector for it.
func EmbedQuery(ctx context.Context, e Embedder, query string) ([]float32, error) {
	results, err := e.EmbedBatch(ctx, []string{query}, TaskTypeQuery)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errors.New("no embedding returned")
	}
	if results[0].Err != nil {
		return nil, results[0].Err
	}
	return results[0].Embedding, nil
}

// uniformFailure marks every input as failed with the same error.
func uniformFailure(n int, err error) []EmbedResult {
	results := make([]EmbedResult, n)
	for i := range results {
		results[i] = EmbedResult{Err: err}
	}
	return results
}
