package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

const ollamaChunkSize = 100

// OllamaEmbedder implements Embedder against a local Ollama runtime via
// langchaingo. The client is created lazily on first use; concurrent first
// calls share one initialization.
type OllamaEmbedder struct {
	host      string
	model     string
	dimension int

	once     sync.Once
	embedder embeddings.Embedder
	initErr  error
}

// NewOllamaEmbedder creates a new local embedder. No connection is made
// until the first embedding call.
func NewOllamaEmbedder(host, model string, dimension int) *OllamaEmbedder {
	return &OllamaEmbedder{
		host:      host,
		model:     model,
		dimension: dimension,
	}
}

// Model returns the model identifier.
func (e *OllamaEmbedder) Model() string { return e.model }

// Dimension returns the configured vector dimension.
func (e *OllamaEmbedder) Dimension() int { return e.dimension }

func (e *OllamaEmbedder) load() (embeddings.Embedder, error) {
	e.once.Do(func() {
		llm, err := ollama.New(
			ollama.WithServerURL(e.host),
			ollama.WithModel(e.model),
		)
		if err != nil {
			e.initErr = fmt.Errorf("failed to create ollama client: %w", err)
			return
		}
		embedder, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
		if err != nil {
			e.initErr = fmt.Errorf("failed to create ollama embedder: %w", err)
			return
		}
		e.embedder = embedder
	})
	return e.embedder, e.initErr
}

// EmbedBatch generates embeddings for multiple texts, chunked to keep memory
// bounded. Local inference uses the same representation for queries and
// documents, so taskType is accepted for interface parity only.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string, _ TaskType) ([]EmbedResult, error) {
	if len(texts) == 0 {
		return []EmbedResult{}, nil
	}

	embedder, err := e.load()
	if err != nil {
		return uniformFailure(len(texts), fmt.Errorf("%w: %v", ErrProviderUnavailable, err)), nil
	}

	results := make([]EmbedResult, 0, len(texts))
	for i := 0; i < len(texts); i += ollamaChunkSize {
		end := i + ollamaChunkSize
		if end > len(texts) {
			end = len(texts)
		}
		chunk := texts[i:end]

		vectors, err := embedder.EmbedDocuments(ctx, chunk)
		if err != nil || len(vectors) != len(chunk) {
			if err == nil {
				err = fmt.Errorf("got %d embeddings for %d texts", len(vectors), len(chunk))
			}
			results = append(results, uniformFailure(len(chunk), fmt.Errorf("%w: %v", ErrProviderUnavailable, err))...)
			continue
		}
		for _, vec := range vectors {
			results = append(results, EmbedResult{Embedding: vec})
		}
	}
	return results, nil
}
