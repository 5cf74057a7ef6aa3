package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayah-search-api/pkg/schema/config"
)

func TestDisabledEmbedderFailsUniformly(t *testing.T) {
	e := NewDisabledEmbedder()

	results, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"}, TaskTypeDocument)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Nil(t, r.Embedding)
		assert.ErrorIs(t, r.Err, ErrProviderUnavailable)
	}

	assert.Equal(t, "disabled", e.Model())
	assert.Equal(t, 0, e.Dimension())
}

func TestEmbedQueryPropagatesUnavailable(t *testing.T) {
	_, err := EmbedQuery(context.Background(), NewDisabledEmbedder(), "what is patience")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestResolveProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want ProviderConfig
	}{
		{
			name: "nothing configured falls back to disabled",
			cfg:  config.Config{},
			want: ProviderConfig{Kind: ProviderDisabled, Model: "disabled", Dimension: 0, Enabled: false},
		},
		{
			name: "ollama host prefers local",
			cfg:  config.Config{OllamaHost: "http://localhost:11434", GCPProjectID: "proj"},
			want: ProviderConfig{Kind: ProviderOllama, Model: "nomic-embed-text", Dimension: 768, Enabled: true},
		},
		{
			name: "gcp credentials select vertex",
			cfg:  config.Config{GCPProjectID: "proj"},
			want: ProviderConfig{Kind: ProviderVertex, Model: "gemini-embedding-001", Dimension: 3072, Enabled: true},
		},
		{
			name: "explicit kind is honored over detection",
			cfg: config.Config{
				EmbeddingProvider: ProviderVertex,
				OllamaHost:        "http://localhost:11434",
				GCPProjectID:      "proj",
			},
			want: ProviderConfig{Kind: ProviderVertex, Model: "gemini-embedding-001", Dimension: 3072, Enabled: true},
		},
		{
			name: "explicit model and dimension are kept",
			cfg: config.Config{
				EmbeddingProvider:   ProviderOllama,
				EmbeddingModel:      "mxbai-embed-large",
				EmbeddingDimensions: 1024,
				OllamaHost:          "http://localhost:11434",
			},
			want: ProviderConfig{Kind: ProviderOllama, Model: "mxbai-embed-large", Dimension: 1024, Enabled: true},
		},
		{
			name: "explicitly disabled",
			cfg:  config.Config{EmbeddingProvider: ProviderDisabled, GCPProjectID: "proj"},
			want: ProviderConfig{Kind: ProviderDisabled, Model: "disabled", Dimension: 0, Enabled: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveProvider(&tt.cfg)
			assert.Equal(t, tt.want, got)
			// deterministic: resolving twice yields the same answer
			assert.Equal(t, got, ResolveProvider(&tt.cfg))
		})
	}
}

func TestRetryWithBackoffSucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, 3, time.Millisecond)

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffExhaustsAttempts(t *testing.T) {
	attempts := 0
	wantErr := errors.New("down")
	err := retryWithBackoff(context.Background(), func() error {
		attempts++
		return wantErr
	}, 3, time.Millisecond)

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffHonorsDeadline(t *testing.T) {
	// A deadline on the surrounding context bounds the whole retry
	// sequence, backoff waits included, not just individual calls.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	attempts := 0
	err := retryWithBackoff(ctx, func() error {
		attempts++
		return errors.New("down")
	}, 5, 50*time.Millisecond)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoffStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := retryWithBackoff(ctx, func() error {
		attempts++
		return errors.New("down")
	}, 3, time.Millisecond)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
}

func TestOllamaEmbedderIsLazy(t *testing.T) {
	// Construction must not touch the runtime; only the first embed call
	// initializes the client.
	e := NewOllamaEmbedder("http://localhost:1", "nomic-embed-text", 768)
	assert.Equal(t, "nomic-embed-text", e.Model())
	assert.Equal(t, 768, e.Dimension())
}
