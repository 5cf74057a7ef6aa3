package services

import "context"

// DisabledEmbedder is the universal fallback: every call reports
// ErrProviderUnavailable for every text, instantly and with zero side
// effects. It is safe to select with no configuration at all.
type DisabledEmbedder struct{}

// NewDisabledEmbedder creates the disabled embedder.
func NewDisabledEmbedder() *DisabledEmbedder { return &DisabledEmbedder{} }

// Model returns the sentinel model identifier "disabled".
func (e *DisabledEmbedder) Model() string { return "disabled" }

// Dimension returns 0; the disabled provider produces no vectors.
func (e *DisabledEmbedder) Dimension() int { return 0 }

// EmbedBatch fails every input with ErrProviderUnavailable.
func (e *DisabledEmbedder) EmbedBatch(_ context.Context, texts []string, _ TaskType) ([]EmbedResult, error) {
	return uniformFailure(len(texts), ErrProviderUnavailable), nil
}
