package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ayah-search-api/pkg/schema/config"
)

// Provider kinds. Exactly one provider is active per process.
const (
	ProviderVertex   = "vertex"
	ProviderOllama   = "ollama"
	ProviderDisabled = "disabled"
)

// Defaults applied when a provider is auto-detected without an explicit
// model identifier.
const (
	defaultVertexModel      = "gemini-embedding-001"
	defaultVertexDimensions = 3072
	defaultOllamaModel      = "nomic-embed-text"
	defaultOllamaDimensions = 768
)

// ProviderConfig is the resolved embedding configuration. It is computed
// once at startup and passed by value to the components that need it; a
// batch run pins the config it started with.
type ProviderConfig struct {
	Kind      string
	Model     string
	Dimension int
	Enabled   bool
}

// ResolveProvider decides which embedding provider to use. The decision is
// a deterministic function of the configuration: an explicitly configured
// provider is honored; otherwise prefer the local runtime if its host is
// configured, then the remote API if credentials are present, then disabled.
func ResolveProvider(cfg *config.Config) ProviderConfig {
	kind := cfg.EmbeddingProvider
	if kind == "" {
		switch {
		case cfg.OllamaHost != "":
			kind = ProviderOllama
		case cfg.GCPProjectID != "":
			kind = ProviderVertex
		default:
			kind = ProviderDisabled
		}
	}

	pc := ProviderConfig{Kind: kind, Model: cfg.EmbeddingModel, Dimension: cfg.EmbeddingDimensions, Enabled: true}
	switch kind {
	case ProviderVertex:
		if pc.Model == "" {
			pc.Model = defaultVertexModel
			pc.Dimension = defaultVertexDimensions
		}
	case ProviderOllama:
		if pc.Model == "" {
			pc.Model = defaultOllamaModel
			pc.Dimension = defaultOllamaDimensions
		}
	default:
		pc = ProviderConfig{Kind: ProviderDisabled, Model: "disabled", Dimension: 0, Enabled: false}
	}
	return pc
}

// NewEmbedder constructs the embedder for a resolved provider config. The
// selection is logged exactly once, here.
func NewEmbedder(ctx context.Context, pc ProviderConfig, cfg *config.Config, logger *slog.Logger) (Embedder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("embedding provider selected",
		"kind", pc.Kind, "model", pc.Model, "dimension", pc.Dimension)

	switch pc.Kind {
	case ProviderVertex:
		return NewVertexEmbedder(ctx, cfg, pc.Model, pc.Dimension)
	case ProviderOllama:
		return NewOllamaEmbedder(cfg.OllamaHost, pc.Model, pc.Dimension), nil
	case ProviderDisabled:
		return NewDisabledEmbedder(), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", pc.Kind)
	}
}
