package config

import (
	"os"
	"strconv"
)

// Config holds configuration for database and embedding operations. It is
// loaded once at process start and passed to the components that need it;
// nothing mutates it afterwards.
type Config struct {
	// PostgreSQL
	PostgresURI string

	// Embeddings
	EmbeddingProvider   string // "vertex", "ollama", "disabled", or "" for auto-detect
	EmbeddingModel      string
	EmbeddingDimensions int

	// Ollama (local provider)
	OllamaHost string

	// Vertex AI (remote provider)
	GCPProjectID string
	GCPLocation  string
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		PostgresURI: getEnv("POSTGRES_URI", ""),

		EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", ""),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", ""),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 768),

		OllamaHost: getEnv("OLLAMA_HOST", ""),

		GCPProjectID: getEnv("GCP_PROJECT_ID", ""),
		GCPLocation:  getEnv("GCP_LOCATION", "us-central1"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return i
	}
	return defaultValue
}
