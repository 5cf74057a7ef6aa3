package config

import (
	"strings"
	"time"
)

// Config holds API-level application configuration.
type Config struct {
	// API Settings
	APITitle   string
	APIVersion string
	APIPrefix  string
	Port       string

	// CORS
	CORSOrigins []string

	// Languages accepted by the search endpoints
	SupportedLanguages []string

	// Per-matcher timeout inside a hybrid request
	MatcherTimeout time.Duration

	// Result cache
	CacheEnabled  bool
	CacheCapacity int
	CacheTTL      time.Duration
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		APITitle:    getEnv("API_TITLE", "Ayah Search API"),
		APIVersion:  getEnv("API_VERSION", "1.0.0"),
		APIPrefix:   getEnv("API_PREFIX", "/api/v1"),
		Port:        getEnv("PORT", "8081"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		SupportedLanguages: splitList(getEnv("SUPPORTED_LANGUAGES", "ar,en")),

		MatcherTimeout: getEnvDuration("MATCHER_TIMEOUT", 5*time.Second),

		CacheEnabled:  getEnvBool("CACHE_ENABLED", false),
		CacheCapacity: getEnvInt("CACHE_CAPACITY", 1000),
		CacheTTL:      getEnvDuration("CACHE_TTL", time.Hour),
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
