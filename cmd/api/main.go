package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/ayah-search-api/internal/config"
	"github.com/ayah-search-api/internal/handlers"
	"github.com/ayah-search-api/internal/middleware"
	"github.com/ayah-search-api/internal/repository/postgres"
	"github.com/ayah-search-api/internal/services"
	schemaconfig "github.com/ayah-search-api/pkg/schema/config"
	"github.com/ayah-search-api/pkg/schema/db"
	schemaservices "github.com/ayah-search-api/pkg/schema/services"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := config.Load()
	storeCfg := schemaconfig.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// Initialize PostgreSQL
	ctx := context.Background()
	pgDB, err := db.Connect(ctx, storeCfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL: %v", err)
	}
	log.Println("Database initialization complete")

	// Create repositories
	verseRepo := postgres.NewVerseRepository(pgDB)
	embeddingRepo := postgres.NewEmbeddingRepository(pgDB)

	// Resolve the embedding provider once, at startup
	provider := schemaservices.ResolveProvider(storeCfg)
	embedder, err := schemaservices.NewEmbedder(ctx, provider, storeCfg, logger)
	if err != nil {
		log.Fatalf("Failed to create embedding provider: %v", err)
	}

	// Create services
	cache := services.NewResultCache(cfg.CacheEnabled, cfg.CacheCapacity, cfg.CacheTTL)
	searchSvc := services.NewSearchService(
		verseRepo, embeddingRepo, embedder, provider, cache,
		cfg.SupportedLanguages, cfg.MatcherTimeout, logger,
	)
	batchEmbedder := services.NewBatchEmbedder(
		verseRepo, embeddingRepo, embedder, provider, 0, logger,
	)

	// Create API group with prefix
	api := e.Group(cfg.APIPrefix)

	// Register handlers
	healthHandler := handlers.NewHealthHandler(pgDB)
	healthHandler.RegisterRoutes(api)

	searchHandler := handlers.NewSearchHandler(searchSvc)
	searchHandler.RegisterRoutes(api)

	embeddingsHandler := handlers.NewEmbeddingsHandler(batchEmbedder, embeddingRepo)
	embeddingsHandler.RegisterRoutes(api)

	// Root health check
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"name":    cfg.APITitle,
			"version": cfg.APIVersion,
			"status":  "running",
		})
	})

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Starting %s v%s on %s", cfg.APITitle, cfg.APIVersion, addr)
		if err := e.Start(addr); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	if err := pgDB.Close(); err != nil {
		log.Printf("Error closing PostgreSQL: %v", err)
	}

	// Close the Vertex AI client if that provider is active
	if closer, ok := embedder.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("Error closing embedding provider: %v", err)
		}
	}

	log.Println("Server stopped")
}
