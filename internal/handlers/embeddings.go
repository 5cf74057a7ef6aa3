package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ayah-search-api/internal/models"
	"github.com/ayah-search-api/internal/repository"
	"github.com/ayah-search-api/internal/services"
)

// EmbeddingsHandler handles administrative embedding endpoints.
type EmbeddingsHandler struct {
	batch      *services.BatchEmbedder
	embeddings repository.EmbeddingRepository
}

// NewEmbeddingsHandler creates a new embeddings handler.
func NewEmbeddingsHandler(batch *services.BatchEmbedder, embeddings repository.EmbeddingRepository) *EmbeddingsHandler {
	return &EmbeddingsHandler{batch: batch, embeddings: embeddings}
}

// BatchEmbed handles POST /embeddings/batch. The summary is returned even
// when the run was interrupted; its last_id is the cursor for resumption.
func (h *EmbeddingsHandler) BatchEmbed(c echo.Context) error {
	var req models.BatchEmbedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Language == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Language is required")
	}

	summary, err := h.batch.Run(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidLanguage) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if summary != nil {
			// Interrupted or store failure mid-run: report partial progress.
			return c.JSON(http.StatusOK, summary)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Batch embedding failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

// DeleteModel handles DELETE /embeddings/models/:model, bulk removal of a
// retired model's records.
func (h *EmbeddingsHandler) DeleteModel(c echo.Context) error {
	model := c.Param("model")
	if model == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Model is required")
	}

	deleted, err := h.embeddings.DeleteByModel(c.Request().Context(), model)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Delete failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted": deleted})
}

// RegisterRoutes registers embedding admin routes.
func (h *EmbeddingsHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/embeddings/batch", h.BatchEmbed)
	g.DELETE("/embeddings/models/:model", h.DeleteModel)
}
