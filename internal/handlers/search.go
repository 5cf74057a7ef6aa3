package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ayah-search-api/internal/models"
	"github.com/ayah-search-api/internal/services"
)

var validMethods = map[string]bool{
	"":                    true,
	models.MethodExact:    true,
	models.MethodFuzzy:    true,
	models.MethodFullText: true,
	models.MethodSemantic: true,
	models.MethodHybrid:   true,
	models.MethodAuto:     true,
}

// SearchHandler handles search endpoints.
type SearchHandler struct {
	search *services.SearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search handles POST /search.
func (h *SearchHandler) Search(c echo.Context) error {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !validMethods[req.Method] {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown search method: "+req.Method)
	}

	resp, err := h.search.Search(c.Request().Context(), req)
	if err != nil {
		return searchError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers search routes.
func (h *SearchHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/search", h.Search)
}

func searchError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, services.ErrInvalidQuery), errors.Is(err, services.ErrInvalidLanguage):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Search failed: "+err.Error())
	}
}
