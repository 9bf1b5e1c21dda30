package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pricecompare/backend/internal/domain"
)

// SearchService is the aggregation use case behind the search endpoints
type SearchService interface {
	Search(ctx context.Context, rawQuery string) (*domain.SearchResponse, error)
	SearchSource(ctx context.Context, store domain.Store, rawQuery string) (any, error)
}

// StatsProvider reports result cache usage for the health endpoint
type StatsProvider interface {
	Stats(ctx context.Context) (domain.CacheStats, error)
}

// Queries used when the q parameter is absent or empty
const (
	defaultQuery           = "laptop"
	defaultEbayQuery       = "laptop"
	defaultEtsyQuery       = "handmade"
	defaultAliExpressQuery = "electronics"
)

const (
	msgShortQuery   = "Search query must be at least 2 characters"
	msgNotFound     = "Endpoint not found"
	msgInternal     = "Internal server error"
	msgRateLimited  = "Too many requests, please try again later."
	msgSearchFailed = "Failed to fetch products"
)

// ErrorResponse is the envelope for every error answer
type ErrorResponse struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse is served by the health endpoints
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Environment string            `json:"environment"`
	CacheStats  domain.CacheStats `json:"cacheStats"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search      SearchService
	stats       StatsProvider
	environment string
	logger      zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(search SearchService, stats StatsProvider, environment string, logger zerolog.Logger) *Handler {
	return &Handler{
		search:      search,
		stats:       stats,
		environment: environment,
		logger:      logger.With().Str("component", "http").Logger(),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("cache stats unavailable")
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:      "OK",
		Timestamp:   time.Now().UTC(),
		Environment: h.environment,
		CacheStats:  stats,
	})
}

// Search handles GET /api/search
func (h *Handler) Search(c *gin.Context) {
	query := queryOrDefault(c, defaultQuery)

	resp, err := h.search.Search(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SearchSource handles GET /api/:source/search
func (h *Handler) SearchSource(c *gin.Context) {
	store, err := domain.ParseStore(c.Param("source"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	items, err := h.search.SearchSource(c.Request.Context(), store, queryOrDefault(c, sourceDefaultQuery(store)))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// NotFound answers unknown routes with the error envelope
func (h *Handler) NotFound(c *gin.Context) {
	abortWithError(c, http.StatusNotFound, msgNotFound)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		abortWithError(c, http.StatusBadRequest, msgShortQuery)
	case errors.Is(err, domain.ErrUnknownSource):
		abortWithError(c, http.StatusNotFound, msgNotFound)
	default:
		h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("search failed")
		abortWithError(c, http.StatusInternalServerError, msgSearchFailed)
	}
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Timestamp: time.Now().UTC()})
}

// queryOrDefault treats an empty q like a missing one
func queryOrDefault(c *gin.Context, fallback string) string {
	if q := c.Query("q"); q != "" {
		return q
	}
	return fallback
}

func sourceDefaultQuery(store domain.Store) string {
	switch store {
	case domain.StoreEtsy:
		return defaultEtsyQuery
	case domain.StoreAliExpress:
		return defaultAliExpressQuery
	default:
		return defaultEbayQuery
	}
}
