package catalog

import (
	"context"
	"net/url"
	"strings"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/infrastructure/upstream"
)

// Fetcher retrieves a combined search from the comparison server
type Fetcher interface {
	Fetch(ctx context.Context, query string) (*domain.SearchResponse, error)
}

// APIClient fetches combined results from the server's /api/search endpoint
type APIClient struct {
	baseURL   string
	requester *upstream.Requester
}

// NewAPIClient creates a client for the server at baseURL
func NewAPIClient(baseURL string, requester *upstream.Requester) *APIClient {
	return &APIClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		requester: requester,
	}
}

// Fetch performs GET /api/search?q=query
func (c *APIClient) Fetch(ctx context.Context, query string) (*domain.SearchResponse, error) {
	var resp domain.SearchResponse
	reqURL := c.baseURL + "/api/search?q=" + url.QueryEscape(query)
	if err := c.requester.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
