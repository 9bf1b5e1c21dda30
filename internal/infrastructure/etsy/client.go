// Package etsy searches active listings on the Etsy Open API v3
package etsy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/infrastructure/upstream"
)

const (
	// DefaultBaseURL is the Etsy Open API host
	DefaultBaseURL = "https://openapi.etsy.com"
	searchLimit    = 8
)

// Client handles communication with the Etsy API
type Client struct {
	apiKey    string
	baseURL   string
	requester *upstream.Requester
	logger    zerolog.Logger
}

// NewClient creates a new Etsy client. An empty baseURL uses DefaultBaseURL.
func NewClient(apiKey, baseURL string, requester *upstream.Requester, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:    apiKey,
		baseURL:   baseURL,
		requester: requester,
		logger:    logger.With().Str("component", "etsy").Logger(),
	}
}

// Search returns active listings for query with images and shop included
func (c *Client) Search(ctx context.Context, query string) ([]domain.EtsyListing, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: Etsy API key not configured", domain.ErrConfig)
	}

	params := url.Values{}
	params.Set("keywords", query)
	params.Set("limit", fmt.Sprint(searchLimit))
	params.Set("includes", "Images,Shop")
	reqURL := fmt.Sprintf("%s/v3/application/listings/active?%s", c.baseURL, params.Encode())

	header := http.Header{}
	header.Set("x-api-key", c.apiKey)

	var resp domain.EtsySearchResponse
	if err := c.requester.GetJSON(ctx, reqURL, header, &resp); err != nil {
		return nil, err
	}

	listings := resp.Results
	for i := range listings {
		listings[i].ProductURL = "https://www.etsy.com/listing/" + url.PathEscape(string(listings[i].ListingID))
	}

	c.logger.Info().Int("count", len(listings)).Str("query", query).Msg("Etsy search succeeded")
	return listings, nil
}
