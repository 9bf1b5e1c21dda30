// Package aliexpress searches AliExpress through the DataHub gateway on RapidAPI
package aliexpress

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
	// DefaultHost is the RapidAPI host of the DataHub gateway
	DefaultHost = "aliexpress-datahub.p.rapidapi.com"
)

// endpoint is one gateway search route and the name of its query parameter
type endpoint struct {
	path       string
	queryParam string
}

// endpoints are tried in order until one yields products
var endpoints = []endpoint{
	{path: "/item_search_2", queryParam: "q"},
	{path: "/search_product", queryParam: "keyword"},
	{path: "/item_search", queryParam: "query"},
}

// Client handles communication with the RapidAPI gateway
type Client struct {
	apiKey    string
	host      string
	baseURL   string
	requester *upstream.Requester
	logger    zerolog.Logger
}

// NewClient creates a new AliExpress client. Empty host and baseURL use the
// DataHub defaults.
func NewClient(apiKey, host, baseURL string, requester *upstream.Requester, logger zerolog.Logger) *Client {
	if host == "" {
		host = DefaultHost
	}
	if baseURL == "" {
		baseURL = "https://" + host
	}
	return &Client{
		apiKey:    apiKey,
		host:      host,
		baseURL:   baseURL,
		requester: requester,
		logger:    logger.With().Str("component", "aliexpress").Logger(),
	}
}

// Search tries each gateway endpoint in turn. Failing endpoints are logged and
// skipped; when none yields products the result is empty, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]domain.AliExpressItem, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: RapidAPI key not configured", domain.ErrConfig)
	}

	header := http.Header{}
	header.Set("X-RapidAPI-Key", c.apiKey)
	header.Set("X-RapidAPI-Host", c.host)

	for _, ep := range endpoints {
		params := url.Values{}
		params.Set(ep.queryParam, query)
		params.Set("page", "1")
		reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, ep.path, params.Encode())

		body, err := c.requester.Do(ctx, upstream.Request{Method: http.MethodGet, URL: reqURL, Header: header})
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			c.logger.Warn().Err(err).Str("endpoint", ep.path).Msg("AliExpress endpoint failed")
			continue
		}

		items := Extract(body)
		if len(items) == 0 {
			continue
		}

		for i := range items {
			items[i].ProductURL = productURL(items[i])
		}
		c.logger.Info().Int("count", len(items)).Str("endpoint", ep.path).Msg("AliExpress search succeeded")
		return items, nil
	}

	c.logger.Warn().Str("query", query).Msg("all AliExpress endpoints returned no products")
	return []domain.AliExpressItem{}, nil
}

func productURL(item domain.AliExpressItem) string {
	if item.ProductDetailURL != "" {
		return item.ProductDetailURL
	}
	return fmt.Sprintf("https://www.aliexpress.com/item/%s.html", url.PathEscape(item.NativeID()))
}
