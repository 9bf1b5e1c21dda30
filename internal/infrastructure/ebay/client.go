package ebay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/infrastructure/upstream"
)

const searchLimit = 10

// Client searches the eBay Browse API
type Client struct {
	cfg       Config
	tokens    domain.TokenProvider
	requester *upstream.Requester
	logger    zerolog.Logger
}

// NewClient creates a new eBay client
func NewClient(cfg Config, tokens domain.TokenProvider, requester *upstream.Requester, logger zerolog.Logger) *Client {
	return &Client{
		cfg:       cfg,
		tokens:    tokens,
		requester: requester,
		logger:    logger.With().Str("component", "ebay").Logger(),
	}
}

// Search returns item summaries for query, each with a canonical ProductURL.
// A 401 invalidates the token and the call is retried once.
func (c *Client) Search(ctx context.Context, query string) ([]domain.EbayItem, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprint(searchLimit))
	reqURL := fmt.Sprintf("%s/buy/browse/v1/item_summary/search?%s", c.cfg.apiURL(), params.Encode())

	resp, err := c.search(ctx, reqURL)
	if upstream.IsStatus(err, http.StatusUnauthorized) {
		c.logger.Warn().Msg("eBay token rejected, re-authenticating")
		if invErr := c.tokens.Invalidate(ctx); invErr != nil {
			c.logger.Warn().Err(invErr).Msg("failed to invalidate eBay token")
		}
		resp, err = c.search(ctx, reqURL)
	}
	if err != nil {
		return nil, err
	}

	items := resp.ItemSummaries
	for i := range items {
		items[i].ProductURL = productURL(items[i])
	}

	c.logger.Info().Int("count", len(items)).Str("query", query).Msg("eBay search succeeded")
	return items, nil
}

func (c *Client) search(ctx context.Context, reqURL string) (*domain.EbaySearchResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Content-Type", "application/json")

	var resp domain.EbaySearchResponse
	if err := c.requester.GetJSON(ctx, reqURL, header, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func productURL(item domain.EbayItem) string {
	if item.ItemWebURL != "" {
		return item.ItemWebURL
	}
	return "https://www.ebay.com/itm/" + url.PathEscape(item.ItemID)
}
