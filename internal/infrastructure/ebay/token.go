// Package ebay talks to the eBay Browse API using application tokens
// obtained through the OAuth client-credentials grant.
package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/infrastructure/upstream"
)

const (
	tokenCacheKey   = "ebay-token"
	defaultTokenTTL = time.Hour

	// DefaultScope grants read access to the Browse API
	DefaultScope = "https://api.ebay.com/oauth/api_scope https://api.ebay.com/oauth/api_scope/buy.item.feed"

	productionBaseURL = "https://api.ebay.com"
	sandboxBaseURL    = "https://api.sandbox.ebay.com"
)

// Config holds the eBay application credentials and endpoints
type Config struct {
	ClientID     string
	ClientSecret string
	Environment  string // "production" or "sandbox"
	Scope        string
	IdentityURL  string // overrides the environment default
	APIURL       string // overrides the environment default
	TokenTTL     time.Duration
}

// BaseURL returns the API host for the configured environment
func (c Config) BaseURL() string {
	if c.Environment == "production" {
		return productionBaseURL
	}
	return sandboxBaseURL
}

func (c Config) identityURL() string {
	if c.IdentityURL != "" {
		return c.IdentityURL
	}
	return c.BaseURL()
}

func (c Config) apiURL() string {
	if c.APIURL != "" {
		return c.APIURL
	}
	return c.BaseURL()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenCache obtains application tokens and keeps them in the result cache
// until they expire. Concurrent misses may both fetch; the last write wins.
type TokenCache struct {
	cfg       Config
	cache     domain.CacheRepository
	requester *upstream.Requester
	logger    zerolog.Logger
}

// NewTokenCache creates a TokenCache
func NewTokenCache(cfg Config, cache domain.CacheRepository, requester *upstream.Requester, logger zerolog.Logger) *TokenCache {
	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return &TokenCache{
		cfg:       cfg,
		cache:     cache,
		requester: requester,
		logger:    logger.With().Str("component", "ebay-token").Logger(),
	}
}

// Token returns a cached token or performs a fresh client-credentials grant
func (t *TokenCache) Token(ctx context.Context) (string, error) {
	if cached, err := t.cache.Get(ctx, tokenCacheKey); err == nil && len(cached) > 0 {
		t.logger.Debug().Msg("using cached eBay token")
		return string(cached), nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", t.cfg.Scope)

	credentials := base64.StdEncoding.EncodeToString([]byte(t.cfg.ClientID + ":" + t.cfg.ClientSecret))
	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	header.Set("Authorization", "Basic "+credentials)

	body, err := t.requester.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		URL:    t.cfg.identityURL() + "/identity/v1/oauth2/token",
		Header: header,
		Body:   []byte(form.Encode()),
	})
	if err != nil {
		t.logger.Error().Err(err).Msg("eBay OAuth request failed")
		return "", fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to decode token response: %v", domain.ErrAuth, err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrAuth)
	}

	ttl := t.cfg.TokenTTL
	if resp.ExpiresIn > 0 {
		if lifetime := time.Duration(resp.ExpiresIn) * time.Second; lifetime < ttl {
			ttl = lifetime
		}
	}

	if err := t.cache.Set(ctx, tokenCacheKey, []byte(resp.AccessToken), ttl); err != nil {
		t.logger.Warn().Err(err).Msg("failed to cache eBay token")
	}

	t.logger.Info().Dur("ttl", ttl).Msg("new eBay token generated and cached")
	return resp.AccessToken, nil
}

// Invalidate drops the cached token so the next call re-authenticates
func (t *TokenCache) Invalidate(ctx context.Context) error {
	return t.cache.Delete(ctx, tokenCacheKey)
}
