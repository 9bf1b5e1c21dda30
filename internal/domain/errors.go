package domain

import "errors"

var (
	// ErrValidation is returned when a search query is missing or too short after sanitization
	ErrValidation = errors.New("search query must be at least 2 characters")

	// ErrAuth is returned when the marketplace credential exchange fails
	ErrAuth = errors.New("marketplace authentication failed")

	// ErrUpstream is returned when a marketplace answers with a non-2xx status or times out
	ErrUpstream = errors.New("marketplace request failed")

	// ErrConfig is returned when a marketplace client is missing its API key
	ErrConfig = errors.New("marketplace client not configured")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnknownSource is returned when a store name does not match any marketplace
	ErrUnknownSource = errors.New("unknown marketplace source")

	// ErrSearchInFlight is returned when a search is dropped because another one is still loading
	ErrSearchInFlight = errors.New("a search is already in progress")
)
