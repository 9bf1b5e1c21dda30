package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pricecompare/backend/internal/domain"
)

// SearchServiceConfig holds cache lifetimes for the aggregator
type SearchServiceConfig struct {
	CacheTTL    time.Duration // entries backed by real marketplace data
	FallbackTTL time.Duration // entries that contain synthesized data
}

// SearchService fans a query out to every marketplace, caches per-source and
// combined results, and substitutes synthesized items for failed sources.
type SearchService struct {
	cache       domain.CacheRepository
	ebay        domain.EbayClient
	etsy        domain.EtsyClient
	aliexpress  domain.AliExpressClient
	policy      *PolicyFilter
	fallback    *FallbackGenerator
	cacheTTL    time.Duration
	fallbackTTL time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

// NewSearchService creates a new search service with dependencies
func NewSearchService(
	cache domain.CacheRepository,
	ebay domain.EbayClient,
	etsy domain.EtsyClient,
	aliexpress domain.AliExpressClient,
	policy *PolicyFilter,
	fallback *FallbackGenerator,
	config SearchServiceConfig,
	logger zerolog.Logger,
) *SearchService {
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	if config.FallbackTTL <= 0 {
		config.FallbackTTL = time.Minute
	}

	return &SearchService{
		cache:       cache,
		ebay:        ebay,
		etsy:        etsy,
		aliexpress:  aliexpress,
		policy:      policy,
		fallback:    fallback,
		cacheTTL:    config.CacheTTL,
		fallbackTTL: config.FallbackTTL,
		now:         time.Now,
		logger:      logger.With().Str("component", "search").Logger(),
	}
}

// sourceEntry is the cached form of one marketplace answer
type sourceEntry[T any] struct {
	Items    []T  `json:"items"`
	Fallback bool `json:"fallback"`
}

// Search validates and policy-checks rawQuery, then aggregates all marketplaces.
// Only validation failures are returned as errors; marketplace failures are
// replaced by synthesized items.
func (s *SearchService) Search(ctx context.Context, rawQuery string) (*domain.SearchResponse, error) {
	query, err := ValidateQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	if s.policy != nil && s.policy.IsRestricted(query) {
		s.logger.Info().Str("query", query).Msg("restricted query blocked")
		return &domain.SearchResponse{
			SearchResults: domain.SearchResults{
				Ebay:       []domain.EbayItem{},
				Etsy:       []domain.EtsyListing{},
				AliExpress: []domain.AliExpressItem{},
				Query:      query,
			},
			Restricted: true,
			Message:    s.policy.Message(),
			Timestamp:  s.now(),
		}, nil
	}

	combinedKey := "combined:" + query
	if payload, err := s.cache.Get(ctx, combinedKey); err == nil {
		var cached domain.SearchResults
		if err := json.Unmarshal(payload, &cached); err == nil {
			s.logger.Debug().Str("query", query).Msg("serving cached combined results")
			return &domain.SearchResponse{
				SearchResults: cached,
				Timestamp:     s.now(),
				Cached:        true,
			}, nil
		}
		s.logger.Warn().Str("key", combinedKey).Msg("discarding undecodable cache entry")
	}

	results := domain.SearchResults{Query: query}
	var ebayOK, etsyOK, aliOK bool

	var g errgroup.Group
	g.Go(func() error {
		results.Ebay, ebayOK = readThrough(ctx, s, domain.StoreEbay, query, s.ebay.Search, s.fallback.Ebay)
		return nil
	})
	g.Go(func() error {
		results.Etsy, etsyOK = readThrough(ctx, s, domain.StoreEtsy, query, s.etsy.Search, s.fallback.Etsy)
		return nil
	})
	g.Go(func() error {
		results.AliExpress, aliOK = readThrough(ctx, s, domain.StoreAliExpress, query, s.aliexpress.Search, s.fallback.AliExpress)
		return nil
	})
	_ = g.Wait()

	ttl := s.cacheTTL
	if !(ebayOK && etsyOK && aliOK) {
		ttl = s.fallbackTTL
	}
	s.store(ctx, combinedKey, results, ttl)

	s.logger.Info().
		Str("query", query).
		Int("ebay", len(results.Ebay)).
		Int("etsy", len(results.Etsy)).
		Int("aliexpress", len(results.AliExpress)).
		Dur("ttl", ttl).
		Msg("search complete")

	return &domain.SearchResponse{
		SearchResults: results,
		Timestamp:     s.now(),
	}, nil
}

// SearchSource serves a single marketplace with the same caching and
// fallback rules as Search. The result is the raw item slice of that store.
func (s *SearchService) SearchSource(ctx context.Context, store domain.Store, rawQuery string) (any, error) {
	query, err := ValidateQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	switch store {
	case domain.StoreEbay:
		items, _ := readThrough(ctx, s, store, query, s.ebay.Search, s.fallback.Ebay)
		return items, nil
	case domain.StoreEtsy:
		items, _ := readThrough(ctx, s, store, query, s.etsy.Search, s.fallback.Etsy)
		return items, nil
	case domain.StoreAliExpress:
		items, _ := readThrough(ctx, s, store, query, s.aliexpress.Search, s.fallback.AliExpress)
		return items, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSource, store)
	}
}

// readThrough serves "<store>:<query>" from cache or fetches it. A failed or
// empty fetch is replaced by synthesized items cached with the degraded TTL.
// The boolean reports whether the items came from the marketplace.
func readThrough[T any](
	ctx context.Context,
	s *SearchService,
	store domain.Store,
	query string,
	fetch func(context.Context, string) ([]T, error),
	synthesize func(string) []T,
) ([]T, bool) {
	key := store.Class() + ":" + query
	log := s.logger.With().Str("source", store.Class()).Str("query", query).Logger()

	if payload, err := s.cache.Get(ctx, key); err == nil {
		var entry sourceEntry[T]
		if err := json.Unmarshal(payload, &entry); err == nil {
			log.Debug().Bool("fallback", entry.Fallback).Msg("serving cached results")
			return entry.Items, !entry.Fallback
		}
	}

	items, err := fetch(ctx, query)
	switch {
	case err == nil && len(items) > 0:
		s.store(ctx, key, sourceEntry[T]{Items: items}, s.cacheTTL)
		return items, true
	case err == nil:
		log.Warn().Msg("no results, using fallback data")
	case errors.Is(err, domain.ErrConfig):
		log.Warn().Err(err).Msg("source not configured, using fallback data")
	default:
		log.Error().Err(err).Msg("source failed, using fallback data")
	}

	items = synthesize(query)
	s.store(ctx, key, sourceEntry[T]{Items: items, Fallback: true}, s.fallbackTTL)
	return items, false
}

func (s *SearchService) store(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}
	if err := s.cache.Set(ctx, key, payload, ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to write cache entry")
	}
}
