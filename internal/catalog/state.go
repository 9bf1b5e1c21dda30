package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/infrastructure/cache"
	"github.com/pricecompare/backend/internal/random"
	"github.com/pricecompare/backend/internal/usecase"
)

// State is the lifecycle phase of a ResultState
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// SortOrder selects how the filtered set is ordered
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortRating    SortOrder = "rating"
)

// ParseSortOrder accepts the four sort names; anything else is an error
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(s); order {
	case SortRelevance, SortPriceLow, SortPriceHigh, SortRating:
		return order, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// User-visible notices
const (
	NoticeQueryTooShort = "Please enter at least 2 characters"
	NoticeSearchFailed  = "Search failed. Using demo data..."
)

const (
	DefaultPageSize = 18
	DefaultCacheTTL = 5 * time.Minute
)

// Filters narrows the full result set. Zero values disable each filter.
type Filters struct {
	Stores        []domain.Store
	MinRating     float64
	FreeShipping  bool
	PrimeShipping bool
}

func (f Filters) match(p domain.Product, category domain.Category) bool {
	if len(f.Stores) > 0 && !lo.Contains(f.Stores, p.Store) {
		return false
	}
	if p.Rating < f.MinRating {
		return false
	}
	if f.FreeShipping && !p.HasFreeShipping() {
		return false
	}
	if f.PrimeShipping && !p.PrimeShipping {
		return false
	}
	if category != "" && p.Category != category {
		return false
	}
	return true
}

// View is a snapshot of the revealed products and the state around them
type View struct {
	State      State
	Query      string
	Category   domain.Category
	Sort       SortOrder
	Filters    Filters
	Products   []domain.Product
	Total      int
	Page       int
	HasMore    bool
	Remaining  int
	Notice     string
	Restricted bool
}

// Options configures a ResultState
type Options struct {
	PageSize int
	CacheTTL time.Duration
	Cache    domain.CacheRepository
	Random   random.Source
	Now      func() time.Time
	Logger   zerolog.Logger
}

type transition struct {
	from, to State
}

// ResultState holds the comparison client's search results and derives the
// filtered, sorted and paginated view from them. Filters are always
// recomputed from the full set. Only one search may be in flight; further
// searches are dropped with domain.ErrSearchInFlight.
type ResultState struct {
	mu sync.Mutex

	fetcher    Fetcher
	normalizer *Normalizer
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	pageSize   int
	rnd        random.Source
	now        func() time.Time
	logger     zerolog.Logger

	state      State
	loading    bool
	query      string
	category   domain.Category
	sortOrder  SortOrder
	filters    Filters
	notice     string
	restricted bool

	all      []domain.Product
	filtered []domain.Product
	revealed int
	page     int

	onTransition func(from, to State)
	pending      []transition
}

// NewResultState creates an idle ResultState
func NewResultState(fetcher Fetcher, opts Options) *ResultState {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache()
	}
	if opts.Random == nil {
		opts.Random = random.NewTimeSeeded()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &ResultState{
		fetcher:    fetcher,
		normalizer: NewNormalizer(opts.Random, opts.Now),
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		pageSize:   opts.PageSize,
		rnd:        opts.Random,
		now:        opts.Now,
		logger:     opts.Logger.With().Str("component", "results").Logger(),
		state:      StateIdle,
		sortOrder:  SortRelevance,
	}
}

// OnTransition registers fn to observe state changes. It runs after the
// internal lock is released, so it may call back into the ResultState.
func (s *ResultState) OnTransition(fn func(from, to State)) {
	s.mu.Lock()
	defer s.unlock()
	s.onTransition = fn
}

// Search runs a new search. Short queries leave the state untouched and
// return domain.ErrValidation. A failed fetch is not returned: the state
// falls back to demo data and sets a notice instead.
func (s *ResultState) Search(ctx context.Context, raw string) error {
	query := usecase.Sanitize(raw)

	s.mu.Lock()
	if len([]rune(query)) < usecase.MinQueryLength {
		s.notice = NoticeQueryTooShort
		s.unlock()
		return domain.ErrValidation
	}

	// a new search always starts without a category
	cacheKey := fmt.Sprintf("search:%s:", query)
	if payload, err := s.cache.Get(ctx, cacheKey); err == nil {
		var resp domain.SearchResponse
		if err := json.Unmarshal(payload, &resp); err == nil {
			s.logger.Debug().Str("query", query).Msg("using cached results")
			s.query = query
			s.category = ""
			s.notice = ""
			s.load(&resp)
			s.setState(StateReady)
			s.unlock()
			return nil
		}
	}

	if s.loading {
		s.unlock()
		return domain.ErrSearchInFlight
	}
	s.loading = true
	s.query = query
	s.category = ""
	s.notice = ""
	s.recompute()
	s.setState(StateLoading)
	s.unlock()

	resp, err := s.fetcher.Fetch(ctx, query)

	s.mu.Lock()
	defer s.unlock()
	s.loading = false

	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("search failed")
		s.setState(StateError)
		s.restricted = false
		s.notice = NoticeSearchFailed
		s.all = SampleProducts(s.rnd, s.now())
		s.recompute()
		s.setState(StateReady)
		return nil
	}

	if payload, err := json.Marshal(resp); err == nil {
		_ = s.cache.Set(ctx, cacheKey, payload, s.cacheTTL)
	}
	s.load(resp)
	s.setState(StateReady)
	return nil
}

// load replaces the full set from a server response. Must hold s.mu.
func (s *ResultState) load(resp *domain.SearchResponse) {
	s.restricted = resp.Restricted
	products := s.normalizer.Normalize(resp.SearchResults)

	switch {
	case resp.Restricted:
		s.notice = resp.Message
	case len(products) == 0:
		s.logger.Info().Str("query", s.query).Msg("no products, using sample data")
		products = SampleProducts(s.rnd, s.now())
	}

	MarkBestDeals(products)
	s.all = products
	s.recompute()
}

// SetFilters replaces the active filters
func (s *ResultState) SetFilters(f Filters) {
	s.mu.Lock()
	defer s.unlock()
	s.filters = f
	s.recompute()
}

// SetSort changes the sort order
func (s *ResultState) SetSort(order SortOrder) {
	s.mu.Lock()
	defer s.unlock()
	s.sortOrder = order
	s.recompute()
}

// SetCategory restricts the view to one category; empty clears it
func (s *ResultState) SetCategory(c domain.Category) {
	s.mu.Lock()
	defer s.unlock()
	s.category = c
	s.recompute()
}

// ClearFilters drops store, rating and shipping filters
func (s *ResultState) ClearFilters() {
	s.mu.Lock()
	defer s.unlock()
	s.filters = Filters{}
	s.recompute()
}

// LoadMore reveals the next page. It reports false when nothing was left.
func (s *ResultState) LoadMore() bool {
	s.mu.Lock()
	defer s.unlock()

	if s.revealed >= len(s.filtered) {
		return false
	}
	s.revealed = min(s.revealed+s.pageSize, len(s.filtered))
	s.page++
	return true
}

// View returns a snapshot; the product slice is a copy
func (s *ResultState) View() View {
	s.mu.Lock()
	defer s.unlock()

	products := make([]domain.Product, s.revealed)
	copy(products, s.filtered[:s.revealed])

	return View{
		State:      s.state,
		Query:      s.query,
		Category:   s.category,
		Sort:       s.sortOrder,
		Filters:    s.filters,
		Products:   products,
		Total:      len(s.filtered),
		Page:       s.page,
		HasMore:    s.revealed < len(s.filtered),
		Remaining:  len(s.filtered) - s.revealed,
		Notice:     s.notice,
		Restricted: s.restricted,
	}
}

// recompute rebuilds the filtered set from the full set, sorts it and
// resets pagination. Must hold s.mu.
func (s *ResultState) recompute() {
	s.filtered = lo.Filter(s.all, func(p domain.Product, _ int) bool {
		return s.filters.match(p, s.category)
	})

	switch s.sortOrder {
	case SortPriceLow:
		sort.SliceStable(s.filtered, func(i, j int) bool { return s.filtered[i].Price < s.filtered[j].Price })
	case SortPriceHigh:
		sort.SliceStable(s.filtered, func(i, j int) bool { return s.filtered[i].Price > s.filtered[j].Price })
	case SortRating:
		sort.SliceStable(s.filtered, func(i, j int) bool { return s.filtered[i].Rating > s.filtered[j].Rating })
	}

	s.page = 1
	s.revealed = min(s.pageSize, len(s.filtered))
}

// setState records a transition for delivery on unlock. Must hold s.mu.
func (s *ResultState) setState(to State) {
	if s.state == to {
		return
	}
	s.pending = append(s.pending, transition{from: s.state, to: to})
	s.state = to
}

// unlock releases s.mu and then notifies the observer of pending transitions
func (s *ResultState) unlock() {
	pending, hook := s.pending, s.onTransition
	s.pending = nil
	s.mu.Unlock()

	if hook == nil {
		return
	}
	for _, t := range pending {
		hook(t.from, t.to)
	}
}
