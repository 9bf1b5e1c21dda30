package ebay

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/infrastructure/cache"
	"github.com/pricecompare/backend/internal/infrastructure/upstream"
)

// fakeEbay serves both the identity and browse endpoints
type fakeEbay struct {
	tokenCalls  atomic.Int32
	searchCalls atomic.Int32
	rejectFirst bool
	tokenStatus int
	expiresIn   int
	accessToken string
}

func (f *fakeEbay) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		n := f.tokenCalls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, DefaultScope, r.PostForm.Get("scope"))

		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			return
		}
		token := f.accessToken
		if token == "" {
			token = fmt.Sprintf("token-%d", n)
		}
		expires := f.expiresIn
		if expires == 0 {
			expires = 7200
		}
		fmt.Fprintf(w, `{"access_token":%q,"expires_in":%d,"token_type":"Application Access Token"}`, token, expires)
	})
	mux.HandleFunc("/buy/browse/v1/item_summary/search", func(w http.ResponseWriter, r *http.Request) {
		n := f.searchCalls.Add(1)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		if f.rejectFirst && n == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer token-")
		w.Write([]byte(`{"total":2,"itemSummaries":[
			{"itemId":"v1|123|0","title":"Dell XPS 13","price":{"value":"899.99","currency":"USD"},"itemWebUrl":"https://www.ebay.com/itm/123"},
			{"itemId":"v1|456|0","title":"HP Spectre","price":{"value":"1099.00","currency":"USD"}}
		]}`))
	})
	return mux
}

func newTestClient(t *testing.T, fake *fakeEbay) (*Client, *TokenCache, *cache.MemoryCache) {
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	cfg := Config{
		ClientID:     "id",
		ClientSecret: "secret",
		IdentityURL:  server.URL,
		APIURL:       server.URL,
	}
	mem := cache.NewMemoryCache()
	requester := upstream.NewRequester("ebay", upstream.Options{MaxAttempts: 1, Backoff: time.Millisecond}, zerolog.Nop())
	tokens := NewTokenCache(cfg, mem, requester, zerolog.Nop())
	return NewClient(cfg, tokens, requester, zerolog.Nop()), tokens, mem
}

func TestClient_Search(t *testing.T) {
	fake := &fakeEbay{}
	client, _, _ := newTestClient(t, fake)

	items, err := client.Search(context.Background(), "laptop")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "https://www.ebay.com/itm/123", items[0].ProductURL)
	assert.Equal(t, "https://www.ebay.com/itm/v1%7C456%7C0", items[1].ProductURL)
	assert.InDelta(t, 899.99, float64(items[0].Price.Value), 0.001)
}

func TestClient_Search_ReusesToken(t *testing.T) {
	fake := &fakeEbay{}
	client, _, _ := newTestClient(t, fake)

	for i := 0; i < 3; i++ {
		_, err := client.Search(context.Background(), "laptop")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), fake.tokenCalls.Load())
	assert.Equal(t, int32(3), fake.searchCalls.Load())
}

func TestClient_Search_RetriesOnceAfter401(t *testing.T) {
	fake := &fakeEbay{rejectFirst: true}
	client, _, _ := newTestClient(t, fake)

	items, err := client.Search(context.Background(), "laptop")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	assert.Equal(t, int32(2), fake.tokenCalls.Load())
	assert.Equal(t, int32(2), fake.searchCalls.Load())
}

func TestTokenCache_AuthFailure(t *testing.T) {
	fake := &fakeEbay{tokenStatus: http.StatusUnauthorized}
	client, tokens, mem := newTestClient(t, fake)

	_, err := tokens.Token(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuth)

	_, err = client.Search(context.Background(), "laptop")
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.Equal(t, int32(0), fake.searchCalls.Load())

	exists, _ := mem.Exists(context.Background(), tokenCacheKey)
	assert.False(t, exists)
}

func TestTokenCache_EmptyTokenNotCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"","expires_in":7200}`))
	}))
	defer server.Close()

	mem := cache.NewMemoryCache()
	requester := upstream.NewRequester("ebay", upstream.Options{MaxAttempts: 1}, zerolog.Nop())
	tokens := NewTokenCache(Config{IdentityURL: server.URL}, mem, requester, zerolog.Nop())

	_, err := tokens.Token(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.Equal(t, 0, mem.Size())
}

func TestTokenCache_Invalidate(t *testing.T) {
	fake := &fakeEbay{}
	_, tokens, _ := newTestClient(t, fake)
	ctx := context.Background()

	first, err := tokens.Token(ctx)
	require.NoError(t, err)
	require.NoError(t, tokens.Invalidate(ctx))

	second, err := tokens.Token(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, int32(2), fake.tokenCalls.Load())
}

func TestConfig_BaseURL(t *testing.T) {
	assert.Equal(t, "https://api.ebay.com", Config{Environment: "production"}.BaseURL())
	assert.Equal(t, "https://api.sandbox.ebay.com", Config{Environment: "sandbox"}.BaseURL())
	assert.Equal(t, "https://api.sandbox.ebay.com", Config{}.BaseURL())
}
