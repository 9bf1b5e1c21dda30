package aliexpress

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/infrastructure/upstream"
)

func newRequester() *upstream.Requester {
	return upstream.NewRequester("aliexpress", upstream.Options{MaxAttempts: 1, Backoff: time.Millisecond}, zerolog.Nop())
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantIDs []string
	}{
		{
			name:    "result.items envelope",
			body:    `{"result":{"items":[{"productId":"1"},{"productId":"2"}]}}`,
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "items envelope",
			body:    `{"items":[{"product_id":33}]}`,
			wantIDs: []string{"33"},
		},
		{
			name:    "results envelope",
			body:    `{"results":[{"id":"r-9"}]}`,
			wantIDs: []string{"r-9"},
		},
		{
			name:    "empty result.items falls through to items",
			body:    `{"result":{"items":[]},"items":[{"productId":"7"}]}`,
			wantIDs: []string{"7"},
		},
		{
			name:    "malformed item is skipped",
			body:    `{"result":{"items":[{"productId":"1"},{"productId":"2","product_price":{"min":3.5}},{"productId":"3"}]}}`,
			wantIDs: []string{"1", "3"},
		},
		{
			name:    "all malformed falls through to items",
			body:    `{"result":{"items":[{"productId":["x"]}]},"items":[{"productId":"8"}]}`,
			wantIDs: []string{"8"},
		},
		{
			name: "no known shape",
			body: `{"data":{"list":[]}}`,
		},
		{
			name: "not json",
			body: `<html>rate limited</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Extract([]byte(tt.body))
			ids := make([]string, 0, len(items))
			for _, it := range items {
				ids = append(ids, it.NativeID())
			}
			if len(tt.wantIDs) == 0 {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

// gateway records which endpoints were hit and answers per path
type gateway struct {
	mu      sync.Mutex
	hits    []string
	answers map[string]func(w http.ResponseWriter)
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.hits = append(g.hits, r.URL.Path)
	g.mu.Unlock()

	if answer, ok := g.answers[r.URL.Path]; ok {
		answer(w)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func TestClient_Search_FallsThroughEndpoints(t *testing.T) {
	gw := &gateway{answers: map[string]func(w http.ResponseWriter){
		"/item_search_2": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusForbidden)
		},
		"/search_product": func(w http.ResponseWriter) {
			w.Write([]byte(`{"items":[{"productId":1005001,"product_title":"USB-C Hub","product_price":"US $12.50"}]}`))
		},
		"/item_search": func(w http.ResponseWriter) {
			t.Error("third endpoint should not be called")
		},
	}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, DefaultHost, r.Header.Get("X-RapidAPI-Host"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		if r.URL.Path == "/search_product" {
			assert.Equal(t, "usb hub", r.URL.Query().Get("keyword"))
		}
		gw.ServeHTTP(w, r)
	}))
	defer server.Close()

	client := NewClient("key", "", server.URL, newRequester(), zerolog.Nop())
	items, err := client.Search(context.Background(), "usb hub")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1005001", items[0].NativeID())
	assert.Equal(t, "https://www.aliexpress.com/item/1005001.html", items[0].ProductURL)
	assert.Equal(t, []string{"/item_search_2", "/search_product"}, gw.hits)
}

func TestClient_Search_AllEmpty(t *testing.T) {
	gw := &gateway{answers: map[string]func(w http.ResponseWriter){
		"/item_search_2":  func(w http.ResponseWriter) { w.Write([]byte(`{"result":{"items":[]}}`)) },
		"/search_product": func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) },
		"/item_search":    func(w http.ResponseWriter) { w.Write([]byte(`{}`)) },
	}}
	server := httptest.NewServer(gw)
	defer server.Close()

	client := NewClient("key", "", server.URL, newRequester(), zerolog.Nop())
	items, err := client.Search(context.Background(), "anything")

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Len(t, gw.hits, 3)
}

func TestClient_Search_KeepsDetailURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"items":[{"productId":"5","product_detail_url":"https://www.aliexpress.com/item/5.html?sku=1"}]}}`))
	}))
	defer server.Close()

	client := NewClient("key", "", server.URL, newRequester(), zerolog.Nop())
	items, err := client.Search(context.Background(), "lamp")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://www.aliexpress.com/item/5.html?sku=1", items[0].ProductURL)
}

func TestClient_Search_MissingKey(t *testing.T) {
	client := NewClient("", "", "http://127.0.0.1:0", newRequester(), zerolog.Nop())
	_, err := client.Search(context.Background(), "lamp")
	assert.ErrorIs(t, err, domain.ErrConfig)
}
