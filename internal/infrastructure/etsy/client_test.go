package etsy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/infrastructure/upstream"
)

func newRequester() *upstream.Requester {
	return upstream.NewRequester("etsy", upstream.Options{MaxAttempts: 2, Backoff: time.Millisecond}, zerolog.Nop())
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/application/listings/active", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))

		q := r.URL.Query()
		assert.Equal(t, "ceramic mug", q.Get("keywords"))
		assert.Equal(t, "8", q.Get("limit"))
		assert.Equal(t, "Images,Shop", q.Get("includes"))

		w.Write([]byte(`{"count":2,"results":[
			{"listing_id":1234567,"title":"Handmade Ceramic Mug","price":{"amount":3450,"divisor":100,"currency_code":"USD"},
			 "Images":[{"url_200x200":"https://i.etsystatic.com/1.jpg"}],"Shop":{"shop_name":"ClayCraft"}},
			{"listing_id":"7654321","title":"Speckled Mug","price":"28.00"}
		]}`))
	}))
	defer server.Close()

	client := NewClient("key", server.URL, newRequester(), zerolog.Nop())
	listings, err := client.Search(context.Background(), "ceramic mug")

	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, domain.FlexString("1234567"), listings[0].ListingID)
	assert.InDelta(t, 34.50, float64(listings[0].Price), 0.001)
	assert.Equal(t, "ClayCraft", listings[0].Shop.ShopName)
	assert.Equal(t, "https://www.etsy.com/listing/1234567", listings[0].ProductURL)

	assert.InDelta(t, 28.0, float64(listings[1].Price), 0.001)
	assert.Equal(t, "https://www.etsy.com/listing/7654321", listings[1].ProductURL)
}

func TestClient_Search_MissingKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient("", server.URL, newRequester(), zerolog.Nop())
	_, err := client.Search(context.Background(), "mug")

	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_Search_UpstreamFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("key", server.URL, newRequester(), zerolog.Nop())
	_, err := client.Search(context.Background(), "mug")

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, int32(2), calls.Load())
}
