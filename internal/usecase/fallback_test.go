package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/random"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestGenerator(seed uint64) *FallbackGenerator {
	return NewFallbackGenerator(random.New(seed), func() time.Time { return fixedNow })
}

func TestFallbackGenerator_Ebay(t *testing.T) {
	items := newTestGenerator(1).Ebay("laptop")
	require.Len(t, items, 6)

	for i, item := range items {
		assert.True(t, strings.HasPrefix(item.ItemID, "ebay-fallback-"), item.ItemID)
		assert.Contains(t, item.Title, "laptop Model")
		require.NotNil(t, item.Price)
		assert.GreaterOrEqual(t, float64(item.Price.Value), 300.0)
		assert.LessOrEqual(t, float64(item.Price.Value), 1800.0)
		assert.Contains(t, fallbackEbayBrands, item.Brand)
		assert.Contains(t, fallbackEbayConditions, item.Condition)
		assert.Contains(t, item.ProductURL, "https://www.ebay.com/sch/i.html?_nkw=")
		assert.Contains(t, item.ItemID, "-"+string(rune('0'+i))+"-")
	}
}

func TestFallbackGenerator_Etsy(t *testing.T) {
	items := newTestGenerator(2).Etsy("mug")
	require.Len(t, items, 6)

	for _, item := range items {
		assert.True(t, strings.HasPrefix(string(item.ListingID), "etsy-fallback-"))
		assert.GreaterOrEqual(t, float64(item.Price), 15.0)
		assert.LessOrEqual(t, float64(item.Price), 100.0)
		require.NotNil(t, item.Shop)
		assert.Contains(t, fallbackEtsyShops, item.Shop.ShopName)
		require.Len(t, item.Images, 1)
		assert.Equal(t, "https://www.etsy.com/search?q=mug", item.ProductURL)
	}
}

func TestFallbackGenerator_AliExpress(t *testing.T) {
	items := newTestGenerator(3).AliExpress("Laptop")
	require.Len(t, items, 8)

	for i, item := range items {
		assert.True(t, strings.HasPrefix(item.NativeID(), "aliexpress-fallback-"))
		assert.True(t, strings.HasPrefix(item.ProductTitle, fallbackAliExpressNames["laptop"][i%5]))

		price, ok := domain.ParseLeadingNumber(string(item.ProductPrice))
		require.True(t, ok)
		original, ok := domain.ParseLeadingNumber(string(item.OriginalPrice))
		require.True(t, ok)
		discount, ok := domain.ParseLeadingNumber(string(item.Discount))
		require.True(t, ok)

		assert.GreaterOrEqual(t, original, 80.0)
		assert.LessOrEqual(t, original, 480.0)
		assert.GreaterOrEqual(t, discount, 10.0)
		assert.LessOrEqual(t, discount, 59.0)
		assert.Less(t, price, original)
		assert.GreaterOrEqual(t, float64(item.ProductRating), 4.0)
		assert.LessOrEqual(t, float64(item.ProductRating), 5.0)
	}
}

func TestFallbackGenerator_AliExpressDefaultNames(t *testing.T) {
	items := newTestGenerator(4).AliExpress("garden hose")
	require.NotEmpty(t, items)
	assert.True(t, strings.HasPrefix(items[0].ProductTitle, "Electronic Gadget - garden hose"))
}

func TestFallbackGenerator_Deterministic(t *testing.T) {
	a := newTestGenerator(42).Ebay("laptop")
	b := newTestGenerator(42).Ebay("laptop")
	assert.Equal(t, a, b)
}
