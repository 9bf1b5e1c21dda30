package usecase

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/random"
)

const (
	ebayFallbackSize       = 6
	etsyFallbackSize       = 6
	aliExpressFallbackSize = 8
)

var (
	fallbackEbayBrands     = []string{"Dell", "HP", "Lenovo", "Apple", "Asus", "Acer", "Samsung", "MSI"}
	fallbackEbayTypes      = []string{"Laptop", "Notebook", "Ultrabook", "Gaming Laptop", "Workstation"}
	fallbackEbayConditions = []string{"New", "Refurbished", "Used - Like New"}

	fallbackEtsyShops = []string{"CreativeHandmade", "ArtisanCrafts", "VintageTreasures", "HandmadeWithLove", "CraftyCorner"}
	fallbackEtsyTypes = []string{"Vintage", "Handmade", "Custom", "Artisanal", "Personalized"}

	fallbackAliExpressNames = map[string][]string{
		"laptop":      {"Laptop Computer", "Gaming Laptop", "Ultrabook", "Notebook", "Portable Laptop"},
		"phone":       {"Smartphone Android", "Mobile Phone 5G", "Unlocked Phone", "iPhone Case"},
		"electronics": {"Wireless Earbuds", "Smart Watch", "Power Bank", "Phone Case"},
	}
	fallbackAliExpressDefault = []string{"Electronic Gadget", "Smart Device", "Tech Accessory", "Digital Product"}
)

// FallbackGenerator synthesizes plausible raw marketplace items for a query
// when a marketplace is unavailable. Items are shaped exactly like the real
// payloads so they flow through normalization unchanged.
type FallbackGenerator struct {
	rnd random.Source
	now func() time.Time
}

// NewFallbackGenerator creates a generator. A nil now uses time.Now.
func NewFallbackGenerator(rnd random.Source, now func() time.Time) *FallbackGenerator {
	if now == nil {
		now = time.Now
	}
	return &FallbackGenerator{rnd: rnd, now: now}
}

func fallbackID(store domain.Store, i int, ms int64) string {
	return fmt.Sprintf("%s-fallback-%d-%d", store.Class(), i, ms)
}

func placeholderImage(store domain.Store, i int, ms int64) string {
	return fmt.Sprintf("https://picsum.photos/200/200?random=%s%d-%d", store.Class(), i, ms)
}

// Ebay returns six laptop-style auction listings priced 300-1800
func (g *FallbackGenerator) Ebay(query string) []domain.EbayItem {
	ms := g.now().UnixMilli()
	items := make([]domain.EbayItem, 0, ebayFallbackSize)

	for i := 0; i < ebayFallbackSize; i++ {
		brand := random.Pick(g.rnd, fallbackEbayBrands)
		kind := random.Pick(g.rnd, fallbackEbayTypes)
		condition := random.Pick(g.rnd, fallbackEbayConditions)
		price := round2(random.Between(g.rnd, 300, 1800))
		searchURL := "https://www.ebay.com/sch/i.html?_nkw=" + url.QueryEscape(query+" "+brand)

		items = append(items, domain.EbayItem{
			ItemID:     fallbackID(domain.StoreEbay, i, ms),
			Title:      fmt.Sprintf("%s %s - %s Model %d", brand, kind, query, i+1),
			Price:      &domain.EbayAmount{Value: domain.FlexFloat(price), Currency: "USD"},
			Image:      &domain.EbayImage{ImageURL: placeholderImage(domain.StoreEbay, i, ms)},
			Condition:  condition,
			Brand:      brand,
			ItemWebURL: searchURL,
			ProductURL: searchURL,
		})
	}
	return items
}

// Etsy returns six handmade listings priced 15-100
func (g *FallbackGenerator) Etsy(query string) []domain.EtsyListing {
	ms := g.now().UnixMilli()
	searchURL := "https://www.etsy.com/search?q=" + url.QueryEscape(query)
	items := make([]domain.EtsyListing, 0, etsyFallbackSize)

	for i := 0; i < etsyFallbackSize; i++ {
		shop := random.Pick(g.rnd, fallbackEtsyShops)
		kind := random.Pick(g.rnd, fallbackEtsyTypes)

		items = append(items, domain.EtsyListing{
			ListingID:    domain.FlexString(fallbackID(domain.StoreEtsy, i, ms)),
			Title:        fmt.Sprintf("%s %s Item %d", kind, query, i+1),
			Price:        domain.EtsyPrice(round2(random.Between(g.rnd, 15, 100))),
			CurrencyCode: "USD",
			Images:       []domain.EtsyImage{{URL200x200: placeholderImage(domain.StoreEtsy, i, ms)}},
			Shop:         &domain.EtsyShop{ShopName: shop},
			ProductURL:   searchURL,
		})
	}
	return items
}

// AliExpress returns eight discounted wholesale items. Original prices fall
// in 80-480 and discounts in 10-59 percent.
func (g *FallbackGenerator) AliExpress(query string) []domain.AliExpressItem {
	ms := g.now().UnixMilli()
	searchURL := "https://www.aliexpress.com/wholesale?SearchText=" + url.QueryEscape(query)

	names, ok := fallbackAliExpressNames[strings.ToLower(query)]
	if !ok {
		names = fallbackAliExpressDefault
	}

	items := make([]domain.AliExpressItem, 0, aliExpressFallbackSize)
	for i := 0; i < aliExpressFallbackSize; i++ {
		original := random.Between(g.rnd, 80, 480)
		discount := 10 + g.rnd.IntN(50)
		current := round2(original * (1 - float64(discount)/100))
		rating := math.Round(random.Between(g.rnd, 4.0, 5.0)*10) / 10

		items = append(items, domain.AliExpressItem{
			ProductID:          domain.FlexString(fallbackID(domain.StoreAliExpress, i, ms)),
			ProductTitle:       fmt.Sprintf("%s - %s (2024 Model)", names[i%len(names)], query),
			ProductPrice:       domain.FlexString(fmt.Sprintf("US $%.2f", current)),
			OriginalPrice:      domain.FlexString(fmt.Sprintf("US $%.2f", round2(original))),
			Discount:           domain.FlexString(fmt.Sprintf("%d%%", discount)),
			ProductMainImage:   placeholderImage(domain.StoreAliExpress, i, ms),
			ProductRating:      domain.FlexFloat(rating),
			ProductReviewCount: domain.FlexFloat(100 + g.rnd.IntN(5000)),
			StoreName:          fmt.Sprintf("Global_Tech_Store_%d", i+1),
			ProductOrders:      domain.FlexFloat(500 + g.rnd.IntN(10000)),
			ProductURL:         searchURL,
		})
	}
	return items
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
