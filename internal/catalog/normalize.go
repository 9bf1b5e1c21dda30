// Package catalog is the comparison client's view of search results: it
// normalizes raw marketplace items into canonical products and drives the
// filter, sort and pagination state behind the result list.
package catalog

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/random"
)

const (
	freeShipping = "Free Shipping"

	ebayDelivery       = "3-7 days"
	etsyDelivery       = "7-14 days"
	aliExpressDelivery = "15-25 days"
)

// Normalizer converts raw marketplace items into domain.Product values.
// Fields the marketplaces do not supply (ratings, review counts, original
// prices) are filled from rnd and flagged as estimates where they affect price.
type Normalizer struct {
	rnd random.Source
	now func() time.Time
}

// NewNormalizer creates a Normalizer. A nil now uses time.Now.
func NewNormalizer(rnd random.Source, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{rnd: rnd, now: now}
}

// Normalize converts a combined response in eBay, Etsy, AliExpress order,
// dropping items without a native id.
func (n *Normalizer) Normalize(results domain.SearchResults) []domain.Product {
	products := make([]domain.Product, 0, len(results.Ebay)+len(results.Etsy)+len(results.AliExpress))

	for _, item := range results.Ebay {
		if p, ok := n.Ebay(item); ok {
			products = append(products, p)
		}
	}
	for _, item := range results.Etsy {
		if p, ok := n.Etsy(item); ok {
			products = append(products, p)
		}
	}
	for _, item := range results.AliExpress {
		if p, ok := n.AliExpress(item); ok {
			products = append(products, p)
		}
	}
	return products
}

// Ebay normalizes an auction listing
func (n *Normalizer) Ebay(item domain.EbayItem) (domain.Product, bool) {
	if item.ItemID == "" {
		return domain.Product{}, false
	}

	var price float64
	if item.Price != nil {
		price = math.Max(float64(item.Price.Value), 0)
	}
	original := price * random.Between(n.rnd, 1.1, 1.4)

	shipping := "$5.99 Shipping"
	if n.rnd.Float64() > 0.3 {
		shipping = freeShipping
	}

	image := ""
	if item.Image != nil {
		image = item.Image.ImageURL
	}
	shop := "eBay Seller"
	if item.Seller != nil && item.Seller.Username != "" {
		shop = item.Seller.Username
	}

	return domain.Product{
		ID:               canonicalID(domain.StoreEbay, item.ItemID),
		Name:             orDefault(item.Title, "Unknown Product"),
		Brand:            orDefault(item.Brand, "Unknown"),
		Category:         categorize(item.Title, ebayCategoryRules, domain.CategoryElectronics),
		Store:            domain.StoreEbay,
		StoreClass:       domain.StoreEbay.Class(),
		Image:            n.imageOrPlaceholder(image),
		Price:            round2(price),
		OriginalPrice:    round2(original),
		Discount:         discountPercent(price, original),
		Rating:           round1(random.Between(n.rnd, 1, 5)),
		ReviewCount:      n.rnd.IntN(1000),
		Shipping:         shipping,
		Condition:        orDefault(item.Condition, "New"),
		InStock:          true,
		ShopName:         shop,
		DeliveryTime:     ebayDelivery,
		PriceChange:      (n.rnd.Float64() - 0.5) * 20,
		ProductURL:       item.ProductURL,
		LastUpdated:      n.now(),
		EstimatedPricing: true,
	}, true
}

// Etsy normalizes a handmade listing
func (n *Normalizer) Etsy(item domain.EtsyListing) (domain.Product, bool) {
	if item.ListingID == "" {
		return domain.Product{}, false
	}

	price := math.Max(float64(item.Price), 0)
	original := price * random.Between(n.rnd, 1.1, 1.5)

	shipping := "$3.99 Shipping"
	if n.rnd.Float64() > 0.4 {
		shipping = freeShipping
	}

	image := ""
	if len(item.Images) > 0 {
		image = item.Images[0].URL200x200
	}
	shop := "Etsy Shop"
	if item.Shop != nil && item.Shop.ShopName != "" {
		shop = item.Shop.ShopName
	}

	return domain.Product{
		ID:               canonicalID(domain.StoreEtsy, string(item.ListingID)),
		Name:             orDefault(item.Title, "Handmade Item"),
		Brand:            "Handmade",
		Category:         categorize(item.Title, etsyCategoryRules, domain.CategoryHandmade),
		Store:            domain.StoreEtsy,
		StoreClass:       domain.StoreEtsy.Class(),
		Image:            n.imageOrPlaceholder(image),
		Price:            round2(price),
		OriginalPrice:    round2(original),
		Discount:         discountPercent(price, original),
		Rating:           round1(random.Between(n.rnd, 3, 5)),
		ReviewCount:      n.rnd.IntN(500),
		Shipping:         shipping,
		PrimeShipping:    n.rnd.Float64() > 0.7,
		Condition:        "Handmade",
		InStock:          true,
		ShopName:         shop,
		DeliveryTime:     etsyDelivery,
		PriceChange:      (n.rnd.Float64() - 0.3) * 15,
		ProductURL:       item.ProductURL,
		LastUpdated:      n.now(),
		EstimatedPricing: true,
	}, true
}

// AliExpress normalizes a wholesale product. Prices and discounts arrive as
// free text such as "US $12.50" and "35%".
func (n *Normalizer) AliExpress(item domain.AliExpressItem) (domain.Product, bool) {
	nativeID := item.NativeID()
	if nativeID == "" {
		return domain.Product{}, false
	}

	estimated := false

	price, ok := domain.ParseLeadingNumber(string(item.ProductPrice))
	if !ok {
		price, ok = domain.ParseLeadingNumber(string(item.Price))
	}
	if !ok {
		price = random.Between(n.rnd, 20, 320)
		estimated = true
	}

	original, ok := domain.ParseLeadingNumber(string(item.OriginalPrice))
	if !ok {
		original = price * random.Between(n.rnd, 1.2, 1.5)
		estimated = true
	}

	discount := discountPercent(price, original)
	if d, ok := domain.ParseLeadingNumber(string(item.Discount)); ok {
		discount = int(d)
		if discount <= 5 {
			discount = 0
		}
	}

	rating := float64(item.ProductRating)
	if rating <= 0 {
		rating = round1(random.Between(n.rnd, 4, 5))
	}

	reviews := int(item.ProductReviewCount)
	if reviews <= 0 {
		reviews = n.rnd.IntN(5000)
	}
	orders := int(item.ProductOrders)
	if orders <= 0 {
		orders = n.rnd.IntN(10000)
	}

	title := orDefault(item.DisplayTitle(), "AliExpress Product")
	image := item.ProductMainImage
	if image == "" {
		image = item.Image
	}
	if image == "" {
		image = item.ProductImage
	}

	return domain.Product{
		ID:               canonicalID(domain.StoreAliExpress, nativeID),
		Name:             title,
		Brand:            firstToken(item.DisplayTitle(), "Generic"),
		Category:         categorize(title, aliExpressCategoryRules, domain.CategoryOther),
		Store:            domain.StoreAliExpress,
		StoreClass:       domain.StoreAliExpress.Class(),
		Image:            n.imageOrPlaceholder(image),
		Price:            round2(price),
		OriginalPrice:    round2(original),
		Discount:         discount,
		Rating:           math.Min(math.Max(rating, 0), 5),
		ReviewCount:      reviews,
		Shipping:         freeShipping,
		Condition:        "New",
		InStock:          true,
		ShopName:         orDefault(item.StoreName, "AliExpress Store"),
		DeliveryTime:     aliExpressDelivery,
		Orders:           orders,
		PriceChange:      (n.rnd.Float64() - 0.2) * 15,
		ProductURL:       item.ProductURL,
		LastUpdated:      n.now(),
		EstimatedPricing: estimated,
	}, true
}

func (n *Normalizer) imageOrPlaceholder(url string) string {
	if url != "" {
		return url
	}
	return placeholderImage(n.rnd)
}

func placeholderImage(rnd random.Source) string {
	return fmt.Sprintf("https://picsum.photos/150/150?random=%d", rnd.IntN(1000))
}

// canonicalID prefixes the native id with the store slug unless it already
// carries it, as synthesized fallback ids do.
func canonicalID(store domain.Store, native string) string {
	prefix := store.Class() + "-"
	if strings.HasPrefix(native, prefix) {
		return native
	}
	return prefix + native
}

// discountPercent is zero unless the markdown exceeds five percent
func discountPercent(price, original float64) int {
	if original <= 0 {
		return 0
	}
	d := int(math.Round((1 - price/original) * 100))
	if d <= 5 {
		return 0
	}
	return d
}

func firstToken(s, fallback string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return fallback
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
