package domain

import (
	"strings"
	"time"
)

// Store identifies one of the supported marketplaces
type Store string

const (
	StoreEbay       Store = "eBay"
	StoreEtsy       Store = "Etsy"
	StoreAliExpress Store = "AliExpress"
)

// Stores lists the marketplaces in response order
var Stores = []Store{StoreEbay, StoreEtsy, StoreAliExpress}

// Class returns the lower-case store slug used in URLs, cache keys and ids
func (s Store) Class() string {
	return strings.ToLower(string(s))
}

// ParseStore resolves a store slug such as "ebay" (case-insensitive)
func ParseStore(slug string) (Store, error) {
	for _, s := range Stores {
		if strings.EqualFold(s.Class(), strings.TrimSpace(slug)) {
			return s, nil
		}
	}
	return "", ErrUnknownSource
}

// Category is the heuristic product category derived from title keywords
type Category string

const (
	CategoryCellPhones  Category = "Cell Phones & Accessories"
	CategoryElectronics Category = "Electronics"
	CategoryHomeKitchen Category = "Home & Kitchen"
	CategoryHomeGarden  Category = "Home & Garden"
	CategoryWatches     Category = "Watches & Accessories"
	CategoryClothing    Category = "Clothing & Shoes"
	CategoryJewelry     Category = "Jewelry"
	CategoryArt         Category = "Art & Collectibles"
	CategoryHandmade    Category = "Handmade"
	CategorySports      Category = "Sports & Outdoors"
	CategoryBeauty      Category = "Beauty"
	CategoryToys        Category = "Toys & Games"
	CategoryApparel     Category = "Clothing"
	CategoryBooks       Category = "Books"
	CategoryAutomotive  Category = "Automotive"
	CategoryOther       Category = "Other Categories"
)

// Product is the canonical record every marketplace item is normalized into
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Category      Category  `json:"category"`
	Store         Store     `json:"store"`
	StoreClass    string    `json:"storeClass"`
	Image         string    `json:"image"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"originalPrice"`
	Discount      int       `json:"discount"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"reviewCount"`
	Shipping      string    `json:"shipping"`
	PrimeShipping bool      `json:"primeShipping"`
	Condition     string    `json:"condition"`
	InStock       bool      `json:"inStock"`
	IsBestDeal    bool      `json:"isBestDeal"`
	ShopName      string    `json:"shopName"`
	DeliveryTime  string    `json:"deliveryTime"`
	Orders        int       `json:"orders,omitempty"`
	PriceChange   float64   `json:"priceChange"`
	ProductURL    string    `json:"productUrl,omitempty"`
	LastUpdated   time.Time `json:"lastUpdated"`

	// EstimatedPricing is set when OriginalPrice and Discount were synthesized
	// rather than read from the marketplace payload.
	EstimatedPricing bool `json:"estimatedPricing"`
}

// HasFreeShipping reports whether the shipping label advertises free shipping
func (p Product) HasFreeShipping() bool {
	return strings.Contains(p.Shipping, "Free")
}

// SearchResults holds the per-marketplace raw item lists of one aggregated search
type SearchResults struct {
	Ebay       []EbayItem       `json:"ebay"`
	Etsy       []EtsyListing    `json:"etsy"`
	AliExpress []AliExpressItem `json:"aliexpress"`
	Query      string           `json:"query"`
}

// SearchResponse is the combined search payload served to comparison clients
type SearchResponse struct {
	SearchResults
	Restricted bool      `json:"restricted,omitempty"`
	Message    string    `json:"message,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Cached     bool      `json:"cached"`
}
