package domain

// EbayItem mirrors an item summary from the eBay Browse API search endpoint
type EbayItem struct {
	ItemID     string      `json:"itemId"`
	Title      string      `json:"title"`
	Price      *EbayAmount `json:"price,omitempty"`
	Image      *EbayImage  `json:"image,omitempty"`
	Condition  string      `json:"condition,omitempty"`
	Brand      string      `json:"brand,omitempty"`
	Seller     *EbaySeller `json:"seller,omitempty"`
	ItemWebURL string      `json:"itemWebUrl,omitempty"`
	ProductURL string      `json:"productUrl,omitempty"`
}

// EbayAmount is a price with currency; eBay sends the value as a decimal string
type EbayAmount struct {
	Value    FlexFloat `json:"value"`
	Currency string    `json:"currency,omitempty"`
}

// EbayImage holds the primary listing image
type EbayImage struct {
	ImageURL string `json:"imageUrl"`
}

// EbaySeller identifies the listing seller
type EbaySeller struct {
	Username string `json:"username"`
}

// EbaySearchResponse is the envelope returned by item_summary/search
type EbaySearchResponse struct {
	ItemSummaries []EbayItem `json:"itemSummaries"`
	Total         int        `json:"total"`
}

// EtsyListing mirrors an active listing from the Etsy Open API v3
type EtsyListing struct {
	ListingID    FlexString  `json:"listing_id"`
	Title        string      `json:"title"`
	Price        EtsyPrice   `json:"price"`
	CurrencyCode string      `json:"currency_code,omitempty"`
	Images       []EtsyImage `json:"Images,omitempty"`
	Shop         *EtsyShop   `json:"Shop,omitempty"`
	URL          string      `json:"url,omitempty"`
	ProductURL   string      `json:"productUrl,omitempty"`
}

// EtsyImage holds one listing image rendition
type EtsyImage struct {
	URL200x200 string `json:"url_200x200"`
}

// EtsyShop identifies the shop selling a listing
type EtsyShop struct {
	ShopName string `json:"shop_name"`
}

// EtsySearchResponse is the envelope returned by listings/active
type EtsySearchResponse struct {
	Count   int           `json:"count"`
	Results []EtsyListing `json:"results"`
}

// AliExpressItem mirrors a product from the AliExpress DataHub gateway.
// The gateway is inconsistent across deployments, so several fields have aliases.
type AliExpressItem struct {
	ProductID          FlexString `json:"productId,omitempty"`
	ProductIDAlt       FlexString `json:"product_id,omitempty"`
	ID                 FlexString `json:"id,omitempty"`
	ProductTitle       string     `json:"product_title,omitempty"`
	Title              string     `json:"title,omitempty"`
	ProductPrice       FlexString `json:"product_price,omitempty"`
	Price              FlexString `json:"price,omitempty"`
	OriginalPrice      FlexString `json:"original_price,omitempty"`
	Discount           FlexString `json:"discount,omitempty"`
	ProductMainImage   string     `json:"product_main_image_url,omitempty"`
	Image              string     `json:"image,omitempty"`
	ProductImage       string     `json:"product_image,omitempty"`
	ProductRating      FlexFloat  `json:"product_rating,omitempty"`
	ProductReviewCount FlexFloat  `json:"product_review_count,omitempty"`
	StoreName          string     `json:"store_name,omitempty"`
	ProductOrders      FlexFloat  `json:"product_orders,omitempty"`
	ProductDetailURL   string     `json:"product_detail_url,omitempty"`
	ProductURL         string     `json:"productUrl,omitempty"`
}

// NativeID returns the first non-empty product identifier alias
func (i AliExpressItem) NativeID() string {
	for _, id := range []FlexString{i.ProductID, i.ProductIDAlt, i.ID} {
		if id != "" {
			return string(id)
		}
	}
	return ""
}

// DisplayTitle returns the first non-empty title alias
func (i AliExpressItem) DisplayTitle() string {
	if i.ProductTitle != "" {
		return i.ProductTitle
	}
	return i.Title
}
