package catalog

import (
	"fmt"
	"time"

	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/random"
)

const sampleItemsPerStore = 8

var sampleCategories = []domain.Category{
	domain.CategoryElectronics,
	domain.CategoryHomeKitchen,
	domain.CategorySports,
	domain.CategoryBeauty,
	domain.CategoryToys,
	domain.CategoryApparel,
	domain.CategoryBooks,
	domain.CategoryAutomotive,
}

var sampleBrands = map[string][]string{
	"electronics": {"Apple", "Samsung", "Sony", "LG", "Bose", "Microsoft", "Google", "OnePlus"},
	"home":        {"KitchenAid", "Instant Pot", "Dyson", "iRobot", "Philips", "Black+Decker", "Ninja", "Cuisinart"},
	"fashion":     {"Nike", "Adidas", "Levi's", "Under Armour", "Puma", "Reebok", "New Balance", "Skechers"},
}

func sampleBrandPool(c domain.Category) []string {
	switch c {
	case domain.CategoryHomeKitchen:
		return sampleBrands["home"]
	case domain.CategorySports, domain.CategoryApparel:
		return sampleBrands["fashion"]
	default:
		return sampleBrands["electronics"]
	}
}

var sampleBasePrices = map[domain.Category]map[string]float64{
	domain.CategoryElectronics: {"": 300, "Apple": 500, "Samsung": 400, "Sony": 450, "LG": 350},
	domain.CategoryHomeKitchen: {"": 150, "KitchenAid": 300, "Dyson": 400, "Instant Pot": 120},
	domain.CategorySports:      {"": 80, "Nike": 120, "Adidas": 100, "Under Armour": 90},
	domain.CategoryBeauty:      {"": 25},
	domain.CategoryToys:        {"": 40},
}

func sampleBasePrice(c domain.Category, brand string) float64 {
	prices, ok := sampleBasePrices[c]
	if !ok {
		return 200
	}
	if p, ok := prices[brand]; ok {
		return p
	}
	return prices[""]
}

var sampleNames = map[domain.Category][]string{
	domain.CategoryElectronics: {"Wireless Earbuds", "Smart Watch", "Bluetooth Speaker", "Headphones", "Tablet"},
	domain.CategoryHomeKitchen: {"Air Purifier", "Stand Mixer", "Vacuum Cleaner", "Coffee Maker", "Blender"},
	domain.CategorySports:      {"Running Shoes", "Yoga Mat", "Dumbbells", "Basketball", "Tennis Racket"},
	domain.CategoryBeauty:      {"Moisturizer", "Foundation", "Lipstick", "Shampoo", "Perfume"},
	domain.CategoryToys:        {"Action Figure", "Board Game", "Puzzle", "Building Blocks", "Remote Car"},
}

func sampleName(c domain.Category, i int) string {
	names, ok := sampleNames[c]
	if !ok {
		names = sampleNames[domain.CategoryElectronics]
	}
	return names[i%len(names)]
}

// SampleProducts builds the client-local demo catalog shown when a search
// fails or yields nothing: eight items per store in each sample category.
func SampleProducts(rnd random.Source, now time.Time) []domain.Product {
	products := make([]domain.Product, 0, len(sampleCategories)*len(domain.Stores)*sampleItemsPerStore)

	for _, category := range sampleCategories {
		brands := sampleBrandPool(category)
		for _, store := range domain.Stores {
			for i := 0; i < sampleItemsPerStore; i++ {
				brand := random.Pick(rnd, brands)
				current := sampleBasePrice(category, brand) * random.Between(rnd, 0.7, 1.3)
				original := current * random.Between(rnd, 1, 1.3)
				last := original * random.Between(rnd, 0.9, 1.1)

				products = append(products, domain.Product{
					ID:               fmt.Sprintf("%s-sample-%s-%d-%d", store.Class(), slug(string(category)), i, len(products)),
					Name:             brand + " " + sampleName(category, i),
					Brand:            brand,
					Category:         category,
					Store:            store,
					StoreClass:       store.Class(),
					Image:            placeholderImage(rnd),
					Price:            round2(current),
					OriginalPrice:    round2(original),
					Discount:         discountPercent(current, original),
					Rating:           round1(random.Between(rnd, 3, 5)),
					ReviewCount:      rnd.IntN(10000),
					Shipping:         sampleShipping(rnd),
					PrimeShipping:    store == domain.StoreEtsy && rnd.Float64() > 0.5,
					Condition:        "New",
					InStock:          true,
					ShopName:         sampleShop(store, i),
					DeliveryTime:     deliveryTime(store),
					PriceChange:      (current - last) / last * 100,
					LastUpdated:      now,
					EstimatedPricing: true,
				})
			}
		}
	}

	MarkBestDeals(products)
	return products
}

func sampleShipping(rnd random.Source) string {
	if rnd.Float64() > 0.3 {
		return freeShipping
	}
	return "$5.99 Shipping"
}

func sampleShop(store domain.Store, i int) string {
	switch store {
	case domain.StoreEbay:
		return fmt.Sprintf("eBay_Seller_%d", i+1)
	case domain.StoreEtsy:
		return fmt.Sprintf("Etsy_Shop_%d", i+1)
	default:
		return fmt.Sprintf("Global_Store_%d", i+1)
	}
}

func deliveryTime(store domain.Store) string {
	switch store {
	case domain.StoreEbay:
		return ebayDelivery
	case domain.StoreEtsy:
		return etsyDelivery
	default:
		return aliExpressDelivery
	}
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			out = append(out, r)
		case len(out) > 0 && out[len(out)-1] != '-':
			out = append(out, '-')
		}
	}
	return string(out)
}
