package catalog

import (
	"strings"

	"github.com/samber/lo"

	"github.com/pricecompare/backend/internal/domain"
)

// dealKey groups listings of the same product across stores: the brand plus
// the name without its first word, which is usually the brand again.
func dealKey(p domain.Product) string {
	words := strings.Split(p.Name, " ")
	return p.Brand + " " + strings.Join(words[1:], " ")
}

// MarkBestDeals clears every IsBestDeal flag, then flags the cheapest
// member(s) of each group with more than one product.
func MarkBestDeals(products []domain.Product) {
	for i := range products {
		products[i].IsBestDeal = false
	}

	groups := lo.GroupBy(lo.Range(len(products)), func(i int) string {
		return dealKey(products[i])
	})

	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		lowest := lo.Min(lo.Map(members, func(i int, _ int) float64 {
			return products[i].Price
		}))
		for _, i := range members {
			if products[i].Price == lowest {
				products[i].IsBestDeal = true
			}
		}
	}
}
