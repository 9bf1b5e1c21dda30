package catalog

import (
	"strings"

	"github.com/pricecompare/backend/internal/domain"
)

// categoryRule maps any of its keywords to a category
type categoryRule struct {
	category domain.Category
	keywords []string
}

// Rules are evaluated in order; the first rule with a matching keyword wins.
var (
	ebayCategoryRules = []categoryRule{
		{domain.CategoryCellPhones, []string{"phone", "iphone", "samsung"}},
		{domain.CategoryElectronics, []string{"laptop", "camera", "headphone"}},
		{domain.CategoryHomeKitchen, []string{"home", "kitchen", "furniture"}},
	}

	etsyCategoryRules = []categoryRule{
		{domain.CategoryJewelry, []string{"jewelry", "necklace", "bracelet"}},
		{domain.CategoryArt, []string{"art", "painting", "print"}},
		{domain.CategoryClothing, []string{"clothing", "shirt", "dress"}},
	}

	aliExpressCategoryRules = []categoryRule{
		{domain.CategoryCellPhones, []string{"phone", "mobile", "android", "iphone"}},
		{domain.CategoryElectronics, []string{"laptop", "computer", "notebook", "macbook"}},
		{domain.CategoryWatches, []string{"watch", "smartwatch", "fitness", "tracker"}},
		{domain.CategoryClothing, []string{"dress", "shirt", "clothing", "fashion"}},
		{domain.CategoryHomeGarden, []string{"home", "decor", "furniture", "kitchen"}},
	}
)

func categorize(title string, rules []categoryRule, fallback domain.Category) domain.Category {
	title = strings.ToLower(title)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(title, kw) {
				return rule.category
			}
		}
	}
	return fallback
}
