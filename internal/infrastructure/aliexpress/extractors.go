package aliexpress

import (
	"encoding/json"

	"github.com/pricecompare/backend/internal/domain"
)

// Extractor pulls the product list out of one gateway response shape.
// It reports false when the shape does not match or holds no products.
type Extractor func(body []byte) ([]domain.AliExpressItem, bool)

// Extractors are tried in order; the first non-empty extraction wins
var Extractors = []Extractor{
	extractResultItems,
	extractItems,
	extractResults,
}

// Extract runs body through Extractors
func Extract(body []byte) []domain.AliExpressItem {
	for _, extract := range Extractors {
		if items, ok := extract(body); ok {
			return items
		}
	}
	return nil
}

func extractResultItems(body []byte) ([]domain.AliExpressItem, bool) {
	var envelope struct {
		Result *struct {
			Items []json.RawMessage `json:"items"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Result == nil {
		return nil, false
	}
	return decodeItems(envelope.Result.Items)
}

func extractItems(body []byte) ([]domain.AliExpressItem, bool) {
	var envelope struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false
	}
	return decodeItems(envelope.Items)
}

func extractResults(body []byte) ([]domain.AliExpressItem, bool) {
	var envelope struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false
	}
	return decodeItems(envelope.Results)
}

// decodeItems decodes each item on its own; an item that does not decode is
// skipped without affecting the rest of the page.
func decodeItems(raw []json.RawMessage) ([]domain.AliExpressItem, bool) {
	items := make([]domain.AliExpressItem, 0, len(raw))
	for _, r := range raw {
		var item domain.AliExpressItem
		if err := json.Unmarshal(r, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, len(items) > 0
}
