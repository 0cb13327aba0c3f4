package domain

import "sort"

// InventoryItem is the authoritative available count for a sale-path SKU
// variant.
type InventoryItem struct {
	SKU               string            `json:"sku"`
	VariantKey        string            `json:"variantKey"`
	VariantAttributes map[string]string `json:"variantAttributes"`
	Quantity          int               `json:"quantity"`
}

// BuildVariantKey derives the canonical variant identifier: the bare SKU, or
// "sku:attr=val,..." with attribute names sorted so equal attribute sets
// always produce the same key.
func BuildVariantKey(sku string, attributes map[string]string) string {
	if len(attributes) == 0 {
		return sku
	}

	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	key := sku + ":"
	for i, name := range names {
		if i > 0 {
			key += ","
		}
		key += name + "=" + attributes[name]
	}
	return key
}

// InsufficientStock describes one under-stocked variant in a validation
// response.
type InsufficientStock struct {
	SKU        string `json:"sku"`
	VariantKey string `json:"variantKey"`
	Available  int    `json:"available"`
}

// ValidationResult is the inventory authority's verdict for a checkout
// attempt.
type ValidationResult struct {
	OK           bool                `json:"ok"`
	Insufficient []InsufficientStock `json:"insufficient"`
}
