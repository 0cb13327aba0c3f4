package domain

// CartLine is one entry in a cart: a SKU snapshot plus quantity and the
// chosen size for sized SKUs.
type CartLine struct {
	SKU  SKU    `json:"sku"`
	Qty  int    `json:"qty"`
	Size string `json:"size,omitempty"`
}

// CartState maps line keys to cart lines. At most one line exists per key.
type CartState map[string]CartLine

// LineKey identifies a cart line: the SKU id alone, or "skuId:size" when a
// size was chosen.
func LineKey(skuID, size string) string {
	if size == "" {
		return skuID
	}
	return skuID + ":" + size
}

// Clone returns a deep-enough copy for read-modify-write cycles; SKU
// snapshots are value types so a shallow map copy suffices.
func (c CartState) Clone() CartState {
	clone := make(CartState, len(c))
	for key, line := range c {
		clone[key] = line
	}
	return clone
}

func (c CartState) IsEmpty() bool {
	return len(c) == 0
}
