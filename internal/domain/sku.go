package domain

// SKU is a catalog snapshot of a purchasable variant. Price and Deposit are
// in minor units of the catalog currency. Cart lines hold a copy taken at
// add-time: priced fields stay frozen while Stock is always re-read from the
// live catalog.
type SKU struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Price     int64    `json:"price"`
	Deposit   int64    `json:"deposit"`
	Stock     int      `json:"stock"`
	Sizes     []string `json:"sizes"`
	ForSale   bool     `json:"forSale"`
	ForRental bool     `json:"forRental"`
}

func (s SKU) HasSizes() bool {
	return len(s.Sizes) > 0
}

func (s SKU) HasSize(size string) bool {
	for _, candidate := range s.Sizes {
		if candidate == size {
			return true
		}
	}
	return false
}
