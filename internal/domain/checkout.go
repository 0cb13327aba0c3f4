package domain

// CheckoutTotals are derived amounts for one checkout session, all in minor
// units of Currency. Never persisted apart from the session they priced.
type CheckoutTotals struct {
	Subtotal     int64  `json:"subtotal"`
	DepositTotal int64  `json:"depositTotal"`
	Discount     int64  `json:"discount"`
	TaxAmount    int64  `json:"taxAmount"`
	Currency     string `json:"currency"`
}

// LineItem is one provider-agnostic entry handed to the payment collaborator.
type LineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unitAmount"`
	Quantity   int    `json:"quantity"`
	Currency   string `json:"currency"`
}
