package pricing

import (
	"context"
	"fmt"
	"math"

	apperrors "cartwright/internal/errors"
)

// Converter turns a minor-unit amount in the catalog currency into the
// checkout currency.
type Converter interface {
	Convert(ctx context.Context, amount int64, currency string) (int64, error)
}

// FixedRateConverter applies configured rates. Totals are converted after
// aggregation, never per line, so rounding error does not accumulate across
// the cart.
type FixedRateConverter struct {
	baseCurrency string
	rates        map[string]float64
}

func NewFixedRateConverter(baseCurrency string, rates map[string]float64) *FixedRateConverter {
	return &FixedRateConverter{
		baseCurrency: baseCurrency,
		rates:        rates,
	}
}

func (c *FixedRateConverter) Convert(ctx context.Context, amount int64, currency string) (int64, error) {
	if currency == c.baseCurrency {
		return amount, nil
	}

	rate, ok := c.rates[currency]
	if !ok {
		return 0, apperrors.NewValidationError(fmt.Sprintf("no conversion rate for currency %s", currency))
	}

	return RoundHalfUp(float64(amount) * rate), nil
}

// RoundHalfUp rounds to the nearest integer with ties going up, the rounding
// the storefront has always shown customers.
func RoundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
