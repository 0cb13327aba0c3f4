package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cartwright/internal/errors"
)

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, int64(2), RoundHalfUp(1.5))
	assert.Equal(t, int64(1), RoundHalfUp(1.4))
	assert.Equal(t, int64(1), RoundHalfUp(1.49999))
	assert.Equal(t, int64(3), RoundHalfUp(2.5))
	assert.Equal(t, int64(0), RoundHalfUp(0.0))
	assert.Equal(t, int64(-1), RoundHalfUp(-1.5))
}

func TestConvert_SameCurrencyIsIdentity(t *testing.T) {
	c := NewFixedRateConverter("EUR", nil)

	got, err := c.Convert(context.Background(), 12345, "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), got)
}

func TestConvert_AppliesRateWithHalfUpRounding(t *testing.T) {
	c := NewFixedRateConverter("EUR", map[string]float64{"USD": 1.085})

	// 1001 * 1.085 = 1086.085 rounds down to 1086.
	got, err := c.Convert(context.Background(), 1001, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(1086), got)

	// 1000 * 1.085 = 1085.0 exactly.
	got, err = c.Convert(context.Background(), 1000, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(1085), got)
}

func TestConvert_UnknownCurrency(t *testing.T) {
	c := NewFixedRateConverter("EUR", map[string]float64{"USD": 1.085})

	_, err := c.Convert(context.Background(), 100, "GBP")
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}
