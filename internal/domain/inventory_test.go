package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildVariantKey_NoAttributes(t *testing.T) {
	assert.Equal(t, "sku-1", BuildVariantKey("sku-1", nil))
	assert.Equal(t, "sku-1", BuildVariantKey("sku-1", map[string]string{}))
}

func TestBuildVariantKey_SortsAttributeNames(t *testing.T) {
	key := BuildVariantKey("sku-1", map[string]string{
		"size":  "M",
		"color": "red",
	})

	assert.Equal(t, "sku-1:color=red,size=M", key)
}

func TestBuildVariantKey_Deterministic(t *testing.T) {
	a := BuildVariantKey("sku-1", map[string]string{"b": "2", "a": "1"})
	b := BuildVariantKey("sku-1", map[string]string{"a": "1", "b": "2"})

	assert.Equal(t, a, b)
}

func TestReservation_Overlaps_EndExclusive(t *testing.T) {
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC)
	r := Reservation{SKU: "sku-1", Quantity: 1, DateFrom: from, DateTo: to}

	assert.True(t, r.Overlaps(from))
	assert.True(t, r.Overlaps(from.AddDate(0, 0, 2)))
	assert.False(t, r.Overlaps(to))
	assert.False(t, r.Overlaps(from.AddDate(0, 0, -1)))
}
