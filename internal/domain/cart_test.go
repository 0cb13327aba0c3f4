package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineKey_WithoutSize(t *testing.T) {
	assert.Equal(t, "sku-1", LineKey("sku-1", ""))
}

func TestLineKey_WithSize(t *testing.T) {
	assert.Equal(t, "sku-1:M", LineKey("sku-1", "M"))
}

func TestCartState_Clone_Independent(t *testing.T) {
	state := CartState{
		"sku-1": {SKU: SKU{ID: "sku-1", Stock: 5}, Qty: 2},
	}

	clone := state.Clone()
	line := clone["sku-1"]
	line.Qty = 4
	clone["sku-1"] = line

	assert.Equal(t, 2, state["sku-1"].Qty)
	assert.Equal(t, 4, clone["sku-1"].Qty)
}

func TestCartState_IsEmpty(t *testing.T) {
	assert.True(t, CartState{}.IsEmpty())
	assert.True(t, CartState(nil).IsEmpty())
	assert.False(t, CartState{"k": {Qty: 1}}.IsEmpty())
}

func TestSKU_HasSize(t *testing.T) {
	sku := SKU{ID: "sku-1", Sizes: []string{"S", "M"}}

	assert.True(t, sku.HasSizes())
	assert.True(t, sku.HasSize("M"))
	assert.False(t, sku.HasSize("XL"))
	assert.False(t, SKU{ID: "sku-2"}.HasSizes())
}
