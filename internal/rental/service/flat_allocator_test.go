package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "cartwright/internal/errors"
)

type mockInventory struct {
	DecrementFunc func(ctx context.Context, shopID, variantKey string, qty int) error
	increments    []string
}

func (m *mockInventory) Decrement(ctx context.Context, shopID, variantKey string, qty int) error {
	if m.DecrementFunc == nil {
		return nil
	}
	return m.DecrementFunc(ctx, shopID, variantKey, qty)
}

func (m *mockInventory) Increment(ctx context.Context, shopID, variantKey string, qty int) error {
	m.increments = append(m.increments, variantKey)
	return nil
}

func TestFlatAllocate_Success(t *testing.T) {
	var decremented []string
	inv := &mockInventory{
		DecrementFunc: func(ctx context.Context, shopID, variantKey string, qty int) error {
			assert.Equal(t, "shop-1", shopID)
			decremented = append(decremented, variantKey)
			return nil
		},
	}
	alloc := NewFlatAllocator(inv, "shop-1", zap.NewNop())

	err := alloc.Allocate(context.Background(), "ref-1", []Request{
		{SKU: "a", Quantity: 1},
		{SKU: "b", Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, decremented)
	assert.Empty(t, inv.increments)
}

func TestFlatAllocate_PartialFailureUndoes(t *testing.T) {
	inv := &mockInventory{
		DecrementFunc: func(ctx context.Context, shopID, variantKey string, qty int) error {
			if variantKey == "b" {
				return apperrors.NewConflictError("insufficient stock",
					apperrors.InsufficientItem{VariantKey: "b", Available: 0})
			}
			return nil
		},
	}
	alloc := NewFlatAllocator(inv, "shop-1", zap.NewNop())

	err := alloc.Allocate(context.Background(), "ref-1", []Request{
		{SKU: "a", Quantity: 1},
		{SKU: "b", Quantity: 2},
	})
	_, ok := apperrors.IsConflictError(err)
	require.True(t, ok)
	// The successful decrement of "a" is rolled back.
	assert.Equal(t, []string{"a"}, inv.increments)
}

func TestFlatRelease_RestoresHeldUnits(t *testing.T) {
	inv := &mockInventory{}
	alloc := NewFlatAllocator(inv, "shop-1", zap.NewNop())

	require.NoError(t, alloc.Allocate(context.Background(), "ref-1", []Request{
		{SKU: "a", Quantity: 1},
	}))
	require.NoError(t, alloc.Release(context.Background(), "ref-1"))
	assert.Equal(t, []string{"a"}, inv.increments)

	// Releasing twice does not double-restore.
	require.NoError(t, alloc.Release(context.Background(), "ref-1"))
	assert.Equal(t, []string{"a"}, inv.increments)
}

func TestFlatRelease_UnknownRefIsNoop(t *testing.T) {
	inv := &mockInventory{}
	alloc := NewFlatAllocator(inv, "shop-1", zap.NewNop())

	assert.NoError(t, alloc.Release(context.Background(), "ghost"))
	assert.Empty(t, inv.increments)
}
