package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Inventory interface {
	Decrement(ctx context.Context, shopID, variantKey string, qty int) error
	Increment(ctx context.Context, shopID, variantKey string, qty int) error
}

// FlatAllocator backs rental holds with plain per-SKU counters for shops
// that do not track per-day availability. Dates are ignored; a held unit is
// simply gone until released.
type FlatAllocator struct {
	inventory Inventory
	shopID    string
	logger    *zap.Logger

	mu    sync.Mutex
	holds map[string][]Request
}

func NewFlatAllocator(inventory Inventory, shopID string, logger *zap.Logger) *FlatAllocator {
	return &FlatAllocator{
		inventory: inventory,
		shopID:    shopID,
		logger:    logger,
		holds:     make(map[string][]Request),
	}
}

// Allocate decrements counters one SKU at a time, undoing earlier decrements
// if a later one fails so the all-or-nothing contract holds.
func (a *FlatAllocator) Allocate(ctx context.Context, checkoutRef string, requests []Request) error {
	var taken []Request
	for _, req := range requests {
		if err := a.inventory.Decrement(ctx, a.shopID, req.SKU, req.Quantity); err != nil {
			for _, undo := range taken {
				if incErr := a.inventory.Increment(ctx, a.shopID, undo.SKU, undo.Quantity); incErr != nil {
					a.logger.Error("failed to undo partial allocation",
						zap.String("checkoutRef", checkoutRef),
						zap.String("sku", undo.SKU),
						zap.Error(incErr))
				}
			}
			return err
		}
		taken = append(taken, req)
	}

	a.mu.Lock()
	a.holds[checkoutRef] = taken
	a.mu.Unlock()

	a.logger.Info("flat inventory allocated",
		zap.String("checkoutRef", checkoutRef),
		zap.Int("skuCount", len(taken)))
	return nil
}

func (a *FlatAllocator) Release(ctx context.Context, checkoutRef string) error {
	a.mu.Lock()
	held := a.holds[checkoutRef]
	delete(a.holds, checkoutRef)
	a.mu.Unlock()

	for _, req := range held {
		if err := a.inventory.Increment(ctx, a.shopID, req.SKU, req.Quantity); err != nil {
			a.logger.Error("failed to release flat hold",
				zap.String("checkoutRef", checkoutRef),
				zap.String("sku", req.SKU),
				zap.Error(err))
			return err
		}
	}
	return nil
}
