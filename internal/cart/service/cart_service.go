package service

import (
	"context"

	"go.uber.org/zap"

	"cartwright/internal/domain"
	apperrors "cartwright/internal/errors"
)

// Catalog resolves live SKUs. Stock checks always go against this, never
// against the cart's stale snapshot, so stock drops are honored even for
// items already in the cart.
type Catalog interface {
	GetProductByID(ctx context.Context, id string) (*domain.SKU, error)
}

type Persistence interface {
	Load(ctx context.Context, token string) (domain.CartState, string, error)
	Save(ctx context.Context, ref string, state domain.CartState) (string, error)
}

// LineInput is one requested cart line.
type LineInput struct {
	SKUID string
	Qty   int
	Size  string
}

type CartService struct {
	catalog     Catalog
	persistence Persistence
	logger      *zap.Logger
}

func NewCartService(catalog Catalog, persistence Persistence, logger *zap.Logger) *CartService {
	return &CartService{
		catalog:     catalog,
		persistence: persistence,
		logger:      logger,
	}
}

// Get returns the current state unchanged. Reads never write: the token is
// echoed back as received, so a cookieless GET does not mint a cart.
func (s *CartService) Get(ctx context.Context, token string) (domain.CartState, string, error) {
	state, _, err := s.persistence.Load(ctx, token)
	if err != nil {
		return nil, "", err
	}
	return state, token, nil
}

// Add merges qty into the line for skuID (+size). The SKU snapshot's priced
// fields freeze at first add; only the availability fields track the live
// catalog.
func (s *CartService) Add(ctx context.Context, token string, in LineInput) (domain.CartState, string, error) {
	state, ref, err := s.persistence.Load(ctx, token)
	if err != nil {
		return nil, "", err
	}

	next := state.Clone()
	if err := s.applyAdd(ctx, next, in); err != nil {
		return nil, "", err
	}

	newToken, err := s.persistence.Save(ctx, ref, next)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("cart line added",
		zap.String("sku", in.SKUID),
		zap.String("size", in.Size),
		zap.Int("qty", in.Qty),
	)
	return next, newToken, nil
}

// Patch overwrites a line's quantity. Zero removes the line. Increases are
// re-validated against live catalog stock; the cart must never silently grow
// past what the shop can deliver.
func (s *CartService) Patch(ctx context.Context, token, lineKey string, qty int) (domain.CartState, string, error) {
	state, ref, err := s.persistence.Load(ctx, token)
	if err != nil {
		return nil, "", err
	}

	line, ok := state[lineKey]
	if !ok {
		return nil, "", apperrors.NewNotFoundError("cart line not found")
	}
	if qty < 0 {
		return nil, "", apperrors.NewValidationError("qty must not be negative", apperrors.ValidationDetail{
			Field:   "qty",
			Message: "qty must be a non-negative integer",
		})
	}

	next := state.Clone()
	if qty == 0 {
		delete(next, lineKey)
	} else {
		if qty > line.Qty {
			sku, err := s.catalog.GetProductByID(ctx, line.SKU.ID)
			if err != nil {
				return nil, "", err
			}
			if qty > sku.Stock {
				return nil, "", apperrors.NewConflictError("insufficient stock", apperrors.InsufficientItem{
					SKU:       sku.ID,
					Available: sku.Stock,
				})
			}
			line.SKU.Stock = sku.Stock
		}
		line.Qty = qty
		next[lineKey] = line
	}

	newToken, err := s.persistence.Save(ctx, ref, next)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("cart line patched", zap.String("lineKey", lineKey), zap.Int("qty", qty))
	return next, newToken, nil
}

// Put replaces the whole cart with the given lines after per-line validation
// identical to Add. Used by client resync flows.
func (s *CartService) Put(ctx context.Context, token string, lines []LineInput) (domain.CartState, string, error) {
	_, ref, err := s.persistence.Load(ctx, token)
	if err != nil {
		return nil, "", err
	}

	next := domain.CartState{}
	for _, in := range lines {
		if err := s.applyAdd(ctx, next, in); err != nil {
			return nil, "", err
		}
	}

	newToken, err := s.persistence.Save(ctx, ref, next)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("cart replaced", zap.Int("lineCount", len(next)))
	return next, newToken, nil
}

// Delete removes a line. Deleting an absent line is NotFound, every time.
func (s *CartService) Delete(ctx context.Context, token, lineKey string) (domain.CartState, string, error) {
	state, ref, err := s.persistence.Load(ctx, token)
	if err != nil {
		return nil, "", err
	}

	if _, ok := state[lineKey]; !ok {
		return nil, "", apperrors.NewNotFoundError("cart line not found")
	}

	next := state.Clone()
	delete(next, lineKey)

	newToken, err := s.persistence.Save(ctx, ref, next)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("cart line removed", zap.String("lineKey", lineKey))
	return next, newToken, nil
}

// applyAdd validates one line against the live catalog and merges it into
// state in place.
func (s *CartService) applyAdd(ctx context.Context, state domain.CartState, in LineInput) error {
	if in.Qty < 1 {
		return apperrors.NewValidationError("qty must be a positive integer", apperrors.ValidationDetail{
			Field:   "qty",
			Message: "qty must be a positive integer",
		})
	}

	sku, err := s.catalog.GetProductByID(ctx, in.SKUID)
	if err != nil {
		return err
	}

	if sku.HasSizes() && in.Size == "" {
		return apperrors.NewValidationError("size is required", apperrors.ValidationDetail{
			Field:   "size",
			Message: "size is required for this product",
		})
	}
	if in.Size != "" && !sku.HasSize(in.Size) {
		return apperrors.NewValidationError("unknown size", apperrors.ValidationDetail{
			Field:   "size",
			Message: "size is not offered for this product",
		})
	}

	key := domain.LineKey(sku.ID, in.Size)
	existing, present := state[key]

	newQty := existing.Qty + in.Qty
	if newQty > sku.Stock {
		return apperrors.NewConflictError("insufficient stock", apperrors.InsufficientItem{
			SKU:       sku.ID,
			Available: sku.Stock,
		})
	}

	snapshot := *sku
	if present {
		// Priced fields stay frozen at add-time; only availability follows
		// the live catalog.
		snapshot = existing.SKU
		snapshot.Stock = sku.Stock
	}

	state[key] = domain.CartLine{SKU: snapshot, Qty: newQty, Size: in.Size}
	return nil
}
