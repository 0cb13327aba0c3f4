package store

import (
	"context"

	"cartwright/internal/domain"
)

// Store is server-side cart state keyed by opaque, unguessable IDs. Get on an
// unknown or expired ID yields an empty state, never an error: carts expire
// silently and callers just see an empty cart. No enumeration API exists.
type Store interface {
	Create(ctx context.Context) (string, error)
	Get(ctx context.Context, cartID string) (domain.CartState, error)
	Set(ctx context.Context, cartID string, state domain.CartState) error
}
