package cart

import (
	"context"

	"cartwright/internal/cart/codec"
	"cartwright/internal/cart/store"
	"cartwright/internal/domain"
)

// Persistence abstracts how cart state travels between requests. Load turns
// the client-held token into state plus an opaque ref for Save; Save persists
// state and returns the token the client must be handed back. Malformed
// tokens always load as an empty cart.
type Persistence interface {
	Load(ctx context.Context, token string) (domain.CartState, string, error)
	Save(ctx context.Context, ref string, state domain.CartState) (string, error)
}

// EmbeddedPersistence keeps the full cart inside the token itself; there is
// no server-side state and the ref is always empty.
type EmbeddedPersistence struct {
	codec *codec.Embedded
}

func NewEmbeddedPersistence(c *codec.Embedded) *EmbeddedPersistence {
	return &EmbeddedPersistence{codec: c}
}

func (p *EmbeddedPersistence) Load(ctx context.Context, token string) (domain.CartState, string, error) {
	return p.codec.Decode(token), "", nil
}

func (p *EmbeddedPersistence) Save(ctx context.Context, ref string, state domain.CartState) (string, error) {
	return p.codec.Encode(state)
}

// ReferencedPersistence keeps state in a Store keyed by an unguessable cart
// ID; the token carries only the (optionally signed) ID.
type ReferencedPersistence struct {
	codec *codec.Referenced
	store store.Store
}

func NewReferencedPersistence(c *codec.Referenced, s store.Store) *ReferencedPersistence {
	return &ReferencedPersistence{codec: c, store: s}
}

func (p *ReferencedPersistence) Load(ctx context.Context, token string) (domain.CartState, string, error) {
	cartID := p.codec.Decode(token)
	if cartID == "" {
		return domain.CartState{}, "", nil
	}

	state, err := p.store.Get(ctx, cartID)
	if err != nil {
		return nil, "", err
	}
	return state, cartID, nil
}

func (p *ReferencedPersistence) Save(ctx context.Context, ref string, state domain.CartState) (string, error) {
	cartID := ref
	if cartID == "" {
		created, err := p.store.Create(ctx)
		if err != nil {
			return "", err
		}
		cartID = created
	}

	if err := p.store.Set(ctx, cartID, state); err != nil {
		return "", err
	}
	return p.codec.Encode(cartID), nil
}
