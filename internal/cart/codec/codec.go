package codec

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"cartwright/internal/domain"
	"cartwright/internal/errors"
)

// CookieName carries the cart token. The __Host- prefix pins the cookie to
// the origin (Secure, Path=/, no Domain).
const CookieName = "__Host-CART_ID"

// Browsers cap cookies around 4KB; leave headroom for name and attributes.
const maxTokenBytes = 3800

// Embedded serializes the whole cart state into the token. Stateless: no
// server-side lookup, but token size grows with the cart.
type Embedded struct {
	secret []byte
}

// NewEmbedded builds an embedded codec. An empty secret disables signing.
func NewEmbedded(secret string) *Embedded {
	return &Embedded{secret: []byte(secret)}
}

func (c *Embedded) Encode(state domain.CartState) (string, error) {
	if state == nil {
		state = domain.CartState{}
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return "", errors.NewInternalError("encoding cart state", err)
	}

	token := sign(base64.RawURLEncoding.EncodeToString(payload), c.secret)
	if len(token) > maxTokenBytes {
		return "", errors.NewValidationError("cart too large for cookie transport")
	}
	return token, nil
}

// Decode never fails: the token is untrusted client input, so anything
// malformed or tampered with is treated as an empty cart.
func (c *Embedded) Decode(token string) domain.CartState {
	payload, ok := verify(token, c.secret)
	if !ok {
		return domain.CartState{}
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return domain.CartState{}
	}

	var state domain.CartState
	if err := json.Unmarshal(raw, &state); err != nil || state == nil {
		return domain.CartState{}
	}
	return state
}

// Referenced tokens carry only an opaque cart ID; state lives in the cart
// store.
type Referenced struct {
	secret []byte
}

func NewReferenced(secret string) *Referenced {
	return &Referenced{secret: []byte(secret)}
}

func (c *Referenced) Encode(cartID string) string {
	return sign(cartID, c.secret)
}

// Decode returns the cart ID, or "" for anything that is not a well-formed
// signed UUID.
func (c *Referenced) Decode(token string) string {
	payload, ok := verify(token, c.secret)
	if !ok {
		return ""
	}
	if _, err := uuid.Parse(payload); err != nil {
		return ""
	}
	return payload
}

// sign appends an HMAC-SHA256 tag as "payload.tag". With no secret the
// payload passes through unsigned.
func sign(payload string, secret []byte) string {
	if len(secret) == 0 {
		return payload
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return payload + "." + hex.EncodeToString(mac.Sum(nil))
}

func verify(token string, secret []byte) (string, bool) {
	if token == "" {
		return "", false
	}
	if len(secret) == 0 {
		return token, true
	}

	idx := strings.LastIndex(token, ".")
	if idx < 0 {
		return "", false
	}
	payload, tag := token[:idx], token[idx+1:]

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(tag), []byte(expected)) {
		return "", false
	}
	return payload, true
}
