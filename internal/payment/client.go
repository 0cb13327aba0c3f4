package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cartwright/internal/domain"
)

// CreateSessionRequest is the provider-agnostic session payload. The gateway
// owns the provider-specific translation.
type CreateSessionRequest struct {
	LineItems      []domain.LineItem `json:"lineItems"`
	Metadata       map[string]string `json:"metadata"`
	IdempotencyKey string            `json:"-"`
	ClientIP       string            `json:"clientIp,omitempty"`
}

// SessionRef points the shopper at the hosted payment page.
type SessionRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// CreateSession opens a payment session at the gateway. Any failure here is
// the gateway's, never the shopper's; callers surface it as a bad gateway.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionRef, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding payment session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payment-sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building payment session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("payment gateway unreachable", zap.Error(err))
		return nil, fmt.Errorf("calling payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("payment gateway rejected session", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("payment gateway returned %d", resp.StatusCode)
	}

	var ref SessionRef
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		return nil, fmt.Errorf("decoding payment session response: %w", err)
	}
	if ref.ID == "" || ref.URL == "" {
		return nil, fmt.Errorf("payment gateway returned incomplete session")
	}

	return &ref, nil
}
