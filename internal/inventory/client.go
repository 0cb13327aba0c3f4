package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cartwright/internal/config"
	"cartwright/internal/domain"
	apperrors "cartwright/internal/errors"
)

// Client talks to the external inventory authority. Checkout treats the
// authority as the source of truth for sale-path stock; local counters are
// only advisory.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.InventoryConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type validateRequest struct {
	ShopID string                 `json:"shopId"`
	Items  []domain.InventoryItem `json:"items"`
}

// Validate asks the authority whether every requested quantity is available.
// A negative verdict is not an error; callers inspect the result. Errors are
// classified so checkout can distinguish a slow authority from a dead one.
func (c *Client) Validate(ctx context.Context, shopID string, items []domain.InventoryItem) (*domain.ValidationResult, error) {
	body, err := json.Marshal(validateRequest{ShopID: shopID, Items: items})
	if err != nil {
		return nil, apperrors.NewInternalError("encoding inventory validation request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/inventory/validate", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewInternalError("building inventory validation request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("inventory authority did not respond in time", err)
		}
		return nil, apperrors.NewUnavailableError("inventory authority unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, apperrors.NewUnavailableError(
			fmt.Sprintf("inventory authority returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("inventory authority rejected request with %d", resp.StatusCode), nil)
	}

	var result domain.ValidationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.NewInternalError("decoding inventory validation response", err)
	}

	return &result, nil
}

// HealthCheck reports whether the authority answers at all. Used by the
// health endpoint, never by checkout.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("inventory authority health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
