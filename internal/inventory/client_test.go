package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cartwright/internal/config"
	"cartwright/internal/domain"
	apperrors "cartwright/internal/errors"
)

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(config.InventoryConfig{
		BaseURL: baseURL,
		Token:   "test-token",
		Timeout: timeout,
	}, zap.NewNop())
}

func TestValidate_OK(t *testing.T) {
	var gotAuth string
	var gotReq validateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(domain.ValidationResult{OK: true})
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)
	result, err := client.Validate(context.Background(), "shop-1", []domain.InventoryItem{
		{SKU: "X", VariantKey: "X:size=M", Quantity: 2},
	})

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "shop-1", gotReq.ShopID)
	require.Len(t, gotReq.Items, 1)
	assert.Equal(t, "X:size=M", gotReq.Items[0].VariantKey)
}

func TestValidate_InsufficientIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.ValidationResult{
			OK: false,
			Insufficient: []domain.InsufficientStock{
				{SKU: "X", VariantKey: "X", Available: 1},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)
	result, err := client.Validate(context.Background(), "shop-1", []domain.InventoryItem{
		{SKU: "X", VariantKey: "X", Quantity: 3},
	})

	require.NoError(t, err)
	assert.False(t, result.OK)
	require.Len(t, result.Insufficient, 1)
	assert.Equal(t, 1, result.Insufficient[0].Available)
}

func TestValidate_SlowAuthorityIsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(domain.ValidationResult{OK: true})
	}))
	defer server.Close()

	client := newTestClient(server.URL, 20*time.Millisecond)
	result, err := client.Validate(context.Background(), "shop-1", []domain.InventoryItem{
		{SKU: "X", VariantKey: "X", Quantity: 1},
	})

	assert.Nil(t, result)
	_, ok := apperrors.IsTimeoutError(err)
	assert.True(t, ok, "expected timeout error, got %v", err)
}

func TestValidate_DeadAuthorityIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL, time.Second)
	result, err := client.Validate(context.Background(), "shop-1", nil)

	assert.Nil(t, result)
	_, ok := apperrors.IsUnavailableError(err)
	assert.True(t, ok, "expected unavailable error, got %v", err)
}

func TestValidate_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)
	_, err := client.Validate(context.Background(), "shop-1", nil)

	_, ok := apperrors.IsUnavailableError(err)
	assert.True(t, ok, "expected unavailable error, got %v", err)
}

func TestValidate_ClientErrorIsInternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)
	_, err := client.Validate(context.Background(), "shop-1", nil)

	_, ok := apperrors.IsInternalError(err)
	assert.True(t, ok, "expected internal error, got %v", err)
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)
	assert.True(t, client.HealthCheck(context.Background()))

	server.Close()
	assert.False(t, client.HealthCheck(context.Background()))
}
