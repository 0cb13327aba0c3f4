package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cartwright/internal/cart/codec"
	"cartwright/internal/cart/service"
	"cartwright/internal/domain"
	apperrors "cartwright/internal/errors"
)

type CartService interface {
	Get(ctx context.Context, token string) (domain.CartState, string, error)
	Add(ctx context.Context, token string, in service.LineInput) (domain.CartState, string, error)
	Patch(ctx context.Context, token, lineKey string, qty int) (domain.CartState, string, error)
	Put(ctx context.Context, token string, lines []service.LineInput) (domain.CartState, string, error)
	Delete(ctx context.Context, token, lineKey string) (domain.CartState, string, error)
}

type CartController struct {
	service   CartService
	cookieTTL time.Duration
	logger    *zap.Logger
}

func NewCartController(svc CartService, cookieTTL time.Duration, logger *zap.Logger) *CartController {
	return &CartController{
		service:   svc,
		cookieTTL: cookieTTL,
		logger:    logger,
	}
}

type skuRef struct {
	ID string `json:"id"`
}

type addRequest struct {
	SKU  skuRef `json:"sku"`
	Qty  int    `json:"qty"`
	Size string `json:"size"`
}

type patchRequest struct {
	ID  string `json:"id"`
	Qty *int   `json:"qty"`
}

type putRequest struct {
	Lines []putLine `json:"lines"`
}

type putLine struct {
	SKU  skuRef `json:"sku"`
	Qty  int    `json:"qty"`
	Size string `json:"size"`
}

type deleteRequest struct {
	ID string `json:"id"`
}

type cartResponse struct {
	Cart domain.CartState `json:"cart"`
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	state, token, err := c.service.Get(r.Context(), codec.ReadCookie(r))
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	// Reads echo the existing token; a client without a cart gets its first
	// cookie from its first mutation.
	if token != "" {
		codec.WriteCookie(w, token, c.cookieTTL)
	}
	c.writeJSON(w, http.StatusOK, cartResponse{Cart: state})
}

func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if req.SKU.ID == "" {
		c.writeValidationError(w, "sku.id is required", apperrors.ValidationDetail{
			Field:   "sku.id",
			Message: "sku.id is required",
		})
		return
	}

	state, token, err := c.service.Add(r.Context(), codec.ReadCookie(r), service.LineInput{
		SKUID: req.SKU.ID,
		Qty:   req.Qty,
		Size:  req.Size,
	})
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	codec.WriteCookie(w, token, c.cookieTTL)
	c.writeJSON(w, http.StatusOK, cartResponse{Cart: state})
}

func (c *CartController) Patch(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if req.ID == "" || req.Qty == nil {
		c.writeValidationError(w, "id and qty are required", apperrors.ValidationDetail{
			Field:   "body",
			Message: "id and qty are required",
		})
		return
	}

	state, token, err := c.service.Patch(r.Context(), codec.ReadCookie(r), req.ID, *req.Qty)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	codec.WriteCookie(w, token, c.cookieTTL)
	c.writeJSON(w, http.StatusOK, cartResponse{Cart: state})
}

func (c *CartController) Put(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req putRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if req.Lines == nil {
		c.writeValidationError(w, "lines is required", apperrors.ValidationDetail{
			Field:   "lines",
			Message: "lines is required",
		})
		return
	}

	lines := make([]service.LineInput, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = service.LineInput{
			SKUID: line.SKU.ID,
			Qty:   line.Qty,
			Size:  line.Size,
		}
	}

	state, token, err := c.service.Put(r.Context(), codec.ReadCookie(r), lines)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	codec.WriteCookie(w, token, c.cookieTTL)
	c.writeJSON(w, http.StatusOK, cartResponse{Cart: state})
}

func (c *CartController) Delete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if req.ID == "" {
		c.writeValidationError(w, "id is required", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id is required",
		})
		return
	}

	state, token, err := c.service.Delete(r.Context(), codec.ReadCookie(r), req.ID)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	codec.WriteCookie(w, token, c.cookieTTL)
	c.writeJSON(w, http.StatusOK, cartResponse{Cart: state})
}

type conflictResponse struct {
	Error        string                       `json:"error"`
	Message      string                       `json:"message"`
	Insufficient []apperrors.InsufficientItem `json:"insufficient,omitempty"`
}

func (c *CartController) handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}
	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		c.writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "NOT_FOUND",
			"message": nfe.Message,
		})
		return
	}
	if ce, ok := apperrors.IsConflictError(err); ok {
		c.writeJSON(w, http.StatusConflict, conflictResponse{
			Error:        "CONFLICT",
			Message:      ce.Message,
			Insufficient: ce.Insufficient,
		})
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "INTERNAL_ERROR",
		"message": "an unexpected error occurred",
	})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *CartController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *CartController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
