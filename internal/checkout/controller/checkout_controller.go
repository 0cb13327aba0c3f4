package controller

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cartwright/internal/cart/codec"
	"cartwright/internal/checkout/usecase"
	"cartwright/internal/domain"
	apperrors "cartwright/internal/errors"
)

type CheckoutUseCase interface {
	Execute(ctx context.Context, in usecase.CreateCheckoutInput) (*usecase.CheckoutResult, error)
}

type CheckoutController struct {
	usecase CheckoutUseCase
	logger  *zap.Logger
}

func NewCheckoutController(uc CheckoutUseCase, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{
		usecase: uc,
		logger:  logger,
	}
}

// The rental day count is never accepted from the client; it is derived from
// returnDate server-side so the billed days always match the reserved window.
type createSessionRequest struct {
	ReturnDate   string            `json:"returnDate"`
	DiscountRate float64           `json:"discountRate"`
	Coupon       string            `json:"coupon"`
	CustomerID   string            `json:"customerId"`
	Metadata     map[string]string `json:"metadata"`
}

type createSessionResponse struct {
	SessionID string                `json:"sessionId"`
	URL       string                `json:"url"`
	Totals    domain.CheckoutTotals `json:"totals"`
}

func (c *CheckoutController) CreateSession(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	var returnDate time.Time
	if req.ReturnDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ReturnDate)
		if err != nil {
			c.writeValidationError(w, "invalid returnDate", apperrors.ValidationDetail{
				Field:   "returnDate",
				Message: "returnDate must be formatted YYYY-MM-DD",
			})
			return
		}
		returnDate = parsed
	}
	if req.DiscountRate < 0 || req.DiscountRate > 1 {
		c.writeValidationError(w, "invalid discountRate", apperrors.ValidationDetail{
			Field:   "discountRate",
			Message: "discountRate must be between 0 and 1",
		})
		return
	}

	result, err := c.usecase.Execute(r.Context(), usecase.CreateCheckoutInput{
		CartToken:      codec.ReadCookie(r),
		ReturnDate:     returnDate,
		DiscountRate:   req.DiscountRate,
		Coupon:         req.Coupon,
		CustomerID:     req.CustomerID,
		ClientIP:       clientIP(r),
		Extra:          req.Metadata,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, createSessionResponse{
		SessionID: result.SessionID,
		URL:       result.URL,
		Totals:    result.Totals,
	})
}

type conflictResponse struct {
	Error        string                       `json:"error"`
	Message      string                       `json:"message"`
	Insufficient []apperrors.InsufficientItem `json:"insufficient,omitempty"`
}

func (c *CheckoutController) handleUseCaseError(w http.ResponseWriter, err error, logger *zap.Logger) {
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
	if te, ok := apperrors.IsTimeoutError(err); ok {
		logger.Error("upstream timeout", zap.Error(te))
		c.writeJSON(w, http.StatusGatewayTimeout, map[string]string{
			"error":   "TIMEOUT",
			"message": te.Message,
		})
		return
	}
	if ue, ok := apperrors.IsUnavailableError(err); ok {
		logger.Error("upstream unavailable", zap.Error(ue))
		c.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "UNAVAILABLE",
			"message": ue.Message,
		})
		return
	}
	if ge, ok := apperrors.IsGatewayError(err); ok {
		logger.Error("payment gateway failure", zap.Error(ge))
		c.writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":   "PAYMENT_GATEWAY_ERROR",
			"message": ge.Message,
		})
		return
	}
	if de, ok := apperrors.IsDeadlockError(err); ok {
		logger.Error("allocation kept deadlocking", zap.Error(de))
		c.writeJSON(w, http.StatusConflict, map[string]string{
			"error":   "CONFLICT",
			"message": "could not allocate inventory, please retry",
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

func (c *CheckoutController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *CheckoutController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
