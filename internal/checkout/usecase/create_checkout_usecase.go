package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	checkoutservice "cartwright/internal/checkout/service"
	"cartwright/internal/domain"
	apperrors "cartwright/internal/errors"
	"cartwright/internal/payment"
	rentalservice "cartwright/internal/rental/service"
)

type CartPersistence interface {
	Load(ctx context.Context, token string) (domain.CartState, string, error)
}

type Catalog interface {
	GetProductByID(ctx context.Context, id string) (*domain.SKU, error)
}

type Allocator interface {
	Allocate(ctx context.Context, checkoutRef string, requests []rentalservice.Request) error
	Release(ctx context.Context, checkoutRef string) error
}

type InventoryValidator interface {
	Validate(ctx context.Context, shopID string, items []domain.InventoryItem) (*domain.ValidationResult, error)
}

type SessionBuilder interface {
	Build(ctx context.Context, in checkoutservice.BuildInput) (*checkoutservice.Session, error)
}

type PaymentGateway interface {
	CreateSession(ctx context.Context, req payment.CreateSessionRequest) (*payment.SessionRef, error)
}

type IdempotencyGuard interface {
	Begin(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, key string) error
}

type CreateCheckoutInput struct {
	CartToken      string
	ReturnDate     time.Time
	DiscountRate   float64
	Coupon         string
	CustomerID     string
	ClientIP       string
	Extra          map[string]string
	IdempotencyKey string
}

type CheckoutResult struct {
	SessionID string
	URL       string
	Totals    domain.CheckoutTotals
}

type CreateCheckoutUseCase struct {
	persistence CartPersistence
	catalog     Catalog
	allocator   Allocator
	validator   InventoryValidator
	builder     SessionBuilder
	gateway     PaymentGateway
	idempotency IdempotencyGuard
	logger      *zap.Logger

	shopID   string
	currency string
	taxRate  float64
	failOpen bool
}

type Config struct {
	ShopID   string
	Currency string
	TaxRate  float64
	FailOpen bool
}

func NewCreateCheckoutUseCase(
	persistence CartPersistence,
	catalog Catalog,
	allocator Allocator,
	validator InventoryValidator,
	builder SessionBuilder,
	gateway PaymentGateway,
	idempotency IdempotencyGuard,
	cfg Config,
	logger *zap.Logger,
) *CreateCheckoutUseCase {
	return &CreateCheckoutUseCase{
		persistence: persistence,
		catalog:     catalog,
		allocator:   allocator,
		validator:   validator,
		builder:     builder,
		gateway:     gateway,
		idempotency: idempotency,
		logger:      logger,
		shopID:      cfg.ShopID,
		currency:    cfg.Currency,
		taxRate:     cfg.TaxRate,
		failOpen:    cfg.FailOpen,
	}
}

// Execute turns the current cart into a payment session. Rental lines are
// held through the allocator, sale lines are checked against the inventory
// authority, and any hold taken is released again if a later step fails.
func (uc *CreateCheckoutUseCase) Execute(ctx context.Context, in CreateCheckoutInput) (*CheckoutResult, error) {
	checkoutRef := uuid.New().String()
	logger := uc.logger.With(zap.String("checkoutRef", checkoutRef))

	if in.IdempotencyKey != "" {
		claimed, err := uc.idempotency.Begin(ctx, in.IdempotencyKey)
		if err != nil {
			return nil, apperrors.NewInternalError("claiming idempotency key", err)
		}
		if !claimed {
			return nil, apperrors.NewConflictError("checkout already in progress for this key")
		}
	}

	result, err := uc.execute(ctx, checkoutRef, in, logger)
	if err != nil && in.IdempotencyKey != "" {
		// A failed attempt must stay retryable.
		if clearErr := uc.idempotency.Clear(ctx, in.IdempotencyKey); clearErr != nil {
			logger.Warn("failed to clear idempotency key", zap.Error(clearErr))
		}
	}
	return result, err
}

func (uc *CreateCheckoutUseCase) execute(ctx context.Context, checkoutRef string, in CreateCheckoutInput, logger *zap.Logger) (*CheckoutResult, error) {
	cart, _, err := uc.persistence.Load(ctx, in.CartToken)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperrors.NewValidationError("cart is empty")
	}

	// Billed days are derived from the return date, never taken from the
	// client, so pricing and the reservation window cannot disagree.
	rentalFrom := time.Now().UTC().Truncate(24 * time.Hour)
	rentalDays := 0
	if !in.ReturnDate.IsZero() {
		rentalDays = daysBetween(rentalFrom, in.ReturnDate)
		if rentalDays < 1 {
			return nil, apperrors.NewValidationError("returnDate must be in the future", apperrors.ValidationDetail{
				Field:   "returnDate",
				Message: "returnDate must be after today",
			})
		}
	}

	// The cookie snapshot is client-held state; re-resolve every SKU before
	// committing money to it. A cart line pointing at a vanished SKU means
	// corrupted state, not shopper error.
	rentalRequests, saleItems, err := uc.partitionLines(ctx, cart, in, rentalFrom, rentalDays)
	if err != nil {
		return nil, err
	}

	allocated := false
	if len(rentalRequests) > 0 {
		if err := uc.allocator.Allocate(ctx, checkoutRef, rentalRequests); err != nil {
			return nil, err
		}
		allocated = true
	}
	release := func() {
		if allocated {
			if err := uc.allocator.Release(context.WithoutCancel(ctx), checkoutRef); err != nil {
				logger.Error("failed to release holds after abort", zap.Error(err))
			}
		}
	}

	if len(saleItems) > 0 {
		if err := uc.validateSaleStock(ctx, saleItems, logger); err != nil {
			release()
			return nil, err
		}
	}

	session, err := uc.builder.Build(ctx, checkoutservice.BuildInput{
		Cart:         cart,
		RentalDays:   rentalDays,
		ReturnDate:   in.ReturnDate,
		DiscountRate: in.DiscountRate,
		Coupon:       in.Coupon,
		TaxRate:      uc.taxRate,
		Currency:     uc.currency,
		CustomerID:   in.CustomerID,
		ClientIP:     in.ClientIP,
		Extra:        in.Extra,
	})
	if err != nil {
		release()
		return nil, err
	}

	ref, err := uc.gateway.CreateSession(ctx, payment.CreateSessionRequest{
		LineItems:      session.LineItems,
		Metadata:       session.Metadata,
		IdempotencyKey: in.IdempotencyKey,
		ClientIP:       in.ClientIP,
	})
	if err != nil {
		release()
		return nil, apperrors.NewGatewayError("payment session could not be opened", err)
	}

	logger.Info("checkout session created",
		zap.String("sessionId", ref.ID),
		zap.Int64("subtotal", session.Totals.Subtotal),
		zap.String("currency", session.Totals.Currency))

	return &CheckoutResult{
		SessionID: ref.ID,
		URL:       ref.URL,
		Totals:    session.Totals,
	}, nil
}

func (uc *CreateCheckoutUseCase) partitionLines(ctx context.Context, cart domain.CartState, in CreateCheckoutInput, rentalFrom time.Time, rentalDays int) ([]rentalservice.Request, []domain.InventoryItem, error) {
	var rentalRequests []rentalservice.Request
	var saleItems []domain.InventoryItem

	for _, line := range cart {
		sku, err := uc.catalog.GetProductByID(ctx, line.SKU.ID)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return nil, nil, apperrors.NewInternalError("cart references unknown sku "+line.SKU.ID, err)
			}
			return nil, nil, err
		}

		if sku.ForRental && rentalDays > 0 {
			rentalRequests = append(rentalRequests, rentalservice.Request{
				SKU:      sku.ID,
				Quantity: line.Qty,
				DateFrom: rentalFrom,
				DateTo:   in.ReturnDate,
			})
			continue
		}

		var attributes map[string]string
		if line.Size != "" {
			attributes = map[string]string{"size": line.Size}
		}
		saleItems = append(saleItems, domain.InventoryItem{
			SKU:               sku.ID,
			VariantKey:        domain.BuildVariantKey(sku.ID, attributes),
			VariantAttributes: attributes,
			Quantity:          line.Qty,
		})
	}

	return rentalRequests, saleItems, nil
}

// daysBetween counts calendar days from the start of from until to, rounding
// partial days up.
func daysBetween(from, to time.Time) int {
	span := to.Sub(from)
	days := int(span / (24 * time.Hour))
	if span%(24*time.Hour) > 0 {
		days++
	}
	return days
}

func (uc *CreateCheckoutUseCase) validateSaleStock(ctx context.Context, items []domain.InventoryItem, logger *zap.Logger) error {
	result, err := uc.validator.Validate(ctx, uc.shopID, items)
	if err != nil {
		_, timeout := apperrors.IsTimeoutError(err)
		_, unavailable := apperrors.IsUnavailableError(err)
		if (timeout || unavailable) && uc.failOpen {
			logger.Warn("inventory authority unavailable, proceeding fail-open", zap.Error(err))
			return nil
		}
		return err
	}

	if !result.OK {
		insufficient := make([]apperrors.InsufficientItem, len(result.Insufficient))
		for i, item := range result.Insufficient {
			insufficient[i] = apperrors.InsufficientItem{
				SKU:        item.SKU,
				VariantKey: item.VariantKey,
				Available:  item.Available,
			}
		}
		return apperrors.NewConflictError("insufficient stock", insufficient...)
	}

	return nil
}
