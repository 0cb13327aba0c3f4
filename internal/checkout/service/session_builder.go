package service

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"cartwright/internal/domain"
	apperrors "cartwright/internal/errors"
	"cartwright/internal/pricing"
)

// BuildInput carries everything the session builder needs besides the cart
// itself. DiscountRate and TaxRate are fractions, not percentages.
type BuildInput struct {
	Cart         domain.CartState
	RentalDays   int
	ReturnDate   time.Time
	DiscountRate float64
	Coupon       string
	TaxRate      float64
	Currency     string
	CustomerID   string
	ClientIP     string
	Extra        map[string]string
}

// Session is the provider-agnostic payload handed to the payment
// collaborator.
type Session struct {
	LineItems []domain.LineItem
	Metadata  map[string]string
	Totals    domain.CheckoutTotals
}

type SessionBuilder struct {
	converter pricing.Converter
	logger    *zap.Logger
}

func NewSessionBuilder(converter pricing.Converter, logger *zap.Logger) *SessionBuilder {
	return &SessionBuilder{
		converter: converter,
		logger:    logger,
	}
}

// Build prices the cart into payment line items, totals and flat string
// metadata. Rental SKUs are priced per day times the rental length; the
// discount rate applies per unit with half-up rounding, and deposits become
// their own synthetic lines, never multiplied by days and never discounted.
//
// Totals are aggregated in the catalog currency first and converted once per
// total, so per-line conversion rounding cannot accumulate.
func (b *SessionBuilder) Build(ctx context.Context, in BuildInput) (*Session, error) {
	if in.Cart.IsEmpty() {
		return nil, apperrors.NewValidationError("cart is empty")
	}
	if in.DiscountRate < 0 || in.DiscountRate > 1 {
		return nil, apperrors.NewValidationError("discount rate must be between 0 and 1", apperrors.ValidationDetail{
			Field:   "discountRate",
			Message: "discountRate must be between 0 and 1",
		})
	}

	keys := make([]string, 0, len(in.Cart))
	for key := range in.Cart {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var lineItems []domain.LineItem
	sizes := make(map[string]string)
	var subtotalBase, grossBase, depositBase int64

	for _, key := range keys {
		line := in.Cart[key]

		unitBase := line.SKU.Price
		if line.SKU.ForRental && in.RentalDays > 0 {
			unitBase = line.SKU.Price * int64(in.RentalDays)
		}
		discountedUnit := pricing.RoundHalfUp(float64(unitBase) * (1 - in.DiscountRate))

		unitAmount, err := b.converter.Convert(ctx, discountedUnit, in.Currency)
		if err != nil {
			return nil, err
		}

		name := line.SKU.Title
		if line.Size != "" {
			name += " (" + line.Size + ")"
			// Keyed by bare SKU id; fulfilment tooling looks sizes up by
			// product, not by cart line.
			sizes[line.SKU.ID] = line.Size
		}

		lineItems = append(lineItems, domain.LineItem{
			Name:       name,
			UnitAmount: unitAmount,
			Quantity:   line.Qty,
			Currency:   in.Currency,
		})
		subtotalBase += discountedUnit * int64(line.Qty)
		grossBase += unitBase * int64(line.Qty)

		if line.SKU.Deposit > 0 {
			depositAmount, err := b.converter.Convert(ctx, line.SKU.Deposit, in.Currency)
			if err != nil {
				return nil, err
			}
			lineItems = append(lineItems, domain.LineItem{
				Name:       line.SKU.Title + " deposit",
				UnitAmount: depositAmount,
				Quantity:   line.Qty,
				Currency:   in.Currency,
			})
			depositBase += line.SKU.Deposit * int64(line.Qty)
		}
	}

	subtotal, err := b.converter.Convert(ctx, subtotalBase, in.Currency)
	if err != nil {
		return nil, err
	}
	depositTotal, err := b.converter.Convert(ctx, depositBase, in.Currency)
	if err != nil {
		return nil, err
	}
	discount, err := b.converter.Convert(ctx, grossBase-subtotalBase, in.Currency)
	if err != nil {
		return nil, err
	}

	taxAmount := pricing.RoundHalfUp(float64(subtotal) * in.TaxRate)

	totals := domain.CheckoutTotals{
		Subtotal:     subtotal,
		DepositTotal: depositTotal,
		Discount:     discount,
		TaxAmount:    taxAmount,
		Currency:     in.Currency,
	}

	metadata, err := b.buildMetadata(in, totals, sizes)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("checkout session built",
		zap.Int("lineItems", len(lineItems)),
		zap.Int64("subtotal", subtotal),
		zap.String("currency", in.Currency))

	return &Session{
		LineItems: lineItems,
		Metadata:  metadata,
		Totals:    totals,
	}, nil
}

// Payment providers only carry flat string metadata, so every value is
// rendered to a string here.
func (b *SessionBuilder) buildMetadata(in BuildInput, totals domain.CheckoutTotals, sizes map[string]string) (map[string]string, error) {
	metadata := map[string]string{
		"subtotal":     strconv.FormatInt(totals.Subtotal, 10),
		"depositTotal": strconv.FormatInt(totals.DepositTotal, 10),
		"discount":     strconv.FormatInt(totals.Discount, 10),
		"taxRate":      strconv.FormatFloat(in.TaxRate, 'f', -1, 64),
		"taxAmount":    strconv.FormatInt(totals.TaxAmount, 10),
		"currency":     totals.Currency,
	}

	if in.RentalDays > 0 {
		metadata["rentalDays"] = strconv.Itoa(in.RentalDays)
	}
	if !in.ReturnDate.IsZero() {
		metadata["returnDate"] = in.ReturnDate.Format("2006-01-02")
	}
	if in.Coupon != "" {
		metadata["coupon"] = in.Coupon
	}
	if in.CustomerID != "" {
		metadata["customerId"] = in.CustomerID
	}
	if in.ClientIP != "" {
		metadata["clientIp"] = in.ClientIP
	}
	if len(sizes) > 0 {
		encoded, err := json.Marshal(sizes)
		if err != nil {
			return nil, apperrors.NewInternalError("encoding sizes metadata", err)
		}
		metadata["sizes"] = string(encoded)
	}

	for key, value := range in.Extra {
		metadata[key] = value
	}

	return metadata, nil
}
