package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"cartwright/internal/domain"
	apperrors "cartwright/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ReservationRepository interface {
	FindUnitForUpdate(ctx context.Context, tx *sql.Tx, skuID string) (*domain.RentalUnit, error)
	FindOverlapping(ctx context.Context, tx *sql.Tx, skuID string, from, to string) ([]domain.Reservation, error)
	Insert(ctx context.Context, tx *sql.Tx, res domain.Reservation) error
	DeleteByCheckoutRef(ctx context.Context, checkoutRef string) error
}

// Request asks for quantity units of a rental SKU over [DateFrom, DateTo).
type Request struct {
	SKU      string
	Quantity int
	DateFrom time.Time
	DateTo   time.Time
}

type AllocationService struct {
	db               TransactionManager
	repo             ReservationRepository
	logger           *zap.Logger
	txTimeout        time.Duration
	maxRetryAttempts int
}

func NewAllocationService(
	db TransactionManager,
	repo ReservationRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
	maxRetryAttempts int,
) *AllocationService {
	return &AllocationService{
		db:               db,
		repo:             repo,
		logger:           logger,
		txTimeout:        txTimeout,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// Allocate holds rental inventory for every request or for none of them. On
// insufficiency it returns a conflict listing every under-capacity SKU, not
// just the first one found.
func (s *AllocationService) Allocate(ctx context.Context, checkoutRef string, requests []Request) error {
	if len(requests) == 0 {
		return nil
	}

	for _, req := range requests {
		if req.Quantity < 1 {
			return apperrors.NewValidationError(fmt.Sprintf("invalid quantity for sku %s", req.SKU))
		}
		if !req.DateFrom.Before(req.DateTo) {
			return apperrors.NewValidationError(fmt.Sprintf("empty rental window for sku %s", req.SKU))
		}
	}

	// Lock capacity rows in a fixed order so concurrent allocations of the
	// same SKU set cannot deadlock on each other.
	sort.Slice(requests, func(i, j int) bool { return requests[i].SKU < requests[j].SKU })

	return s.allocateWithRetry(ctx, checkoutRef, requests)
}

func (s *AllocationService) allocateWithRetry(ctx context.Context, checkoutRef string, requests []Request) error {
	maxAttempts := s.maxRetryAttempts
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.allocateOnce(ctx, checkoutRef, requests)
		if err == nil {
			return nil
		}

		if isDeadlockError(err) {
			if attempt < maxAttempts {
				base := backoffs[(attempt-1)%len(backoffs)]
				jitter := base * time.Duration(0.8+rand.Float64()*0.4)
				time.Sleep(base + jitter)
				s.logger.Warn("deadlock detected, retrying",
					zap.Int("attempt", attempt),
					zap.Int("maxAttempts", maxAttempts),
					zap.String("checkoutRef", checkoutRef))
				continue
			}
			break
		}

		return err
	}

	return apperrors.NewDeadlockError("max retries exceeded")
}

func (s *AllocationService) allocateOnce(ctx context.Context, checkoutRef string, requests []Request) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	// Rollback is a no-op once committed.
	defer tx.Rollback()

	units := make(map[string]int)
	existing := make(map[string][]domain.Reservation)

	for _, env := range skuEnvelopes(requests) {
		unit, err := s.repo.FindUnitForUpdate(txCtx, tx, env.sku)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				// Missing unit rows surface as zero availability below.
				continue
			}
			return err
		}
		units[env.sku] = unit.TotalUnits

		from := env.from.Format("2006-01-02")
		to := env.to.Format("2006-01-02")
		reservations, err := s.repo.FindOverlapping(txCtx, tx, env.sku, from, to)
		if err != nil {
			return err
		}
		existing[env.sku] = reservations
	}

	insufficient := capacityShortfalls(requests, units, existing)
	if len(insufficient) > 0 {
		for _, item := range insufficient {
			s.logger.Warn("rental capacity exhausted",
				zap.String("checkoutRef", checkoutRef),
				zap.String("sku", item.SKU),
				zap.Int("available", item.Available))
		}
		return apperrors.NewConflictError("insufficient rental capacity", insufficient...)
	}

	for _, req := range requests {
		err := s.repo.Insert(txCtx, tx, domain.Reservation{
			CheckoutRef: checkoutRef,
			SKU:         req.SKU,
			Quantity:    req.Quantity,
			DateFrom:    req.DateFrom,
			DateTo:      req.DateTo,
		})
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit allocation", zap.String("checkoutRef", checkoutRef), zap.Error(err))
		return err
	}

	s.logger.Info("rental inventory allocated",
		zap.String("checkoutRef", checkoutRef),
		zap.Int("skuCount", len(requests)))
	return nil
}

// Release drops every hold the given checkout created.
func (s *AllocationService) Release(ctx context.Context, checkoutRef string) error {
	if err := s.repo.DeleteByCheckoutRef(ctx, checkoutRef); err != nil {
		s.logger.Error("failed to release reservations",
			zap.String("checkoutRef", checkoutRef), zap.Error(err))
		return err
	}
	s.logger.Info("reservations released", zap.String("checkoutRef", checkoutRef))
	return nil
}

type skuEnvelope struct {
	sku      string
	from, to time.Time
}

// skuEnvelopes collapses requests into one lock-and-fetch window per SKU,
// preserving the SKU-sorted lock order.
func skuEnvelopes(requests []Request) []skuEnvelope {
	var envelopes []skuEnvelope
	index := make(map[string]int)
	for _, req := range requests {
		i, ok := index[req.SKU]
		if !ok {
			index[req.SKU] = len(envelopes)
			envelopes = append(envelopes, skuEnvelope{sku: req.SKU, from: req.DateFrom, to: req.DateTo})
			continue
		}
		if req.DateFrom.Before(envelopes[i].from) {
			envelopes[i].from = req.DateFrom
		}
		if req.DateTo.After(envelopes[i].to) {
			envelopes[i].to = req.DateTo
		}
	}
	return envelopes
}

// capacityShortfalls checks every request against committed reservations plus
// the requests already accepted for this checkout, so two cart lines for the
// same SKU cannot both claim the last unit.
func capacityShortfalls(requests []Request, units map[string]int, existing map[string][]domain.Reservation) []apperrors.InsufficientItem {
	var insufficient []apperrors.InsufficientItem
	accepted := make(map[string][]domain.Reservation)

	for _, req := range requests {
		total, ok := units[req.SKU]
		if !ok {
			insufficient = append(insufficient, apperrors.InsufficientItem{
				SKU:       req.SKU,
				Available: 0,
			})
			continue
		}

		held := make([]domain.Reservation, 0, len(existing[req.SKU])+len(accepted[req.SKU]))
		held = append(held, existing[req.SKU]...)
		held = append(held, accepted[req.SKU]...)

		available := total - maxConcurrentUse(held, req.DateFrom, req.DateTo)
		if available < req.Quantity {
			insufficient = append(insufficient, apperrors.InsufficientItem{
				SKU:       req.SKU,
				Available: available,
			})
			continue
		}

		accepted[req.SKU] = append(accepted[req.SKU], domain.Reservation{
			SKU:      req.SKU,
			Quantity: req.Quantity,
			DateFrom: req.DateFrom,
			DateTo:   req.DateTo,
		})
	}

	return insufficient
}

// maxConcurrentUse returns the peak number of units committed on any single
// day of [from, to). Capacity is a per-day constraint, so only the worst day
// matters.
func maxConcurrentUse(reservations []domain.Reservation, from, to time.Time) int {
	peak := 0
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		used := 0
		for _, res := range reservations {
			if res.Overlaps(day) {
				used += res.Quantity
			}
		}
		if used > peak {
			peak = used
		}
	}
	return peak
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
