package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cartwright/internal/domain"
	apperrors "cartwright/internal/errors"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

// FindUnitForUpdate locks the capacity row for a rental SKU so concurrent
// allocations of the same SKU serialize on it.
func (r *MySQLRepository) FindUnitForUpdate(ctx context.Context, tx *sql.Tx, skuID string) (*domain.RentalUnit, error) {
	var unit domain.RentalUnit
	err := tx.QueryRowContext(ctx, `
		SELECT skuId, totalUnits
		FROM RentalUnits
		WHERE skuId = ?
		FOR UPDATE`, skuID,
	).Scan(&unit.SKU, &unit.TotalUnits)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no rental units for sku %s", skuID))
	}
	if err != nil {
		return nil, fmt.Errorf("locking rental unit %s: %w", skuID, err)
	}
	return &unit, nil
}

// FindOverlapping returns reservations touching [from, to). DateTo is
// exclusive on both sides of the comparison.
func (r *MySQLRepository) FindOverlapping(ctx context.Context, tx *sql.Tx, skuID string, from, to string) ([]domain.Reservation, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, checkoutRef, skuId, quantity, dateFrom, dateTo, createdAt
		FROM RentalReservations
		WHERE skuId = ?
		  AND dateFrom < ?
		  AND dateTo > ?`,
		skuID, to, from,
	)
	if err != nil {
		return nil, fmt.Errorf("querying reservations for %s: %w", skuID, err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		err := rows.Scan(
			&res.ID, &res.CheckoutRef, &res.SKU, &res.Quantity,
			&res.DateFrom, &res.DateTo, &res.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservation rows: %w", err)
	}

	return reservations, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, tx *sql.Tx, res domain.Reservation) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO RentalReservations (checkoutRef, skuId, quantity, dateFrom, dateTo)
		VALUES (?, ?, ?, ?, ?)`,
		res.CheckoutRef, res.SKU, res.Quantity,
		res.DateFrom.Format("2006-01-02"), res.DateTo.Format("2006-01-02"),
	)
	if err != nil {
		return fmt.Errorf("inserting reservation for %s: %w", res.SKU, err)
	}
	return nil
}

// DeleteByCheckoutRef releases every hold a checkout attempt created. Safe to
// call when nothing was held.
func (r *MySQLRepository) DeleteByCheckoutRef(ctx context.Context, checkoutRef string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM RentalReservations
		WHERE checkoutRef = ?`, checkoutRef,
	)
	if err != nil {
		return fmt.Errorf("releasing reservations for %s: %w", checkoutRef, err)
	}
	return nil
}
