package repository

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "cartwright/internal/errors"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

// Decrement atomically takes qty units off a variant counter. The conditional
// WHERE clause makes the check and the write a single statement, so two
// concurrent checkouts cannot both succeed on the last unit.
func (r *MySQLRepository) Decrement(ctx context.Context, shopID, variantKey string, qty int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE InventoryItems
		SET quantity = quantity - ?
		WHERE shopId = ? AND variantKey = ? AND quantity >= ?`,
		qty, shopID, variantKey, qty,
	)
	if err != nil {
		return fmt.Errorf("decrementing inventory for %s: %w", variantKey, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows for %s: %w", variantKey, err)
	}
	if affected == 0 {
		available, err := r.Available(ctx, shopID, variantKey)
		if err != nil {
			available = 0
		}
		return apperrors.NewConflictError("insufficient stock", apperrors.InsufficientItem{
			VariantKey: variantKey,
			Available:  available,
		})
	}

	return nil
}

// Increment restores units, used when a checkout is abandoned after a
// successful decrement.
func (r *MySQLRepository) Increment(ctx context.Context, shopID, variantKey string, qty int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE InventoryItems
		SET quantity = quantity + ?
		WHERE shopId = ? AND variantKey = ?`,
		qty, shopID, variantKey,
	)
	if err != nil {
		return fmt.Errorf("incrementing inventory for %s: %w", variantKey, err)
	}
	return nil
}

func (r *MySQLRepository) Available(ctx context.Context, shopID, variantKey string) (int, error) {
	var quantity int
	err := r.db.QueryRowContext(ctx, `
		SELECT quantity FROM InventoryItems
		WHERE shopId = ? AND variantKey = ?`,
		shopID, variantKey,
	).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying inventory for %s: %w", variantKey, err)
	}
	return quantity, nil
}
