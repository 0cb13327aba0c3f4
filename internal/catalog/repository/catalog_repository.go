package repository

import (
	"context"
	"database/sql"
	"encoding/json"
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

// GetProductByID returns the live SKU, including its current stock counter.
// Sizes are stored as a JSON array column; NULL means the SKU has no size
// dimension.
func (r *MySQLRepository) GetProductByID(ctx context.Context, id string) (*domain.SKU, error) {
	query := `
		SELECT id, title, price, deposit, stock, sizes, forSale, forRental
		FROM Skus
		WHERE id = ?`

	var sku domain.SKU
	var sizesRaw sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sku.ID, &sku.Title, &sku.Price, &sku.Deposit, &sku.Stock,
		&sizesRaw, &sku.ForSale, &sku.ForRental,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sku %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying sku %s: %w", id, err)
	}

	if sizesRaw.Valid && sizesRaw.String != "" {
		if err := json.Unmarshal([]byte(sizesRaw.String), &sku.Sizes); err != nil {
			return nil, fmt.Errorf("decoding sizes for sku %s: %w", id, err)
		}
	}

	return &sku, nil
}

func (r *MySQLRepository) ListProducts(ctx context.Context) ([]domain.SKU, error) {
	query := `
		SELECT id, title, price, deposit, stock, sizes, forSale, forRental
		FROM Skus
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying skus: %w", err)
	}
	defer rows.Close()

	var skus []domain.SKU
	for rows.Next() {
		var sku domain.SKU
		var sizesRaw sql.NullString
		err := rows.Scan(
			&sku.ID, &sku.Title, &sku.Price, &sku.Deposit, &sku.Stock,
			&sizesRaw, &sku.ForSale, &sku.ForRental,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning sku row: %w", err)
		}
		if sizesRaw.Valid && sizesRaw.String != "" {
			if err := json.Unmarshal([]byte(sizesRaw.String), &sku.Sizes); err != nil {
				return nil, fmt.Errorf("decoding sizes for sku %s: %w", sku.ID, err)
			}
		}
		skus = append(skus, sku)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sku rows: %w", err)
	}

	return skus, nil
}
