// backend-go/internal/repository/postgres/sales_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stockwise/backend-go/internal/domain"
	"github.com/stockwise/backend-go/internal/repository"
)

type salesRepository struct {
	db *sqlx.DB
}

func NewSalesRepository(db *sqlx.DB) repository.SalesReader {
	return &salesRepository{db: db}
}

func NewSalesWriter(db *sqlx.DB) repository.SalesWriter {
	return &salesRepository{db: db}
}

func (r *salesRepository) History(ctx context.Context, productID int64, since time.Time) ([]domain.SalesObservation, error) {
	query := `
		SELECT product_id, sale_date, quantity_sold
		FROM sales_records
		WHERE product_id = $1 AND sale_date >= $2
		ORDER BY sale_date
	`

	var observations []domain.SalesObservation
	if err := r.db.SelectContext(ctx, &observations, query, productID, since); err != nil {
		return nil, fmt.Errorf("error getting sales history for product %d: %w", productID, err)
	}
	return observations, nil
}

func (r *salesRepository) Upsert(ctx context.Context, obs domain.SalesObservation) error {
	query := `
		INSERT INTO sales_records (product_id, sale_date, quantity_sold, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (product_id, sale_date) DO UPDATE SET
			quantity_sold = EXCLUDED.quantity_sold
	`

	if _, err := r.db.ExecContext(ctx, query, obs.ProductID, obs.SaleDate, obs.QuantitySold); err != nil {
		return fmt.Errorf("error upserting sales record for product %d on %s: %w",
			obs.ProductID, obs.SaleDate.Format("2006-01-02"), err)
	}
	return nil
}
