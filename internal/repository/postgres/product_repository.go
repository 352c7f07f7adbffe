// backend-go/internal/repository/postgres/product_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stockwise/backend-go/internal/domain"
	"github.com/stockwise/backend-go/internal/repository"
)

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) repository.ProductReader {
	return &productRepository{db: db}
}

// NewProductWriter exposes the same repository through the writer contract
// used by seeding drivers.
func NewProductWriter(db *sqlx.DB) repository.ProductWriter {
	return &productRepository{db: db}
}

func (r *productRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, sku, name, category, price, current_stock,
		       lead_time_days, safety_stock, reorder_point, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var product domain.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		return nil, fmt.Errorf("error getting product %d: %w", id, err)
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, sku, name, category, price, current_stock,
		       lead_time_days, safety_stock, reorder_point, created_at, updated_at
		FROM products
		ORDER BY id
	`

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Upsert(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (sku, name, category, price, current_stock,
		                      lead_time_days, safety_stock, reorder_point, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (sku) DO UPDATE SET
			name           = EXCLUDED.name,
			category       = EXCLUDED.category,
			price          = EXCLUDED.price,
			current_stock  = EXCLUDED.current_stock,
			lead_time_days = EXCLUDED.lead_time_days,
			safety_stock   = EXCLUDED.safety_stock,
			reorder_point  = EXCLUDED.reorder_point,
			updated_at     = NOW()
		RETURNING id
	`

	if err := r.db.GetContext(ctx, &product.ID, query,
		product.SKU, product.Name, product.Category, product.Price, product.CurrentStock,
		product.LeadTimeDays, product.SafetyStock, product.ReorderPoint); err != nil {
		return fmt.Errorf("error upserting product %s: %w", product.SKU, err)
	}
	return nil
}
