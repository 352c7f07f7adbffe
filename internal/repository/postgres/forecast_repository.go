// backend-go/internal/repository/postgres/forecast_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stockwise/backend-go/internal/domain"
	"github.com/stockwise/backend-go/internal/repository"
)

type forecastRepository struct {
	db *sqlx.DB
}

func NewForecastRepository(db *sqlx.DB) repository.ForecastWriter {
	return &forecastRepository{db: db}
}

func NewForecastReader(db *sqlx.DB) repository.ForecastReader {
	return &forecastRepository{db: db}
}

func (r *forecastRepository) Upsert(ctx context.Context, result domain.ForecastResult) error {
	query := `
		INSERT INTO demand_forecasts (product_id, forecast_date, model_used,
		                              predicted_demand, confidence_score, mae, rmse, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (product_id, forecast_date, model_used) DO UPDATE SET
			predicted_demand = EXCLUDED.predicted_demand,
			confidence_score = EXCLUDED.confidence_score,
			mae              = EXCLUDED.mae,
			rmse             = EXCLUDED.rmse,
			created_at       = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query,
		result.ProductID, result.ForecastDate, result.Model,
		result.PredictedDemand, result.Confidence, result.MAE, result.RMSE); err != nil {
		return fmt.Errorf("error upserting forecast for product %d: %w", result.ProductID, err)
	}
	return nil
}

func (r *forecastRepository) ListByProduct(ctx context.Context, productID int64, from time.Time) ([]domain.ForecastResult, error) {
	query := `
		SELECT product_id, forecast_date, model_used, predicted_demand,
		       confidence_score, mae, rmse, created_at
		FROM demand_forecasts
		WHERE product_id = $1 AND forecast_date >= $2
		ORDER BY forecast_date, model_used
	`

	var results []domain.ForecastResult
	if err := r.db.SelectContext(ctx, &results, query, productID, from); err != nil {
		return nil, fmt.Errorf("error listing forecasts for product %d: %w", productID, err)
	}
	return results, nil
}
