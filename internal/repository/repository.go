// backend-go/internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/stockwise/backend-go/internal/domain"
)

// ProductReader provides read access to the product catalog.
type ProductReader interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

// SalesReader provides a product's sales history ordered by date ascending.
type SalesReader interface {
	History(ctx context.Context, productID int64, since time.Time) ([]domain.SalesObservation, error)
}

// ForecastWriter persists forecast results. The unique key is
// (product, forecast_date, model); upserts overwrite prior values.
type ForecastWriter interface {
	Upsert(ctx context.Context, result domain.ForecastResult) error
}

// ForecastReader reads back stored forecasts for a product.
type ForecastReader interface {
	ListByProduct(ctx context.Context, productID int64, from time.Time) ([]domain.ForecastResult, error)
}

// EvaluationWriter persists model evaluation metrics. The unique key is
// (product, model); retraining supersedes the prior row.
type EvaluationWriter interface {
	Upsert(ctx context.Context, metrics domain.EvaluationMetrics) error
}

// AlertWriter persists risk alerts. The unique key is (product, alert_type);
// an upsert must preserve the existing acknowledged flag.
type AlertWriter interface {
	Upsert(ctx context.Context, alert domain.RiskAlert) error
	Clear(ctx context.Context, productID int64, alertType domain.AlertType) error
}

// AlertReader reads live alerts for display.
type AlertReader interface {
	ListByProduct(ctx context.Context, productID int64) ([]domain.RiskAlert, error)
	ListActive(ctx context.Context) ([]domain.RiskAlert, error)
}

// ProductWriter and SalesWriter are used by seeding drivers, not by the core.
type ProductWriter interface {
	Upsert(ctx context.Context, product *domain.Product) error
}

type SalesWriter interface {
	Upsert(ctx context.Context, obs domain.SalesObservation) error
}
