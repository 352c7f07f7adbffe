// backend-go/internal/repository/postgres/alert_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stockwise/backend-go/internal/domain"
	"github.com/stockwise/backend-go/internal/repository"
)

type alertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) repository.AlertWriter {
	return &alertRepository{db: db}
}

func NewAlertReader(db *sqlx.DB) repository.AlertReader {
	return &alertRepository{db: db}
}

// Upsert writes an alert in place. The acknowledged flag is deliberately
// not in the SET list: it belongs to the UI and survives recomputation.
func (r *alertRepository) Upsert(ctx context.Context, alert domain.RiskAlert) error {
	query := `
		INSERT INTO inventory_alerts (product_id, alert_type, risk_level, explanation,
		                              forecasted_demand_7d, current_stock, acknowledged, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
		ON CONFLICT (product_id, alert_type) DO UPDATE SET
			risk_level           = EXCLUDED.risk_level,
			explanation          = EXCLUDED.explanation,
			forecasted_demand_7d = EXCLUDED.forecasted_demand_7d,
			current_stock        = EXCLUDED.current_stock,
			generated_at         = EXCLUDED.generated_at
	`

	if _, err := r.db.ExecContext(ctx, query,
		alert.ProductID, alert.Type, alert.Level, alert.Explanation,
		alert.ForecastedDemand7d, alert.CurrentStock, alert.GeneratedAt); err != nil {
		return fmt.Errorf("error upserting %s alert for product %d: %w", alert.Type, alert.ProductID, err)
	}
	return nil
}

// Clear removes a live alert when its risk condition no longer holds.
func (r *alertRepository) Clear(ctx context.Context, productID int64, alertType domain.AlertType) error {
	query := `DELETE FROM inventory_alerts WHERE product_id = $1 AND alert_type = $2`
	if _, err := r.db.ExecContext(ctx, query, productID, alertType); err != nil {
		return fmt.Errorf("error clearing %s alert for product %d: %w", alertType, productID, err)
	}
	return nil
}

func (r *alertRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.RiskAlert, error) {
	query := `
		SELECT product_id, alert_type, risk_level, explanation,
		       forecasted_demand_7d, current_stock, acknowledged, generated_at
		FROM inventory_alerts
		WHERE product_id = $1
		ORDER BY alert_type
	`

	var alerts []domain.RiskAlert
	if err := r.db.SelectContext(ctx, &alerts, query, productID); err != nil {
		return nil, fmt.Errorf("error listing alerts for product %d: %w", productID, err)
	}
	return alerts, nil
}

func (r *alertRepository) ListActive(ctx context.Context) ([]domain.RiskAlert, error) {
	query := `
		SELECT product_id, alert_type, risk_level, explanation,
		       forecasted_demand_7d, current_stock, acknowledged, generated_at
		FROM inventory_alerts
		WHERE NOT acknowledged
		ORDER BY risk_level DESC, generated_at DESC
	`

	var alerts []domain.RiskAlert
	if err := r.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, fmt.Errorf("error listing active alerts: %w", err)
	}
	return alerts, nil
}
