// backend-go/internal/domain/models.go
package domain

import "time"

// ModelKind identifies which regression model produced a value.
type ModelKind string

const (
	ModelLinear   ModelKind = "linear_regression"
	ModelForest   ModelKind = "random_forest"
	ModelEnsemble ModelKind = "ensemble"
)

// AlertType distinguishes the two inventory risk axes.
type AlertType string

const (
	AlertUnderstock AlertType = "understock"
	AlertOverstock  AlertType = "overstock"
)

// RiskLevel categorizes the severity of an alert.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Product represents an inventory item. The core reads products but never
// mutates them; stock and reorder settings are owned by the caller.
type Product struct {
	ID           int64     `json:"id" db:"id"`
	SKU          string    `json:"sku" db:"sku"`
	Name         string    `json:"name" db:"name"`
	Category     string    `json:"category" db:"category"`
	Price        float64   `json:"price" db:"price"`
	CurrentStock int       `json:"current_stock" db:"current_stock"`
	LeadTimeDays int       `json:"lead_time_days" db:"lead_time_days"`
	SafetyStock  int       `json:"safety_stock" db:"safety_stock"`
	ReorderPoint int       `json:"reorder_point" db:"reorder_point"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SalesObservation is one day of sales for a product. At most one
// observation exists per (product, date).
type SalesObservation struct {
	ProductID    int64     `json:"product_id" db:"product_id"`
	SaleDate     time.Time `json:"sale_date" db:"sale_date"`
	QuantitySold int       `json:"quantity_sold" db:"quantity_sold"`
}

// ForecastResult is a single stored prediction. One row lives per
// (product, date, model); re-issuing a forecast overwrites the prior value.
type ForecastResult struct {
	ProductID       int64     `json:"product_id" db:"product_id"`
	ForecastDate    time.Time `json:"forecast_date" db:"forecast_date"`
	Model           ModelKind `json:"model_used" db:"model_used"`
	PredictedDemand float64   `json:"predicted_demand" db:"predicted_demand"`
	Confidence      float64   `json:"confidence_score" db:"confidence_score"`
	MAE             *float64  `json:"mae,omitempty" db:"mae"`
	RMSE            *float64  `json:"rmse,omitempty" db:"rmse"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// EvaluationMetrics captures a model's held-out performance for one product.
// Superseded, not appended, on retraining.
type EvaluationMetrics struct {
	ProductID       int64     `json:"product_id" db:"product_id"`
	Model           ModelKind `json:"model_name" db:"model_name"`
	MAE             float64   `json:"mae" db:"mae"`
	RMSE            float64   `json:"rmse" db:"rmse"`
	R2              float64   `json:"r2_score" db:"r2_score"`
	TrainTestSplit  float64   `json:"train_test_split" db:"train_test_split"`
	TrainingSamples int       `json:"training_samples" db:"training_samples"`
	TestSamples     int       `json:"test_samples" db:"test_samples"`
	EvaluatedAt     time.Time `json:"evaluation_date" db:"evaluation_date"`
}

// RiskAlert is an explainable inventory risk indicator. At most one live
// alert exists per (product, alert_type); recomputation upserts in place.
// Acknowledged is flipped by the UI only, never by the core.
type RiskAlert struct {
	ProductID          int64     `json:"product_id" db:"product_id"`
	Type               AlertType `json:"alert_type" db:"alert_type"`
	Level              RiskLevel `json:"risk_level" db:"risk_level"`
	Explanation        string    `json:"explanation" db:"explanation"`
	ForecastedDemand7d float64   `json:"forecasted_demand_7d" db:"forecasted_demand_7d"`
	CurrentStock       int       `json:"current_stock" db:"current_stock"`
	Acknowledged       bool      `json:"acknowledged" db:"acknowledged"`
	GeneratedAt        time.Time `json:"generated_at" db:"generated_at"`
}

// PredictionSet is the output of one Predict call: per-model predictions,
// their mean, and a heuristic confidence score. A nil per-model field means
// that model was unavailable (not trained or failed to fit).
type PredictionSet struct {
	Linear     *float64 `json:"linear_regression,omitempty"`
	Forest     *float64 `json:"random_forest,omitempty"`
	Ensemble   float64  `json:"ensemble"`
	Confidence float64  `json:"confidence"`
}

// Available returns the per-model predictions that are present, keyed by kind.
func (p PredictionSet) Available() map[ModelKind]float64 {
	out := make(map[ModelKind]float64, 2)
	if p.Linear != nil {
		out[ModelLinear] = *p.Linear
	}
	if p.Forest != nil {
		out[ModelForest] = *p.Forest
	}
	return out
}
