// backend-go/internal/service/forecast_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/stockwise/backend-go/internal/alerts"
	"github.com/stockwise/backend-go/internal/cache"
	"github.com/stockwise/backend-go/internal/config"
	"github.com/stockwise/backend-go/internal/domain"
	"github.com/stockwise/backend-go/internal/forecast"
	"github.com/stockwise/backend-go/internal/optimize"
	"github.com/stockwise/backend-go/internal/pretrained"
	"github.com/stockwise/backend-go/internal/repository"
)

const (
	defaultHorizonDays = 14
	defaultWorkerCount = 4
	trendLookbackDays  = 30
)

// Forecast provenance as reported in API responses.
const (
	SourceTrained    = "trained"
	SourcePretrained = "pretrained"
	SourceCached     = "cached"
)

// ProductForecast is the full decision output for one product: the horizon
// forecast plus the inventory actions derived from it. DaysUntilStockout is
// nil when demand is zero and stock never depletes.
type ProductForecast struct {
	Product           *domain.Product         `json:"product"`
	Source            string                  `json:"source"`
	Forecasts         []domain.ForecastResult `json:"forecasts"`
	DailyDemand       float64                 `json:"daily_demand"`
	Forecast7d        float64                 `json:"forecasted_demand_7d"`
	ReorderPoint      int                     `json:"reorder_point"`
	OrderQuantity     int                     `json:"order_quantity"`
	DaysUntilStockout *float64                `json:"days_until_stockout,omitempty"`
	ShouldReorder     bool                    `json:"should_reorder"`
	Recommendation    string                  `json:"recommendation"`
	Alerts            []domain.RiskAlert      `json:"alerts"`
}

// BatchItem is one product's outcome in a batch run.
type BatchItem struct {
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Skipped   bool   `json:"skipped"`
	Error     string `json:"error,omitempty"`
}

// BatchResult summarizes a full-catalog forecast run.
type BatchResult struct {
	Total     int         `json:"total"`
	Forecast  int         `json:"forecasted"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	Items     []BatchItem `json:"items"`
	StartedAt time.Time   `json:"started_at"`
	Duration  string      `json:"duration"`
}

// Dependencies wires the service to its persistence and model-loading
// collaborators. Cache and Pretrained may be noop/unavailable; everything
// else is required.
type Dependencies struct {
	Products    repository.ProductReader
	Sales       repository.SalesReader
	Forecasts   repository.ForecastWriter
	Stored      repository.ForecastReader
	Evaluations repository.EvaluationWriter
	AlertWriter repository.AlertWriter
	AlertReader repository.AlertReader
	Cache       cache.ForecastCache
	Pretrained  *pretrained.ModelCache
}

// ForecastService orchestrates one product run: train, predict the horizon,
// derive the inventory decision, persist forecasts, evaluations and alerts.
type ForecastService struct {
	deps Dependencies
	cfg  config.ForecastConfig
	now  func() time.Time
}

func NewForecastService(deps Dependencies, cfg config.ForecastConfig) *ForecastService {
	if deps.Cache == nil {
		deps.Cache = cache.NewNoopForecastCache()
	}
	return &ForecastService{
		deps: deps,
		cfg:  cfg,
		now:  time.Now,
	}
}

// TrainProduct fits fresh models for one product and persists their held-out
// metrics. Insufficient history is reported in the result, not as an error.
func (s *ForecastService) TrainProduct(ctx context.Context, productID int64) (forecast.TrainResult, error) {
	fc := forecast.NewForecaster(productID, s.deps.Sales)

	result, err := fc.Train(ctx, s.cfg.LookbackDays, s.cfg.TestSplit)
	if err != nil {
		return forecast.TrainResult{}, err
	}
	if !result.Success {
		return result, nil
	}

	if err := s.persistEvaluations(ctx, result); err != nil {
		return result, err
	}
	return result, nil
}

// ForecastProduct runs the full decision pipeline for one product. Products
// without enough history fall back to the pretrained model; if that is also
// unavailable the call returns domain.ErrInsufficientData.
func (s *ForecastService) ForecastProduct(ctx context.Context, productID int64) (*ProductForecast, error) {
	product, err := s.deps.Products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	horizon := s.horizonDays()

	if rows, hit, err := s.deps.Cache.Get(ctx, productID, horizon); err != nil {
		log.Warn().Err(err).Int64("product_id", productID).Msg("forecast cache read failed")
	} else if hit && len(rows) > 0 {
		return s.buildDecision(ctx, product, rows, SourceCached)
	}

	rows, source, err := s.computeForecasts(ctx, product, horizon)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Cache.Set(ctx, productID, horizon, rows); err != nil {
		log.Warn().Err(err).Int64("product_id", productID).Msg("forecast cache write failed")
	}

	return s.buildDecision(ctx, product, rows, source)
}

// ForecastAll runs ForecastProduct over the whole catalog with a bounded
// worker pool. Per-product failures are collected, not fatal; only listing
// the catalog can fail the batch.
func (s *ForecastService) ForecastAll(ctx context.Context) (*BatchResult, error) {
	products, err := s.deps.Products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	started := s.now()
	items := make([]BatchItem, len(products))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount())
	for i, product := range products {
		g.Go(func() error {
			item := BatchItem{ProductID: product.ID, SKU: product.SKU}

			_, err := s.ForecastProduct(ctx, product.ID)
			switch {
			case errors.Is(err, domain.ErrInsufficientData):
				item.Skipped = true
				log.Warn().Int64("product_id", product.ID).Str("sku", product.SKU).Msg("skipping product, not enough history")
			case err != nil:
				item.Error = err.Error()
				log.Error().Err(err).Int64("product_id", product.ID).Str("sku", product.SKU).Msg("forecast failed")
			}

			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BatchResult{
		Total:     len(products),
		Items:     items,
		StartedAt: started,
		Duration:  s.now().Sub(started).Round(time.Millisecond).String(),
	}
	for _, item := range items {
		switch {
		case item.Skipped:
			result.Skipped++
		case item.Error != "":
			result.Failed++
		default:
			result.Forecast++
		}
	}

	log.Info().
		Int("total", result.Total).
		Int("forecasted", result.Forecast).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Str("duration", result.Duration).
		Msg("batch forecast run complete")
	return result, nil
}

// Trend classifies the product's demand trajectory over the last 30 days.
func (s *ForecastService) Trend(ctx context.Context, productID int64) (alerts.TrendAnalysis, error) {
	since := s.now().AddDate(0, 0, -trendLookbackDays)
	observations, err := s.deps.Sales.History(ctx, productID, since)
	if err != nil {
		return alerts.TrendAnalysis{}, fmt.Errorf("fetch sales history: %w", err)
	}

	quantities := make([]float64, len(observations))
	for i, obs := range observations {
		quantities[i] = float64(obs.QuantitySold)
	}
	return alerts.AnalyzeTrend(quantities), nil
}

// ProductAlerts returns the live alerts stored for one product.
func (s *ForecastService) ProductAlerts(ctx context.Context, productID int64) ([]domain.RiskAlert, error) {
	return s.deps.AlertReader.ListByProduct(ctx, productID)
}

// ActiveAlerts returns all unacknowledged alerts plus a rendered summary.
func (s *ForecastService) ActiveAlerts(ctx context.Context) ([]domain.RiskAlert, string, error) {
	list, err := s.deps.AlertReader.ListActive(ctx)
	if err != nil {
		return nil, "", err
	}
	return list, alerts.Summarize(list), nil
}

// StoredForecasts reads back the persisted forecasts from today onward.
func (s *ForecastService) StoredForecasts(ctx context.Context, productID int64) ([]domain.ForecastResult, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.deps.Stored.ListByProduct(ctx, productID, today)
}

// PretrainedInfo returns the loaded bundle metadata, nil when no bundle is
// available.
func (s *ForecastService) PretrainedInfo() *pretrained.Metadata {
	return s.deps.Pretrained.Metadata()
}

// computeForecasts trains per-product models and predicts the horizon,
// falling back to the pretrained bundle when history is too short. It
// returns the ensemble rows that drive the inventory decision.
func (s *ForecastService) computeForecasts(ctx context.Context, product *domain.Product, horizon int) ([]domain.ForecastResult, string, error) {
	fc := forecast.NewForecaster(product.ID, s.deps.Sales)

	trained, err := fc.Train(ctx, s.cfg.LookbackDays, s.cfg.TestSplit)
	if err != nil {
		return nil, "", err
	}
	if !trained.Success {
		rows, err := s.pretrainedForecasts(ctx, product, horizon)
		if err != nil {
			return nil, "", err
		}
		return rows, SourcePretrained, nil
	}

	if err := s.persistEvaluations(ctx, trained); err != nil {
		return nil, "", err
	}

	maeByModel, rmseByModel := metricsByModel(trained)
	now := s.now()
	ensemble := make([]domain.ForecastResult, 0, horizon)

	for day := 1; day <= horizon; day++ {
		targetDate := dateOnly(now).AddDate(0, 0, day)

		set, err := fc.Predict(ctx, targetDate)
		if err != nil {
			return nil, "", fmt.Errorf("predict %s: %w", targetDate.Format("2006-01-02"), err)
		}

		for kind, value := range set.Available() {
			row := domain.ForecastResult{
				ProductID:       product.ID,
				ForecastDate:    targetDate,
				Model:           kind,
				PredictedDemand: value,
				Confidence:      set.Confidence,
				MAE:             maeByModel[kind],
				RMSE:            rmseByModel[kind],
			}
			if err := s.deps.Forecasts.Upsert(ctx, row); err != nil {
				return nil, "", err
			}
		}

		row := domain.ForecastResult{
			ProductID:       product.ID,
			ForecastDate:    targetDate,
			Model:           domain.ModelEnsemble,
			PredictedDemand: set.Ensemble,
			Confidence:      set.Confidence,
		}
		if err := s.deps.Forecasts.Upsert(ctx, row); err != nil {
			return nil, "", err
		}
		ensemble = append(ensemble, row)
	}

	return ensemble, SourceTrained, nil
}

// pretrainedForecasts predicts the horizon with the shared bundle. Confidence
// comes from the bundle's held-out R2, clamped to the usual [0.5, 0.95] band.
func (s *ForecastService) pretrainedForecasts(ctx context.Context, product *domain.Product, horizon int) ([]domain.ForecastResult, error) {
	if !s.deps.Pretrained.Available() {
		return nil, domain.ErrInsufficientData
	}

	meta := s.deps.Pretrained.Metadata()
	confidence := clamp(meta.R2, 0.5, 0.95)
	mae, rmse := meta.MAE, meta.RMSE

	builder := forecast.NewFeatureBuilder(s.deps.Sales)
	now := s.now()
	rows := make([]domain.ForecastResult, 0, horizon)

	for day := 1; day <= horizon; day++ {
		targetDate := dateOnly(now).AddDate(0, 0, day)

		features, err := builder.BuildInferenceRow(ctx, product.ID, targetDate, now)
		if err != nil {
			return nil, err
		}
		value, ok := s.deps.Pretrained.Predict(features)
		if !ok {
			return nil, fmt.Errorf("pretrained prediction failed for product %d", product.ID)
		}

		row := domain.ForecastResult{
			ProductID:       product.ID,
			ForecastDate:    targetDate,
			Model:           domain.ModelLinear,
			PredictedDemand: value,
			Confidence:      confidence,
			MAE:             &mae,
			RMSE:            &rmse,
		}
		if err := s.deps.Forecasts.Upsert(ctx, row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	log.Info().
		Int64("product_id", product.ID).
		Str("model", meta.ModelName).
		Msg("forecasted with pretrained model")
	return rows, nil
}

// buildDecision derives the inventory actions from the horizon forecast and
// reconciles the stored alerts with the freshly detected ones.
func (s *ForecastService) buildDecision(ctx context.Context, product *domain.Product, rows []domain.ForecastResult, source string) (*ProductForecast, error) {
	dailyDemand := rows[0].PredictedDemand

	forecast7d := 0.0
	for i, row := range rows {
		if i >= 7 {
			break
		}
		forecast7d += row.PredictedDemand
	}

	reorderPoint := optimize.ReorderPoint(dailyDemand, product.LeadTimeDays, product.SafetyStock)
	orderQty := optimize.EconomicOrderQuantity(dailyDemand*365, s.orderCost(), s.holdingCost())

	var stockoutDays *float64
	if days := optimize.DaysUntilStockout(product.CurrentStock, dailyDemand); !math.IsInf(days, 1) {
		stockoutDays = &days
	}

	now := s.now()
	detected := alerts.Detect(product, dailyDemand, forecast7d, now)
	if err := s.reconcileAlerts(ctx, product.ID, detected); err != nil {
		return nil, err
	}

	return &ProductForecast{
		Product:           product,
		Source:            source,
		Forecasts:         rows,
		DailyDemand:       dailyDemand,
		Forecast7d:        forecast7d,
		ReorderPoint:      reorderPoint,
		OrderQuantity:     orderQty,
		DaysUntilStockout: stockoutDays,
		ShouldReorder:     optimize.ShouldReorder(product.CurrentStock, reorderPoint),
		Recommendation:    alerts.ReorderRecommendation(product, dailyDemand, orderQty),
		Alerts:            detected,
	}, nil
}

// reconcileAlerts upserts the detected alerts and clears the axes that no
// longer fire, so stale alerts never linger after conditions improve.
func (s *ForecastService) reconcileAlerts(ctx context.Context, productID int64, detected []domain.RiskAlert) error {
	present := make(map[domain.AlertType]bool, len(detected))
	for _, alert := range detected {
		if err := s.deps.AlertWriter.Upsert(ctx, alert); err != nil {
			return err
		}
		present[alert.Type] = true
	}

	for _, alertType := range []domain.AlertType{domain.AlertUnderstock, domain.AlertOverstock} {
		if present[alertType] {
			continue
		}
		if err := s.deps.AlertWriter.Clear(ctx, productID, alertType); err != nil {
			return err
		}
	}
	return nil
}

func (s *ForecastService) persistEvaluations(ctx context.Context, result forecast.TrainResult) error {
	for _, outcome := range []forecast.ModelOutcome{result.Linear, result.Forest} {
		if outcome.Metrics == nil {
			continue
		}
		if err := s.deps.Evaluations.Upsert(ctx, *outcome.Metrics); err != nil {
			return err
		}
	}
	return nil
}

func metricsByModel(result forecast.TrainResult) (mae, rmse map[domain.ModelKind]*float64) {
	mae = make(map[domain.ModelKind]*float64, 2)
	rmse = make(map[domain.ModelKind]*float64, 2)
	for _, outcome := range []forecast.ModelOutcome{result.Linear, result.Forest} {
		if outcome.Metrics == nil {
			continue
		}
		m, r := outcome.Metrics.MAE, outcome.Metrics.RMSE
		mae[outcome.Metrics.Model] = &m
		rmse[outcome.Metrics.Model] = &r
	}
	return mae, rmse
}

func (s *ForecastService) horizonDays() int {
	if s.cfg.HorizonDays <= 0 {
		return defaultHorizonDays
	}
	return s.cfg.HorizonDays
}

func (s *ForecastService) workerCount() int {
	if s.cfg.WorkerCount <= 0 {
		return defaultWorkerCount
	}
	return s.cfg.WorkerCount
}

func (s *ForecastService) orderCost() float64 {
	if s.cfg.OrderCost <= 0 {
		return optimize.DefaultOrderCost
	}
	return s.cfg.OrderCost
}

func (s *ForecastService) holdingCost() float64 {
	if s.cfg.HoldingCostPerUnit <= 0 {
		return optimize.DefaultHoldingCostPerUnit
	}
	return s.cfg.HoldingCostPerUnit
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
