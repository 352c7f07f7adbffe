package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwise/backend-go/internal/alerts"
	"github.com/stockwise/backend-go/internal/config"
	"github.com/stockwise/backend-go/internal/domain"
	"github.com/stockwise/backend-go/internal/forecast"
	"github.com/stockwise/backend-go/internal/pretrained"
)

var testNow = time.Date(2026, 4, 6, 10, 0, 0, 0, time.UTC)

type fakeProducts struct {
	mu   sync.Mutex
	byID map[int64]*domain.Product
}

func (f *fakeProducts) Get(ctx context.Context, id int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := *f.byID[id]
	return &p, nil
}

func (f *fakeProducts) List(ctx context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Product
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

type fakeSales struct {
	byProduct map[int64][]domain.SalesObservation
}

func (f *fakeSales) History(ctx context.Context, productID int64, since time.Time) ([]domain.SalesObservation, error) {
	return f.byProduct[productID], nil
}

type fakeForecastStore struct {
	mu   sync.Mutex
	rows []domain.ForecastResult
}

func (f *fakeForecastStore) Upsert(ctx context.Context, result domain.ForecastResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, result)
	return nil
}

func (f *fakeForecastStore) ListByProduct(ctx context.Context, productID int64, from time.Time) ([]domain.ForecastResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ForecastResult
	for _, row := range f.rows {
		if row.ProductID == productID && !row.ForecastDate.Before(from) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeForecastStore) countByModel(model domain.ModelKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, row := range f.rows {
		if row.Model == model {
			n++
		}
	}
	return n
}

type fakeEvaluations struct {
	mu   sync.Mutex
	rows []domain.EvaluationMetrics
}

func (f *fakeEvaluations) Upsert(ctx context.Context, metrics domain.EvaluationMetrics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, metrics)
	return nil
}

type fakeAlertStore struct {
	mu      sync.Mutex
	byKey   map[domain.AlertType]domain.RiskAlert
	cleared []domain.AlertType
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{byKey: make(map[domain.AlertType]domain.RiskAlert)}
}

func (f *fakeAlertStore) Upsert(ctx context.Context, alert domain.RiskAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byKey[alert.Type] = alert
	return nil
}

func (f *fakeAlertStore) Clear(ctx context.Context, productID int64, alertType domain.AlertType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byKey, alertType)
	f.cleared = append(f.cleared, alertType)
	return nil
}

func (f *fakeAlertStore) ListByProduct(ctx context.Context, productID int64) ([]domain.RiskAlert, error) {
	return f.ListActive(ctx)
}

func (f *fakeAlertStore) ListActive(ctx context.Context) ([]domain.RiskAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RiskAlert
	for _, alert := range f.byKey {
		out = append(out, alert)
	}
	return out, nil
}

type memoryCache struct {
	mu    sync.Mutex
	items map[int64][]domain.ForecastResult
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[int64][]domain.ForecastResult)}
}

func (m *memoryCache) Get(ctx context.Context, productID int64, horizonDays int) ([]domain.ForecastResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.items[productID]
	return rows, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, productID int64, horizonDays int, rows []domain.ForecastResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[productID] = rows
	return nil
}

func (m *memoryCache) Invalidate(ctx context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, productID)
	return nil
}

func (m *memoryCache) InvalidateAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[int64][]domain.ForecastResult)
	return nil
}

func steadyHistory(productID int64, days int) []domain.SalesObservation {
	start := testNow.AddDate(0, 0, -days)
	out := make([]domain.SalesObservation, days)
	for i := 0; i < days; i++ {
		out[i] = domain.SalesObservation{
			ProductID:    productID,
			SaleDate:     start.AddDate(0, 0, i),
			QuantitySold: 4 + i%5,
		}
	}
	return out
}

type testEnv struct {
	svc       *ForecastService
	products  *fakeProducts
	forecasts *fakeForecastStore
	evals     *fakeEvaluations
	alerts    *fakeAlertStore
	cache     *memoryCache
}

func newTestEnv(t *testing.T, sales *fakeSales, products map[int64]*domain.Product, bundleDir string) *testEnv {
	t.Helper()

	env := &testEnv{
		products:  &fakeProducts{byID: products},
		forecasts: &fakeForecastStore{},
		evals:     &fakeEvaluations{},
		alerts:    newFakeAlertStore(),
		cache:     newMemoryCache(),
	}

	env.svc = NewForecastService(Dependencies{
		Products:    env.products,
		Sales:       sales,
		Forecasts:   env.forecasts,
		Stored:      env.forecasts,
		Evaluations: env.evals,
		AlertWriter: env.alerts,
		AlertReader: env.alerts,
		Cache:       env.cache,
		Pretrained:  pretrained.NewModelCache(bundleDir),
	}, config.ForecastConfig{
		LookbackDays:       90,
		TestSplit:          0.2,
		HorizonDays:        5,
		OrderCost:          50,
		HoldingCostPerUnit: 2,
		WorkerCount:        2,
	})
	env.svc.now = func() time.Time { return testNow }
	return env
}

func overstockedProduct(id int64) *domain.Product {
	return &domain.Product{
		ID:           id,
		SKU:          "WM-001",
		Name:         "Wireless Mouse",
		CurrentStock: 500,
		LeadTimeDays: 7,
		SafetyStock:  20,
	}
}

func TestForecastProductTrainedPath(t *testing.T) {
	sales := &fakeSales{byProduct: map[int64][]domain.SalesObservation{1: steadyHistory(1, 30)}}
	env := newTestEnv(t, sales, map[int64]*domain.Product{1: overstockedProduct(1)}, t.TempDir())

	result, err := env.svc.ForecastProduct(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, SourceTrained, result.Source)
	require.Len(t, result.Forecasts, 5)
	for _, row := range result.Forecasts {
		assert.Equal(t, domain.ModelEnsemble, row.Model)
		assert.GreaterOrEqual(t, row.PredictedDemand, 0.0)
	}
	assert.Equal(t, result.Forecasts[0].PredictedDemand, result.DailyDemand)

	// Per-model and ensemble rows are all persisted for the horizon.
	assert.Equal(t, 5, env.forecasts.countByModel(domain.ModelEnsemble))
	assert.Equal(t, 5, env.forecasts.countByModel(domain.ModelLinear))
	assert.Equal(t, 5, env.forecasts.countByModel(domain.ModelForest))

	// Both models were evaluated and stored.
	assert.Len(t, env.evals.rows, 2)

	assert.Greater(t, result.ReorderPoint, 0)
	assert.GreaterOrEqual(t, result.OrderQuantity, 5)
	assert.NotEmpty(t, result.Recommendation)
}

func TestForecastProductReconcilesAlerts(t *testing.T) {
	// 500 units against roughly 30 forecast units per week is deep overstock.
	sales := &fakeSales{byProduct: map[int64][]domain.SalesObservation{1: steadyHistory(1, 30)}}
	env := newTestEnv(t, sales, map[int64]*domain.Product{1: overstockedProduct(1)}, t.TempDir())

	result, err := env.svc.ForecastProduct(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, result.Alerts, 1)
	assert.Equal(t, domain.AlertOverstock, result.Alerts[0].Type)

	stored, err := env.alerts.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.AlertOverstock, stored[0].Type)
	// The axis that did not fire was explicitly cleared.
	assert.Contains(t, env.alerts.cleared, domain.AlertUnderstock)
}

func TestForecastProductCachedSecondCall(t *testing.T) {
	sales := &fakeSales{byProduct: map[int64][]domain.SalesObservation{1: steadyHistory(1, 30)}}
	env := newTestEnv(t, sales, map[int64]*domain.Product{1: overstockedProduct(1)}, t.TempDir())

	first, err := env.svc.ForecastProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, SourceTrained, first.Source)

	second, err := env.svc.ForecastProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, SourceCached, second.Source)
	assert.Equal(t, first.DailyDemand, second.DailyDemand)
}

func TestForecastProductInsufficientDataNoBundle(t *testing.T) {
	sales := &fakeSales{byProduct: map[int64][]domain.SalesObservation{1: steadyHistory(1, 3)}}
	env := newTestEnv(t, sales, map[int64]*domain.Product{1: overstockedProduct(1)}, filepath.Join(t.TempDir(), "missing"))

	_, err := env.svc.ForecastProduct(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestForecastProductPretrainedFallback(t *testing.T) {
	sales := &fakeSales{byProduct: map[int64][]domain.SalesObservation{1: steadyHistory(1, 3)}}
	env := newTestEnv(t, sales, map[int64]*domain.Product{1: overstockedProduct(1)}, writeTestBundle(t))

	result, err := env.svc.ForecastProduct(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, SourcePretrained, result.Source)
	require.Len(t, result.Forecasts, 5)
	for _, row := range result.Forecasts {
		assert.Equal(t, domain.ModelLinear, row.Model)
		assert.GreaterOrEqual(t, row.PredictedDemand, 0.0)
		require.NotNil(t, row.MAE)
		assert.InDelta(t, 2.5, *row.MAE, 1e-9)
		// Bundle R2 of 0.4 is clamped up to the confidence floor.
		assert.InDelta(t, 0.5, row.Confidence, 1e-9)
	}
}

func TestTrainProduct(t *testing.T) {
	sales := &fakeSales{byProduct: map[int64][]domain.SalesObservation{1: steadyHistory(1, 30)}}
	env := newTestEnv(t, sales, map[int64]*domain.Product{1: overstockedProduct(1)}, t.TempDir())

	result, err := env.svc.TrainProduct(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 30, result.Rows)
	assert.Len(t, env.evals.rows, 2)
}

func TestTrainProductInsufficientData(t *testing.T) {
	sales := &fakeSales{byProduct: map[int64][]domain.SalesObservation{1: steadyHistory(1, 2)}}
	env := newTestEnv(t, sales, map[int64]*domain.Product{1: overstockedProduct(1)}, t.TempDir())

	result, err := env.svc.TrainProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, env.evals.rows)
}

func TestForecastAll(t *testing.T) {
	products := map[int64]*domain.Product{
		1: overstockedProduct(1),
		2: {ID: 2, SKU: "UC-001", Name: "USB-C Cable", CurrentStock: 50, LeadTimeDays: 5, SafetyStock: 10},
	}
	sales := &fakeSales{byProduct: map[int64][]domain.SalesObservation{
		1: steadyHistory(1, 30),
		2: steadyHistory(2, 2), // too short, no bundle either
	}}
	env := newTestEnv(t, sales, products, filepath.Join(t.TempDir(), "missing"))

	result, err := env.svc.ForecastAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Forecast)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
}

func TestTrend(t *testing.T) {
	sales := &fakeSales{byProduct: map[int64][]domain.SalesObservation{1: steadyHistory(1, 20)}}
	env := newTestEnv(t, sales, map[int64]*domain.Product{1: overstockedProduct(1)}, t.TempDir())

	analysis, err := env.svc.Trend(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEqual(t, alerts.TrendInsufficientData, analysis.Trend)

	analysis, err = env.svc.Trend(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, alerts.TrendInsufficientData, analysis.Trend)
}

func TestActiveAlertsSummary(t *testing.T) {
	sales := &fakeSales{byProduct: map[int64][]domain.SalesObservation{1: steadyHistory(1, 30)}}
	env := newTestEnv(t, sales, map[int64]*domain.Product{1: overstockedProduct(1)}, t.TempDir())

	_, err := env.svc.ForecastProduct(context.Background(), 1)
	require.NoError(t, err)

	list, summary, err := env.svc.ActiveAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, summary, "Active Alerts: 1 total")
}

// writeTestBundle lays down a linear bundle matching the live feature
// columns, with a weak R2 to exercise the confidence clamp.
func writeTestBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	n := len(forecast.FeatureColumns)
	model := pretrained.ModelWeights{Intercept: 5, Coefficients: make([]float64, n)}
	scaler := pretrained.Scaler{Mean: make([]float64, n), Std: make([]float64, n)}
	for i := range scaler.Std {
		scaler.Std[i] = 1
	}
	meta := pretrained.Metadata{ModelName: "ridge_regression", MAE: 2.5, RMSE: 3.5, R2: 0.4, TrainingSamples: 900}

	for name, v := range map[string]interface{}{
		pretrained.ModelFile:    model,
		pretrained.ScalerFile:   scaler,
		pretrained.FeaturesFile: forecast.FeatureColumns,
		pretrained.MetadataFile: meta,
	} {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return dir
}
