package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwise/backend-go/internal/domain"
)

func testProduct(stock int) *domain.Product {
	return &domain.Product{
		ID:           1,
		SKU:          "WM-001",
		Name:         "Wireless Mouse",
		CurrentStock: stock,
		LeadTimeDays: 7,
		SafetyStock:  20,
	}
}

func TestDetectUnderstockHigh(t *testing.T) {
	// ratio 100/250 = 0.4, at or below 0.5
	alerts := Detect(testProduct(100), 250.0/7, 250, time.Now())

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertUnderstock, alerts[0].Type)
	assert.Equal(t, domain.RiskHigh, alerts[0].Level)
	assert.Contains(t, alerts[0].Explanation, "CRITICAL")
	assert.Equal(t, 100, alerts[0].CurrentStock)
	assert.InDelta(t, 250, alerts[0].ForecastedDemand7d, 1e-9)
}

func TestDetectUnderstockMedium(t *testing.T) {
	// ratio 180/250 = 0.72, between 0.5 and 0.75
	alerts := Detect(testProduct(180), 250.0/7, 250, time.Now())

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertUnderstock, alerts[0].Type)
	assert.Equal(t, domain.RiskMedium, alerts[0].Level)
	assert.Contains(t, alerts[0].Explanation, "Moderate understock risk")
}

func TestDetectUnderstockLow(t *testing.T) {
	// ratio 200/250 = 0.8, above the medium cutoff but stock still short
	alerts := Detect(testProduct(200), 250.0/7, 250, time.Now())

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertUnderstock, alerts[0].Type)
	assert.Equal(t, domain.RiskLow, alerts[0].Level)
}

func TestDetectOverstockMedium(t *testing.T) {
	// 400/80 = 5x, at least 4x but under 6x
	alerts := Detect(testProduct(400), 80.0/7, 80, time.Now())

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertOverstock, alerts[0].Type)
	assert.Equal(t, domain.RiskMedium, alerts[0].Level)
	assert.Contains(t, alerts[0].Explanation, "Excess inventory")
}

func TestDetectOverstockHigh(t *testing.T) {
	// 500/80 = 6.25x
	alerts := Detect(testProduct(500), 80.0/7, 80, time.Now())

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertOverstock, alerts[0].Type)
	assert.Equal(t, domain.RiskHigh, alerts[0].Level)
	assert.Contains(t, alerts[0].Explanation, "CRITICAL")
}

func TestDetectNoAlert(t *testing.T) {
	// 150 vs 140: stock covers the week and sits well under 4x
	alerts := Detect(testProduct(150), 140.0/7, 140, time.Now())
	assert.Empty(t, alerts)
}

func TestDetectNoLowOverstockTier(t *testing.T) {
	// 3x the weekly forecast is not an overstock condition at all.
	alerts := Detect(testProduct(240), 80.0/7, 80, time.Now())
	assert.Empty(t, alerts)
}

func TestDetectExactlyFourTimesDoesNotFire(t *testing.T) {
	// The overstock comparison is strict: stock must exceed 4x.
	alerts := Detect(testProduct(320), 80.0/7, 80, time.Now())
	assert.Empty(t, alerts)
}

func TestDetectZeroForecastUnderstockRatio(t *testing.T) {
	// Zero forecast with zero stock: ratio treated as 0, high risk, no
	// division by zero.
	alerts := Detect(testProduct(0), 0, 0, time.Now())
	assert.Empty(t, alerts) // 0 < 0 is false, understock cannot fire

	// Zero forecast with positive stock fires overstock (stock > 0).
	alerts = Detect(testProduct(10), 0, 0, time.Now())
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertOverstock, alerts[0].Type)
}

func TestDetectBothAxesIndependent(t *testing.T) {
	// A degenerate forecast cannot fire both on the same input, but each run
	// always evaluates both axes; verify the generated timestamps match.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	alerts := Detect(testProduct(100), 250.0/7, 250, now)
	require.Len(t, alerts, 1)
	assert.Equal(t, now, alerts[0].GeneratedAt)
}

func TestReorderRecommendation(t *testing.T) {
	product := testProduct(100)
	text := ReorderRecommendation(product, 10, 427)

	assert.Contains(t, text, "Wireless Mouse")
	assert.Contains(t, text, "90 units")  // 10*7 + 20
	assert.Contains(t, text, "427 units") // the EOQ
}
