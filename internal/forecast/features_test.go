package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwise/backend-go/internal/domain"
)

type stubSales struct {
	observations []domain.SalesObservation
	err          error
}

func (s stubSales) History(ctx context.Context, productID int64, since time.Time) ([]domain.SalesObservation, error) {
	return s.observations, s.err
}

// dailyObservations builds one observation per day starting at start.
func dailyObservations(productID int64, start time.Time, quantities ...int) []domain.SalesObservation {
	out := make([]domain.SalesObservation, len(quantities))
	for i, q := range quantities {
		out[i] = domain.SalesObservation{
			ProductID:    productID,
			SaleDate:     start.AddDate(0, 0, i),
			QuantitySold: q,
		}
	}
	return out
}

var testStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

func TestBuildInsufficientData(t *testing.T) {
	builder := NewFeatureBuilder(stubSales{
		observations: dailyObservations(1, testStart, 3, 4, 5),
	})

	_, _, err := builder.Build(context.Background(), 1, 90, testStart.AddDate(0, 0, 30))
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestBuildZeroFillsGaps(t *testing.T) {
	// Observations on days 0-5 and day 9; days 6-8 must appear as zeros.
	observations := dailyObservations(1, testStart, 5, 6, 7, 8, 9, 10)
	observations = append(observations, domain.SalesObservation{
		ProductID: 1, SaleDate: testStart.AddDate(0, 0, 9), QuantitySold: 4,
	})

	builder := NewFeatureBuilder(stubSales{observations: observations})
	x, y, err := builder.Build(context.Background(), 1, 90, testStart.AddDate(0, 0, 30))
	require.NoError(t, err)

	require.Len(t, y, 10)
	require.Len(t, x, 10)
	assert.Equal(t, []float64{5, 6, 7, 8, 9, 10, 0, 0, 0, 4}, y)
}

func TestBuildFeatureValues(t *testing.T) {
	quantities := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	builder := NewFeatureBuilder(stubSales{
		observations: dailyObservations(1, testStart, quantities...),
	})

	x, y, err := builder.Build(context.Background(), 1, 90, testStart.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, x, 10)

	// Row 7 is Monday+7, also a Monday.
	row := x[7]
	require.Len(t, row, len(FeatureColumns))
	assert.Equal(t, 0.0, row[0])  // day_of_week, Monday
	assert.Equal(t, 9.0, row[1])  // day_of_month, March 9th
	assert.Equal(t, 11.0, row[2]) // ISO week of 2026-03-09
	assert.InDelta(t, 7, row[3], 1e-9)  // ma_3days: mean(6,7,8)
	assert.InDelta(t, 5, row[4], 1e-9)  // ma_7days: mean(2..8)
	assert.Equal(t, 7.0, row[5])        // prev_day_sales
	assert.Equal(t, 1.0, row[6])        // prev_week_sales
	assert.Equal(t, 8.0, y[7])

	// Early rows use partial windows and zero lags instead of NaN.
	first := x[0]
	assert.InDelta(t, 1, first[3], 1e-9)
	assert.InDelta(t, 1, first[4], 1e-9)
	assert.Equal(t, 0.0, first[5])
	assert.Equal(t, 0.0, first[6])
}

func TestBuildInferenceRow(t *testing.T) {
	quantities := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	builder := NewFeatureBuilder(stubSales{
		observations: dailyObservations(1, testStart, quantities...),
	})

	now := testStart.AddDate(0, 0, 10)
	target := testStart.AddDate(0, 0, 11) // a Friday

	row, err := builder.BuildInferenceRow(context.Background(), 1, target, now)
	require.NoError(t, err)
	require.Len(t, row, len(FeatureColumns))

	assert.Equal(t, 4.0, row[0]) // 2026-03-13 is a Friday
	assert.Equal(t, 13.0, row[1])
	assert.InDelta(t, 9, row[3], 1e-9)  // mean of newest three: 10,9,8
	assert.InDelta(t, 7, row[4], 1e-9)  // mean of newest seven: 10..4
	assert.Equal(t, 10.0, row[5])       // most recent day
	assert.Equal(t, 4.0, row[6])        // seven days back
}

func TestBuildInferenceRowSparseHistory(t *testing.T) {
	builder := NewFeatureBuilder(stubSales{
		observations: dailyObservations(1, testStart, 6, 6),
	})

	row, err := builder.BuildInferenceRow(context.Background(), 1, testStart.AddDate(0, 0, 3), testStart.AddDate(0, 0, 2))
	require.NoError(t, err)

	// Under three observations the rolling means stay zero; only the
	// previous-day lag is known.
	assert.Equal(t, 0.0, row[3])
	assert.Equal(t, 0.0, row[4])
	assert.Equal(t, 6.0, row[5])
	assert.Equal(t, 0.0, row[6])
}

func TestIsoDayOfWeek(t *testing.T) {
	assert.Equal(t, 0, isoDayOfWeek(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))  // Monday
	assert.Equal(t, 6, isoDayOfWeek(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)))  // Sunday
}
