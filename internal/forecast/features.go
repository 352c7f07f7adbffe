// backend-go/internal/forecast/features.go
package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/stockwise/backend-go/internal/domain"
	"github.com/stockwise/backend-go/internal/repository"
)

// FeatureColumns is the fixed feature order shared by training, inference
// and the pretrained bundle. Changing the order breaks stored bundles.
var FeatureColumns = []string{
	"day_of_week",
	"day_of_month",
	"week_of_year",
	"ma_3days",
	"ma_7days",
	"prev_day_sales",
	"prev_week_sales",
}

const inferenceLookbackDays = 30

// FeatureBuilder turns a sparse sales log into dense daily feature rows.
// Gaps in the raw history are zero-filled first so that rolling and lag
// features are computed over a proper time series.
type FeatureBuilder struct {
	sales repository.SalesReader
}

func NewFeatureBuilder(sales repository.SalesReader) *FeatureBuilder {
	return &FeatureBuilder{sales: sales}
}

// Build produces the (X, y) training arrays for a product over the lookback
// window ending at now. It returns domain.ErrInsufficientData when fewer
// than domain.MinTrainingRows raw observations (or usable rows) exist.
func (b *FeatureBuilder) Build(ctx context.Context, productID int64, lookbackDays int, now time.Time) ([][]float64, []float64, error) {
	if lookbackDays <= 0 {
		lookbackDays = 90
	}
	since := dateOnly(now).AddDate(0, 0, -lookbackDays)

	observations, err := b.sales.History(ctx, productID, since)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch sales history: %w", err)
	}
	if len(observations) < domain.MinTrainingRows {
		return nil, nil, domain.ErrInsufficientData
	}

	quantities, dates := reindexDaily(observations)
	if len(quantities) < domain.MinTrainingRows {
		return nil, nil, domain.ErrInsufficientData
	}

	x := make([][]float64, len(quantities))
	y := make([]float64, len(quantities))
	for i := range quantities {
		x[i] = featureRow(dates[i], quantities, i)
		y[i] = quantities[i]
	}

	return x, y, nil
}

// BuildInferenceRow builds a single feature row for targetDate. Rolling and
// lag values come from the most recent 30 days of observations at prediction
// time, newest first, so the features stay date-relative.
func (b *FeatureBuilder) BuildInferenceRow(ctx context.Context, productID int64, targetDate, now time.Time) ([]float64, error) {
	since := dateOnly(now).AddDate(0, 0, -inferenceLookbackDays)

	observations, err := b.sales.History(ctx, productID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch recent sales: %w", err)
	}

	// Newest first, matching how the lag features are read below.
	recent := make([]float64, len(observations))
	for i, obs := range observations {
		recent[len(observations)-1-i] = float64(obs.QuantitySold)
	}

	var ma3, ma7, prevDay, prevWeek float64
	if len(recent) > 0 {
		if len(recent) >= 3 {
			ma3 = mean(recent[:3])
		}
		if len(recent) >= 7 {
			ma7 = mean(recent[:7])
			prevWeek = recent[6]
		}
		prevDay = recent[0]
	}

	return []float64{
		float64(isoDayOfWeek(targetDate)),
		float64(targetDate.Day()),
		float64(isoWeekOfYear(targetDate)),
		ma3,
		ma7,
		prevDay,
		prevWeek,
	}, nil
}

// reindexDaily converts an irregular observation list into a contiguous
// daily series spanning [min_date, max_date] with missing days at zero.
func reindexDaily(observations []domain.SalesObservation) ([]float64, []time.Time) {
	byDate := make(map[time.Time]float64, len(observations))
	minDate := dateOnly(observations[0].SaleDate)
	maxDate := minDate
	for _, obs := range observations {
		d := dateOnly(obs.SaleDate)
		byDate[d] = float64(obs.QuantitySold)
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}

	days := int(maxDate.Sub(minDate).Hours()/24) + 1
	quantities := make([]float64, 0, days)
	dates := make([]time.Time, 0, days)
	for d := minDate; !d.After(maxDate); d = d.AddDate(0, 0, 1) {
		quantities = append(quantities, byDate[d])
		dates = append(dates, d)
	}
	return quantities, dates
}

// featureRow computes the feature vector for index i of a daily series.
// Rolling means use a minimum period of 1, so early rows use partial
// windows; missing lags default to 0, never NaN.
func featureRow(date time.Time, quantities []float64, i int) []float64 {
	ma3 := trailingMean(quantities, i, 3)
	ma7 := trailingMean(quantities, i, 7)

	var prevDay, prevWeek float64
	if i >= 1 {
		prevDay = quantities[i-1]
	}
	if i >= 7 {
		prevWeek = quantities[i-7]
	}

	return []float64{
		float64(isoDayOfWeek(date)),
		float64(date.Day()),
		float64(isoWeekOfYear(date)),
		ma3,
		ma7,
		prevDay,
		prevWeek,
	}
}

// trailingMean averages values[max(0,i-window+1) .. i]; never looks ahead.
func trailingMean(values []float64, i, window int) float64 {
	start := i - window + 1
	if start < 0 {
		start = 0
	}
	return mean(values[start : i+1])
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// isoDayOfWeek maps Monday to 0 and Sunday to 6.
func isoDayOfWeek(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

func isoWeekOfYear(d time.Time) int {
	_, week := d.ISOWeek()
	return week
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
