// backend-go/internal/alerts/trend.go
package alerts

// TrendDirection labels the demand trajectory over the analysis window.
type TrendDirection string

const (
	TrendIncreasing       TrendDirection = "increasing"
	TrendDecreasing       TrendDirection = "decreasing"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// TrendAnalysis compares the first and second half of a sales window.
type TrendAnalysis struct {
	Trend           TrendDirection `json:"trend"`
	RatePct         float64        `json:"rate_pct"`
	FirstPeriodAvg  float64        `json:"first_period_avg"`
	SecondPeriodAvg float64        `json:"second_period_avg"`
	LatestAverage   float64        `json:"latest_average"`
}

// AnalyzeTrend classifies the demand trajectory from daily quantities
// ordered oldest first. A second-half average more than 10% above the first
// half reads as increasing, more than 10% below as decreasing.
func AnalyzeTrend(quantities []float64) TrendAnalysis {
	if len(quantities) < 7 {
		return TrendAnalysis{Trend: TrendInsufficientData}
	}

	mid := len(quantities) / 2
	firstAvg := average(quantities[:mid])
	secondAvg := average(quantities[mid:])

	analysis := TrendAnalysis{
		Trend:           TrendStable,
		FirstPeriodAvg:  firstAvg,
		SecondPeriodAvg: secondAvg,
		LatestAverage:   average(quantities[len(quantities)-7:]),
	}

	switch {
	case firstAvg > 0 && secondAvg > firstAvg*1.1:
		analysis.Trend = TrendIncreasing
		analysis.RatePct = (secondAvg - firstAvg) / firstAvg * 100
	case firstAvg > 0 && secondAvg < firstAvg*0.9:
		analysis.Trend = TrendDecreasing
		analysis.RatePct = (firstAvg - secondAvg) / firstAvg * 100
	}

	return analysis
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
