// backend-go/internal/alerts/detector.go

// Package alerts classifies inventory risk from stock-vs-forecast ratios and
// renders the explanations shown on the dashboard. Detection is stateless:
// every run recomputes both risk axes from current inputs.
package alerts

import (
	"fmt"
	"time"

	"github.com/stockwise/backend-go/internal/domain"
)

// Risk thresholds over the stock / 7-day-forecast ratio. Understock tiers
// share a ratio scale; overstock tiers are multiples of the weekly forecast.
// Overstock deliberately has no low tier: below 4x no alert fires at all.
const (
	understockHighRatio   = 0.5
	understockMediumRatio = 0.75
	overstockMediumFactor = 4.0
	overstockHighFactor   = 6.0
)

// Detect evaluates both risk axes independently for a product. It returns
// zero, one or two alerts; a pathological stock/forecast combination may
// legitimately fire both.
func Detect(product *domain.Product, dailyDemand, forecast7d float64, now time.Time) []domain.RiskAlert {
	var out []domain.RiskAlert
	stock := product.CurrentStock

	if float64(stock) < forecast7d {
		ratio := 0.0
		if forecast7d > 0 {
			ratio = float64(stock) / forecast7d
		}

		level := domain.RiskLow
		switch {
		case ratio <= understockHighRatio:
			level = domain.RiskHigh
		case ratio <= understockMediumRatio:
			level = domain.RiskMedium
		}

		out = append(out, domain.RiskAlert{
			ProductID:          product.ID,
			Type:               domain.AlertUnderstock,
			Level:              level,
			Explanation:        understockExplanation(product, dailyDemand, forecast7d, level),
			ForecastedDemand7d: forecast7d,
			CurrentStock:       stock,
			GeneratedAt:        now,
		})
	}

	if float64(stock) > forecast7d*overstockMediumFactor {
		level := domain.RiskMedium
		if float64(stock) >= forecast7d*overstockHighFactor {
			level = domain.RiskHigh
		}

		out = append(out, domain.RiskAlert{
			ProductID:          product.ID,
			Type:               domain.AlertOverstock,
			Level:              level,
			Explanation:        overstockExplanation(product, dailyDemand, forecast7d, level),
			ForecastedDemand7d: forecast7d,
			CurrentStock:       stock,
			GeneratedAt:        now,
		})
	}

	return out
}

// understockExplanation renders the tiered natural-language message. The
// +0.1 in the stockout estimate guards against zero demand without
// meaningfully biasing the figure.
func understockExplanation(product *domain.Product, dailyDemand, forecast7d float64, level domain.RiskLevel) string {
	stock := product.CurrentStock
	daysUntilStockout := float64(stock) / (dailyDemand + 0.1)

	switch level {
	case domain.RiskHigh:
		return fmt.Sprintf(
			"CRITICAL inventory shortage detected for %s. Current stock (%d units) will be depleted in approximately %d days at current demand levels (forecast: %.1f units/week). Lead time is %d days. URGENT REORDER REQUIRED to prevent stockout.",
			product.Name, stock, int(daysUntilStockout), forecast7d, product.LeadTimeDays,
		)
	case domain.RiskMedium:
		return fmt.Sprintf(
			"Moderate understock risk for %s. Current inventory (%d units) covers approximately %.0f units of weekly demand (forecast). With a %d-day lead time, consider placing an order soon to maintain service levels.",
			product.Name, stock, forecast7d, product.LeadTimeDays,
		)
	default:
		return fmt.Sprintf(
			"Low inventory detected for %s. Current stock (%d units) is approaching recommended levels. Monitor closely and prepare to reorder if sales trend continues.",
			product.Name, stock,
		)
	}
}

func overstockExplanation(product *domain.Product, dailyDemand, forecast7d float64, level domain.RiskLevel) string {
	stock := product.CurrentStock

	coverageDays := 999.0
	if dailyDemand > 0 {
		coverageDays = float64(stock) / (dailyDemand + 0.1)
	}
	excessRatio := 1.0
	if forecast7d > 0 {
		excessRatio = float64(stock) / (forecast7d + 0.1)
	}

	switch level {
	case domain.RiskHigh:
		return fmt.Sprintf(
			"CRITICAL excess inventory for %s. Current stock (%d units) exceeds 6 months of forecasted demand. Holding cost is building up. IMMEDIATE ACTION NEEDED: Consider promotional discounts, bundling offers, or adjusting future orders to clear excess inventory.",
			product.Name, stock,
		)
	default:
		return fmt.Sprintf(
			"Excess inventory detected for %s. Current stock (%d units) is %.1fx the weekly forecast. Stock covers %d days of expected sales. Consider reducing incoming orders to optimize warehouse space and reduce holding costs.",
			product.Name, stock, excessRatio, int(coverageDays),
		)
	}
}

// ReorderRecommendation renders the actionable reorder sentence combining
// the reorder point with the economic order quantity.
func ReorderRecommendation(product *domain.Product, dailyDemand float64, eoq int) string {
	reorderPoint := int(dailyDemand*float64(product.LeadTimeDays)) + product.SafetyStock
	return fmt.Sprintf(
		"For %s: Reorder when stock reaches %d units. Recommended order quantity: %d units. This balances ordering frequency against holding costs.",
		product.Name, reorderPoint, eoq,
	)
}
