// backend-go/internal/optimize/optimizer.go

// Package optimize implements the closed-form inventory formulas applied to
// demand forecasts: reorder point, economic order quantity and the stockout
// horizon. All functions are pure.
package optimize

import "math"

const (
	// DefaultOrderCost is the fixed cost per order in currency units.
	DefaultOrderCost = 50.0
	// DefaultHoldingCostPerUnit is the annual holding cost per unit.
	DefaultHoldingCostPerUnit = 2.0

	minReorderPoint = 1
	minOrderQty     = 5
	fallbackEOQ     = 10
)

// ReorderPoint returns the stock level at which a new order should be
// placed: daily demand over the lead time plus the safety buffer, never
// below one unit.
func ReorderPoint(dailyDemand float64, leadTimeDays, safetyStock int) int {
	point := int(dailyDemand*float64(leadTimeDays)) + safetyStock
	if point < minReorderPoint {
		return minReorderPoint
	}
	return point
}

// EconomicOrderQuantity returns the order size minimizing ordering plus
// holding cost: sqrt(2*D*S/H). Non-physical inputs (no demand, free or
// negative holding cost) yield a fixed default of 10 rather than an error.
func EconomicOrderQuantity(annualDemand, orderCost, holdingCostPerUnit float64) int {
	if annualDemand <= 0 || holdingCostPerUnit <= 0 {
		return fallbackEOQ
	}
	eoq := int(math.Round(math.Sqrt(2 * annualDemand * orderCost / holdingCostPerUnit)))
	if eoq < minOrderQty {
		return minOrderQty
	}
	return eoq
}

// DaysUntilStockout returns how long current stock lasts at the forecast
// demand rate. Zero or negative demand means stock never depletes, +Inf.
func DaysUntilStockout(currentStock int, dailyDemand float64) float64 {
	if dailyDemand <= 0 {
		return math.Inf(1)
	}
	return float64(currentStock) / dailyDemand
}

// ShouldReorder reports whether stock has reached the reorder point.
func ShouldReorder(currentStock, reorderPoint int) bool {
	return currentStock <= reorderPoint
}
