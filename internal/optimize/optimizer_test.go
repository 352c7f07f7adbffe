package optimize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReorderPoint(t *testing.T) {
	assert.Equal(t, 85, ReorderPoint(10, 7, 15))
	assert.Equal(t, 20, ReorderPoint(0, 7, 20))
}

func TestReorderPointNeverBelowOne(t *testing.T) {
	assert.Equal(t, 1, ReorderPoint(0, 5, 0))
	assert.Equal(t, 1, ReorderPoint(0.05, 3, 0))
}

func TestEconomicOrderQuantity(t *testing.T) {
	// sqrt(2 * 3650 * 50 / 2) = sqrt(182500) ~ 427
	assert.Equal(t, 427, EconomicOrderQuantity(3650, 50, 2))
}

func TestEconomicOrderQuantityFallback(t *testing.T) {
	assert.Equal(t, 10, EconomicOrderQuantity(0, 50, 2))
	assert.Equal(t, 10, EconomicOrderQuantity(-100, 50, 2))
	assert.Equal(t, 10, EconomicOrderQuantity(3650, 50, 0))
}

func TestEconomicOrderQuantityMinimum(t *testing.T) {
	// Tiny demand still yields at least five units per order.
	assert.Equal(t, 5, EconomicOrderQuantity(0.1, 0.1, 10))
}

func TestEconomicOrderQuantityMonotonicInDemand(t *testing.T) {
	prev := 0
	for _, demand := range []float64{10, 100, 1000, 10000, 100000} {
		eoq := EconomicOrderQuantity(demand, 50, 2)
		assert.GreaterOrEqual(t, eoq, prev)
		prev = eoq
	}
}

func TestDaysUntilStockout(t *testing.T) {
	assert.InDelta(t, 25.0, DaysUntilStockout(100, 4), 1e-9)
}

func TestDaysUntilStockoutZeroDemand(t *testing.T) {
	assert.True(t, math.IsInf(DaysUntilStockout(100, 0), 1))
	assert.True(t, math.IsInf(DaysUntilStockout(100, -1), 1))
}

func TestShouldReorder(t *testing.T) {
	assert.True(t, ShouldReorder(50, 50))
	assert.True(t, ShouldReorder(49, 50))
	assert.False(t, ShouldReorder(51, 50))
}
