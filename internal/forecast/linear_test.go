package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitLinearRecoversLine(t *testing.T) {
	// y = 2x + 1
	x := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []float64{1, 3, 5, 7, 9}

	model, err := FitLinear(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1, model.Intercept, 1e-6)
	require.Len(t, model.Coefficients, 1)
	assert.InDelta(t, 2, model.Coefficients[0], 1e-6)

	assert.InDelta(t, 21, model.Predict([]float64{10}), 1e-6)
}

func TestFitLinearTwoFeatures(t *testing.T) {
	// y = 3a - b + 2
	x := [][]float64{{1, 1}, {2, 1}, {1, 3}, {4, 2}, {3, 5}, {2, 2}}
	y := make([]float64, len(x))
	for i, row := range x {
		y[i] = 3*row[0] - row[1] + 2
	}

	model, err := FitLinear(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 2, model.Intercept, 1e-6)
	assert.InDelta(t, 3, model.Coefficients[0], 1e-6)
	assert.InDelta(t, -1, model.Coefficients[1], 1e-6)
}

func TestFitLinearSingularMatrix(t *testing.T) {
	// Duplicated feature column makes the normal equations singular.
	x := [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}}
	y := []float64{1, 2, 3, 4}

	_, err := FitLinear(x, y)
	assert.Error(t, err)
}

func TestFitLinearEmptyInput(t *testing.T) {
	_, err := FitLinear(nil, nil)
	assert.Error(t, err)

	_, err = FitLinear([][]float64{{1}}, []float64{1, 2})
	assert.Error(t, err)
}
