// backend-go/internal/forecast/linear.go
package forecast

import (
	"errors"
	"fmt"
	"math"
)

// LinearModel is an ordinary least-squares regression fit via the normal
// equations. It is the simple baseline half of the forecasting ensemble.
type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// FitLinear solves (A^T A) w = A^T y where A is X with a leading ones
// column. A singular system (e.g. a constant feature column over a short
// window) is reported as an error and isolated by the caller.
func FitLinear(x [][]float64, y []float64) (*LinearModel, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.New("linear fit: empty or mismatched training data")
	}
	cols := len(x[0]) + 1

	ata := make([][]float64, cols)
	for i := range ata {
		ata[i] = make([]float64, cols)
	}
	aty := make([]float64, cols)

	for r, row := range x {
		aug := make([]float64, cols)
		aug[0] = 1
		copy(aug[1:], row)
		for i := 0; i < cols; i++ {
			aty[i] += aug[i] * y[r]
			for j := 0; j < cols; j++ {
				ata[i][j] += aug[i] * aug[j]
			}
		}
	}

	weights, err := solveGaussian(ata, aty)
	if err != nil {
		return nil, fmt.Errorf("linear fit: %w", err)
	}

	return &LinearModel{
		Intercept:    weights[0],
		Coefficients: weights[1:],
	}, nil
}

// Predict evaluates the fitted hyperplane for one feature row.
func (m *LinearModel) Predict(row []float64) float64 {
	out := m.Intercept
	for i, c := range m.Coefficients {
		if i < len(row) {
			out += c * row[i]
		}
	}
	return out
}

// solveGaussian solves a dense linear system with partial pivoting.
func solveGaussian(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	m := make([][]float64, n)
	for i := range a {
		m[i] = append(append([]float64(nil), a[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, errors.New("singular design matrix")
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := col + 1; r < n; r++ {
			factor := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	solution := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * solution[j]
		}
		solution[i] = sum / m[i][i]
	}
	return solution, nil
}
