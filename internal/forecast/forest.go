// backend-go/internal/forecast/forest.go
package forecast

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

const (
	forestTrees           = 50
	forestMaxDepth        = 10
	forestMinSamplesSplit = 5
)

// ForestModel is a bagged ensemble of regression trees. Each tree is grown
// on a bootstrap resample of the training rows; the forest prediction is
// the mean over trees. The per-tree spread doubles as a self-consistency
// signal that feeds the confidence heuristic.
type ForestModel struct {
	Trees []*treeNode `json:"trees"`
}

type treeNode struct {
	FeatureIndex int       `json:"feature_index"`
	Threshold    float64   `json:"threshold"`
	Value        float64   `json:"value"`
	Left         *treeNode `json:"left,omitempty"`
	Right        *treeNode `json:"right,omitempty"`
}

func (n *treeNode) isLeaf() bool { return n.Left == nil && n.Right == nil }

// FitForest trains the tree ensemble. The random source must be seeded by
// the caller so that retraining on the same data reproduces the same model.
func FitForest(x [][]float64, y []float64, rng *rand.Rand) (*ForestModel, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.New("forest fit: empty or mismatched training data")
	}

	trees := make([]*treeNode, forestTrees)
	for t := 0; t < forestTrees; t++ {
		sampleX := make([][]float64, len(x))
		sampleY := make([]float64, len(y))
		for i := range x {
			j := rng.Intn(len(x))
			sampleX[i] = x[j]
			sampleY[i] = y[j]
		}
		trees[t] = growTree(sampleX, sampleY, 0)
	}

	return &ForestModel{Trees: trees}, nil
}

// Predict returns the mean of the per-tree predictions.
func (m *ForestModel) Predict(row []float64) float64 {
	sum := 0.0
	for _, tree := range m.Trees {
		sum += tree.predict(row)
	}
	return sum / float64(len(m.Trees))
}

// Consistency measures how much the trees agree on a row, as the relative
// spread of per-tree predictions. 0 means unanimous; larger means noisier.
func (m *ForestModel) Consistency(row []float64) float64 {
	preds := make([]float64, len(m.Trees))
	for i, tree := range m.Trees {
		preds[i] = tree.predict(row)
	}
	avg := mean(preds)

	variance := 0.0
	for _, p := range preds {
		d := p - avg
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(preds)))

	return std / (math.Abs(avg) + 1)
}

func (n *treeNode) predict(row []float64) float64 {
	node := n
	for !node.isLeaf() {
		if row[node.FeatureIndex] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

func growTree(x [][]float64, y []float64, depth int) *treeNode {
	node := &treeNode{FeatureIndex: -1, Value: mean(y)}
	if depth >= forestMaxDepth || len(y) < forestMinSamplesSplit || allEqual(y) {
		return node
	}

	feature, threshold, ok := bestSplit(x, y)
	if !ok {
		return node
	}

	var leftX, rightX [][]float64
	var leftY, rightY []float64
	for i, row := range x {
		if row[feature] <= threshold {
			leftX = append(leftX, row)
			leftY = append(leftY, y[i])
		} else {
			rightX = append(rightX, row)
			rightY = append(rightY, y[i])
		}
	}
	if len(leftY) == 0 || len(rightY) == 0 {
		return node
	}

	node.FeatureIndex = feature
	node.Threshold = threshold
	node.Left = growTree(leftX, leftY, depth+1)
	node.Right = growTree(rightX, rightY, depth+1)
	return node
}

// bestSplit scans every feature and candidate threshold (midpoints between
// consecutive distinct values) for the split with the lowest weighted
// sum of squared errors.
func bestSplit(x [][]float64, y []float64) (int, float64, bool) {
	bestSSE := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	numFeatures := len(x[0])
	for f := 0; f < numFeatures; f++ {
		values := make([]float64, len(x))
		for i, row := range x {
			values[i] = row[f]
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		for i := 0; i < len(sorted)-1; i++ {
			if sorted[i] == sorted[i+1] {
				continue
			}
			threshold := (sorted[i] + sorted[i+1]) / 2

			var leftSum, leftSq, rightSum, rightSq float64
			var leftN, rightN int
			for j, v := range values {
				if v <= threshold {
					leftSum += y[j]
					leftSq += y[j] * y[j]
					leftN++
				} else {
					rightSum += y[j]
					rightSq += y[j] * y[j]
					rightN++
				}
			}
			if leftN == 0 || rightN == 0 {
				continue
			}

			sse := (leftSq - leftSum*leftSum/float64(leftN)) +
				(rightSq - rightSum*rightSum/float64(rightN))
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
