// backend-go/internal/forecast/forecaster.go
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/stockwise/backend-go/internal/domain"
	"github.com/stockwise/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// splitSeed makes the train/test shuffle reproducible: retraining on the
// same history must yield the same metrics.
const splitSeed = 42

const (
	defaultLookbackDays = 90
	defaultTestSplit    = 0.2
	defaultConfidence   = 0.7
	minConfidence       = 0.5
	maxConfidence       = 0.95
)

// TrainedModelState holds the fitted models for one product. It is built
// wholesale by Train and never partially updated; retraining replaces the
// entire value.
type TrainedModelState struct {
	Linear    *LinearModel
	Forest    *ForestModel
	TrainedAt time.Time
}

// ModelOutcome reports one model's training result. Err is set when the fit
// failed; the sibling model is unaffected.
type ModelOutcome struct {
	Metrics *domain.EvaluationMetrics
	Err     error
}

// TrainResult is the overall outcome of a Train call. Success is false only
// for the recoverable "not enough history" case.
type TrainResult struct {
	Success bool
	Message string
	Linear  ModelOutcome
	Forest  ModelOutcome
	Rows    int
}

// Forecaster trains and serves demand predictions for a single product.
// Instances are exclusively owned by their creator and are not safe for
// concurrent use; per-product state makes cross-product parallelism safe.
type Forecaster struct {
	productID int64
	builder   *FeatureBuilder
	state     *TrainedModelState
	now       func() time.Time
}

func NewForecaster(productID int64, sales repository.SalesReader) *Forecaster {
	return &Forecaster{
		productID: productID,
		builder:   NewFeatureBuilder(sales),
		now:       time.Now,
	}
}

// State returns the current trained state, nil before the first Train.
func (f *Forecaster) State() *TrainedModelState { return f.state }

// Train fits the linear and forest models on the lookback window and
// evaluates both on a held-out split. Insufficient history is reported via
// Success=false, not an error; each model's fit failure is isolated.
func (f *Forecaster) Train(ctx context.Context, lookbackDays int, testSplit float64) (TrainResult, error) {
	if lookbackDays <= 0 {
		lookbackDays = defaultLookbackDays
	}
	if testSplit <= 0 || testSplit >= 1 {
		testSplit = defaultTestSplit
	}

	x, y, err := f.builder.Build(ctx, f.productID, lookbackDays, f.now())
	if errors.Is(err, domain.ErrInsufficientData) {
		log.Warn().Int64("product_id", f.productID).Msg("not enough sales history to train")
		return TrainResult{Success: false, Message: "insufficient sales data"}, nil
	}
	if err != nil {
		return TrainResult{}, fmt.Errorf("prepare training data: %w", err)
	}

	trainX, trainY, testX, testY := splitTrainTest(x, y, testSplit)
	effectiveSplit := float64(len(trainY)) / float64(len(y))
	state := &TrainedModelState{TrainedAt: f.now()}
	result := TrainResult{Success: true, Rows: len(y)}

	if linear, fitErr := FitLinear(trainX, trainY); fitErr != nil {
		log.Error().Err(fitErr).Int64("product_id", f.productID).Msg("linear regression training failed")
		result.Linear = ModelOutcome{Err: fitErr}
	} else {
		state.Linear = linear
		result.Linear = ModelOutcome{Metrics: evaluate(f.productID, domain.ModelLinear, linear.Predict, testX, testY, effectiveSplit, len(trainY), f.now())}
	}

	rng := rand.New(rand.NewSource(splitSeed))
	if forest, fitErr := FitForest(trainX, trainY, rng); fitErr != nil {
		log.Error().Err(fitErr).Int64("product_id", f.productID).Msg("random forest training failed")
		result.Forest = ModelOutcome{Err: fitErr}
	} else {
		state.Forest = forest
		result.Forest = ModelOutcome{Metrics: evaluate(f.productID, domain.ModelForest, forest.Predict, testX, testY, effectiveSplit, len(trainY), f.now())}
	}

	// Replace state wholesale; a prior model never survives a retrain.
	f.state = state
	return result, nil
}

// Predict forecasts demand for targetDate using every available model,
// training lazily with defaults when no state exists yet. Predictions are
// clamped to be non-negative and the ensemble is the mean of the available
// per-model values.
func (f *Forecaster) Predict(ctx context.Context, targetDate time.Time) (domain.PredictionSet, error) {
	if f.state == nil || (f.state.Linear == nil && f.state.Forest == nil) {
		result, err := f.Train(ctx, defaultLookbackDays, defaultTestSplit)
		if err != nil {
			return domain.PredictionSet{}, err
		}
		if !result.Success {
			return domain.PredictionSet{}, domain.ErrInsufficientData
		}
	}

	row, err := f.builder.BuildInferenceRow(ctx, f.productID, targetDate, f.now())
	if err != nil {
		return domain.PredictionSet{}, err
	}

	set := domain.PredictionSet{Confidence: defaultConfidence}
	var values []float64

	if f.state.Linear != nil {
		v := clampNonNegative(f.state.Linear.Predict(row))
		set.Linear = &v
		values = append(values, v)
	}
	if f.state.Forest != nil {
		v := clampNonNegative(f.state.Forest.Predict(row))
		set.Forest = &v
		values = append(values, v)
		set.Confidence = forestConfidence(f.state.Forest, row)
	}
	if len(values) == 0 {
		return domain.PredictionSet{}, errors.New("no trained model available")
	}

	set.Ensemble = mean(values)
	return set, nil
}

// forestConfidence maps the forest's self-consistency on a row into
// [0.5, 0.95]. It is a heuristic reliability indicator, not a calibrated
// probability.
func forestConfidence(forest *ForestModel, row []float64) float64 {
	spread := forest.Consistency(row)
	if spread > 1 {
		spread = 1
	}
	conf := maxConfidence - (maxConfidence-minConfidence)*spread
	if conf < minConfidence {
		return minConfidence
	}
	if conf > maxConfidence {
		return maxConfidence
	}
	return conf
}

func evaluate(productID int64, model domain.ModelKind, predict func([]float64) float64, testX [][]float64, testY []float64, split float64, trainSamples int, now time.Time) *domain.EvaluationMetrics {
	predictions := make([]float64, len(testX))
	for i, row := range testX {
		predictions[i] = clampNonNegative(predict(row))
	}

	return &domain.EvaluationMetrics{
		ProductID:       productID,
		Model:           model,
		MAE:             MeanAbsoluteError(testY, predictions),
		RMSE:            RootMeanSquaredError(testY, predictions),
		R2:              RSquared(testY, predictions),
		TrainTestSplit:  split,
		TrainingSamples: trainSamples,
		TestSamples:     len(testY),
		EvaluatedAt:     now,
	}
}

// splitTrainTest shuffles indices with the fixed seed and carves off the
// test fraction. Both partitions always keep at least one row.
func splitTrainTest(x [][]float64, y []float64, testSplit float64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	n := len(y)
	testN := int(float64(n)*testSplit + 0.5)
	if testN < 1 {
		testN = 1
	}
	if testN >= n {
		testN = n - 1
	}

	rng := rand.New(rand.NewSource(splitSeed))
	perm := rng.Perm(n)

	for i, idx := range perm {
		if i < n-testN {
			trainX = append(trainX, x[idx])
			trainY = append(trainY, y[idx])
		} else {
			testX = append(testX, x[idx])
			testY = append(testY, y[idx])
		}
	}
	return trainX, trainY, testX, testY
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
