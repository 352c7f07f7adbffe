// backend-go/internal/pretrained/bundle.go

// Package pretrained loads and serves the externally trained "best" demand
// model bundle. The bundle is produced offline by the model-training
// notebook and shipped as four documents: the model weights, the feature
// scaler, the feature column list and a JSON metadata file.
package pretrained

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Bundle file names. These are part of the on-disk contract with the
// offline training pipeline and must not change.
const (
	ModelFile    = "best_demand_model.json"
	ScalerFile   = "feature_scaler.json"
	FeaturesFile = "feature_columns.json"
	MetadataFile = "model_metadata.json"
)

// Metadata describes the bundled model. Key names mirror the metadata JSON
// written by the training pipeline.
type Metadata struct {
	ModelName       string  `json:"model_name"`
	MAE             float64 `json:"mae"`
	RMSE            float64 `json:"rmse"`
	R2              float64 `json:"r2"`
	TrainingSamples int     `json:"training_samples"`
}

// ModelWeights is the serialized regression model: an intercept plus one
// coefficient per feature column, applied to standardized features.
type ModelWeights struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Scaler holds the per-feature standardization parameters.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Bundle is a fully parsed pretrained model bundle.
type Bundle struct {
	Model          ModelWeights
	Scaler         Scaler
	FeatureColumns []string
	Metadata       Metadata
}

// LoadBundle reads and validates a bundle from dir. Any missing file,
// parse failure or dimension mismatch fails the load as a whole.
func LoadBundle(dir string) (*Bundle, error) {
	var b Bundle

	if err := readJSON(filepath.Join(dir, ModelFile), &b.Model); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, ScalerFile), &b.Scaler); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, FeaturesFile), &b.FeatureColumns); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, MetadataFile), &b.Metadata); err != nil {
		return nil, err
	}

	n := len(b.FeatureColumns)
	if n == 0 || len(b.Model.Coefficients) != n || len(b.Scaler.Mean) != n || len(b.Scaler.Std) != n {
		return nil, fmt.Errorf("bundle dimension mismatch: %d columns, %d coefficients, %d/%d scaler params",
			n, len(b.Model.Coefficients), len(b.Scaler.Mean), len(b.Scaler.Std))
	}

	return &b, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read bundle file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse bundle file %s: %w", path, err)
	}
	return nil
}
