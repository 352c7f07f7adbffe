// backend-go/internal/pretrained/cache.go
package pretrained

import (
	"github.com/rs/zerolog/log"
)

// ModelCache is the process-wide, read-only holder of the pretrained model.
// It is constructed exactly once at startup and passed by handle to
// consumers; after construction it is never written, so concurrent reads
// need no synchronization. A missing or corrupt bundle leaves the cache
// permanently unavailable, which is non-fatal: callers fall back to
// per-product training.
type ModelCache struct {
	bundle *Bundle
}

// NewModelCache loads the bundle from dir. Load failures are logged once
// and produce an unavailable cache rather than an error.
func NewModelCache(dir string) *ModelCache {
	bundle, err := LoadBundle(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("pretrained model bundle unavailable, falling back to per-product training")
		return &ModelCache{}
	}

	log.Info().
		Str("model", bundle.Metadata.ModelName).
		Float64("mae", bundle.Metadata.MAE).
		Float64("r2", bundle.Metadata.R2).
		Int("training_samples", bundle.Metadata.TrainingSamples).
		Msg("loaded pretrained demand model")
	return &ModelCache{bundle: bundle}
}

// Available reports whether the bundle loaded successfully. Dependents must
// check this before calling Predict.
func (c *ModelCache) Available() bool {
	return c != nil && c.bundle != nil
}

// Predict scales the feature row and evaluates the cached model. It returns
// ok=false instead of an error on any internal failure so callers always
// have a defined fallback path.
func (c *ModelCache) Predict(features []float64) (float64, bool) {
	if !c.Available() {
		return 0, false
	}
	if len(features) != len(c.bundle.FeatureColumns) {
		log.Error().
			Int("got", len(features)).
			Int("want", len(c.bundle.FeatureColumns)).
			Msg("pretrained predict called with wrong feature count")
		return 0, false
	}

	prediction := c.bundle.Model.Intercept
	for i, v := range features {
		std := c.bundle.Scaler.Std[i]
		if std == 0 {
			std = 1
		}
		scaled := (v - c.bundle.Scaler.Mean[i]) / std
		prediction += c.bundle.Model.Coefficients[i] * scaled
	}

	if prediction < 0 {
		prediction = 0
	}
	return prediction, true
}

// Metadata returns the bundle metadata, or nil when unavailable.
func (c *ModelCache) Metadata() *Metadata {
	if !c.Available() {
		return nil
	}
	m := c.bundle.Metadata
	return &m
}
