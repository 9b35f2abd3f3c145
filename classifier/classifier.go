// Package classifier owns the signal model: a nearest-centroid classifier
// over standardized feature rows, persisted as a model/scaler/label-mapping
// trio. The prediction boundary never lets an error escape into the trading
// loop: every failure mode resolves to a HOLD signal.
package classifier

import (
	"github.com/coinpilot/autotrader/features"
	"github.com/coinpilot/autotrader/market"
)

// Classifier is the contract the orchestrator consumes the model through.
type Classifier interface {
	// Predict maps a feature row to a signal. It must return Hold, never
	// fail, when the model is unavailable or the feature arity does not
	// match what the model was fitted on.
	Predict(row features.Row) market.Signal

	// Retrain refits the model from labeled rows and replaces the
	// model/scaler/label-mapping trio atomically; on failure the previous
	// trio stays in effect.
	Retrain(rows []features.Row, labels []bool) error

	// Ready reports whether model, scaler and label mapping are all loaded.
	Ready() bool
}
