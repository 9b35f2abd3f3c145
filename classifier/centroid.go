package classifier

import (
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coinpilot/autotrader/features"
	"github.com/coinpilot/autotrader/market"
)

// scaler standardizes feature vectors with the per-feature mean and standard
// deviation captured at fit time.
type scaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

func fitScaler(rows [][]float64) scaler {
	n := len(rows)
	arity := len(rows[0])
	s := scaler{
		Means: make([]float64, arity),
		Stds:  make([]float64, arity),
	}

	for _, row := range rows {
		for j, v := range row {
			s.Means[j] += v
		}
	}
	for j := range s.Means {
		s.Means[j] /= float64(n)
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - s.Means[j]
			s.Stds[j] += d * d
		}
	}
	for j := range s.Stds {
		s.Stds[j] = math.Sqrt(s.Stds[j] / float64(n))
		if s.Stds[j] == 0 {
			// A constant feature carries no information; unit scale keeps
			// the transform defined.
			s.Stds[j] = 1
		}
	}
	return s
}

func (s scaler) transform(v []float64) []float64 {
	out := make([]float64, len(v))
	for j := range v {
		out[j] = (v[j] - s.Means[j]) / s.Stds[j]
	}
	return out
}

// model holds one centroid per class in scaled feature space.
type model struct {
	Centroids [][]float64 `json:"centroids"`
}

// labelMapping maps class index to signal label, mirroring the label-encoder
// artifact the model was trained alongside.
type labelMapping struct {
	Labels []string `json:"labels"`
}

// Centroid is the concrete Classifier. All three artifacts are replaced
// together or not at all, both in memory and on disk.
type Centroid struct {
	mu     sync.RWMutex
	model  *model
	scaler *scaler
	labels *labelMapping

	store *Store
	log   zerolog.Logger
}

var _ Classifier = (*Centroid)(nil)

// NewCentroid loads any previously persisted trio from the store. A missing
// or unreadable trio is not an error: the classifier starts not-ready and
// predicts Hold until the first successful retrain.
func NewCentroid(store *Store, log zerolog.Logger) *Centroid {
	c := &Centroid{
		store: store,
		log:   log.With().Str("component", "classifier").Logger(),
	}

	m, s, l, err := store.Load()
	if err != nil {
		c.log.Warn().Err(err).Msg("no usable model trio on disk, starting untrained")
		return c
	}
	c.model, c.scaler, c.labels = m, s, l
	c.log.Info().Int("classes", len(l.Labels)).Msg("model trio loaded")
	return c
}

func (c *Centroid) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model != nil && c.scaler != nil && c.labels != nil
}

// Predict resolves every failure mode to Hold. An arity mismatch is an
// expected, recoverable condition after a feature-schema change, so it logs
// at warn rather than error.
func (c *Centroid) Predict(row features.Row) market.Signal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.model == nil || c.scaler == nil || c.labels == nil {
		c.log.Error().Msg("model, scaler or label mapping not loaded")
		return market.Hold
	}

	vector := row.Vector()
	if len(vector) != len(c.scaler.Means) {
		c.log.Warn().Int("got", len(vector)).Int("want", len(c.scaler.Means)).
			Msg("feature arity mismatch")
		return market.Hold
	}

	scaled := c.scaler.transform(vector)

	best := -1
	bestDist := math.Inf(1)
	for i, centroid := range c.model.Centroids {
		if len(centroid) != len(scaled) {
			c.log.Warn().Int("class", i).Msg("centroid arity mismatch")
			return market.Hold
		}
		var dist float64
		for j := range scaled {
			d := scaled[j] - centroid[j]
			dist += d * d
		}
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}

	if best < 0 || best >= len(c.labels.Labels) {
		c.log.Error().Int("class", best).Msg("prediction outside label mapping")
		return market.Hold
	}

	signal, err := market.ParseSignal(c.labels.Labels[best])
	if err != nil {
		c.log.Error().Err(err).Msg("corrupt label mapping")
		return market.Hold
	}
	return signal
}

// Retrain fits a new trio from labeled rows. The boolean label is the
// forward-looking "next close is higher" flag; false maps to SELL, true to
// BUY.
func (c *Centroid) Retrain(rows []features.Row, labels []bool) error {
	if len(rows) == 0 || len(rows) != len(labels) {
		return fmt.Errorf("retrain: %d rows, %d labels", len(rows), len(labels))
	}

	vectors := make([][]float64, len(rows))
	for i, r := range rows {
		vectors[i] = r.Vector()
	}

	newScaler := fitScaler(vectors)

	mapping := labelMapping{Labels: []string{market.Sell.String(), market.Buy.String()}}
	sums := make([][]float64, len(mapping.Labels))
	counts := make([]int, len(mapping.Labels))
	for i := range sums {
		sums[i] = make([]float64, features.Arity)
	}

	for i, v := range vectors {
		class := 0
		if labels[i] {
			class = 1
		}
		scaled := newScaler.transform(v)
		for j := range scaled {
			sums[class][j] += scaled[j]
		}
		counts[class]++
	}

	newModel := model{Centroids: make([][]float64, len(sums))}
	for class := range sums {
		if counts[class] == 0 {
			return fmt.Errorf("retrain: class %s has no samples", mapping.Labels[class])
		}
		centroid := make([]float64, len(sums[class]))
		for j := range centroid {
			centroid[j] = sums[class][j] / float64(counts[class])
		}
		newModel.Centroids[class] = centroid
	}

	if err := c.store.Save(&newModel, &newScaler, &mapping); err != nil {
		return fmt.Errorf("retrain: persist trio: %w", err)
	}

	c.mu.Lock()
	c.model, c.scaler, c.labels = &newModel, &newScaler, &mapping
	c.mu.Unlock()

	c.log.Info().Int("samples", len(rows)).Msg("model retrained")
	return nil
}
