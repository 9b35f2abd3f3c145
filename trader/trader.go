// Package trader owns the scheduling loop: per active symbol pull history,
// compute features, predict, decide, execute, sleep — forever. Failures are
// isolated per symbol and per cycle; only a startup failure to load the
// market catalog is fatal.
package trader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coinpilot/autotrader/classifier"
	"github.com/coinpilot/autotrader/engine"
	"github.com/coinpilot/autotrader/exchange"
	"github.com/coinpilot/autotrader/features"
	"github.com/coinpilot/autotrader/market"
	"github.com/coinpilot/autotrader/universe"
)

// State is the orchestrator lifecycle phase.
type State string

const (
	StateInitializing      State = "INITIALIZING"
	StateSelectingUniverse State = "SELECTING_UNIVERSE"
	StateRunning           State = "RUNNING"
	StateFailedStart       State = "FAILED_START"
)

// Config holds the loop timings and history pull parameters.
type Config struct {
	Timeframe       string
	HistoryLimit    int
	Interval        time.Duration
	RetrainInterval time.Duration
}

// Trader is the orchestrator.
type Trader struct {
	gateway  exchange.Gateway
	selector *universe.Selector
	feat     *features.Engine
	model    classifier.Classifier
	exec     *engine.Engine
	cfg      Config
	log      zerolog.Logger

	state            State
	symbols          []market.Symbol
	lastRetrainCheck time.Time
}

func New(gateway exchange.Gateway, selector *universe.Selector, feat *features.Engine,
	model classifier.Classifier, exec *engine.Engine, cfg Config, log zerolog.Logger) *Trader {
	return &Trader{
		gateway:  gateway,
		selector: selector,
		feat:     feat,
		model:    model,
		exec:     exec,
		cfg:      cfg,
		log:      log.With().Str("component", "trader").Logger(),
		state:    StateInitializing,
	}
}

// State returns the current lifecycle phase.
func (t *Trader) State() State {
	return t.state
}

// Universe returns the active symbol set.
func (t *Trader) Universe() []market.Symbol {
	return t.symbols
}

// Start selects the universe and runs the loop until ctx is cancelled. The
// only fatal condition is failing to load the market catalog at startup.
func (t *Trader) Start(ctx context.Context) error {
	t.state = StateSelectingUniverse
	catalog, err := t.gateway.FetchMarkets(ctx)
	if err != nil {
		t.state = StateFailedStart
		return fmt.Errorf("load market catalog: %w", err)
	}

	symbols, err := t.selector.Select(ctx, catalog)
	if err != nil {
		t.state = StateFailedStart
		return fmt.Errorf("select universe: %w", err)
	}
	t.symbols = symbols
	t.lastRetrainCheck = time.Now()

	t.log.Info().Int("symbols", len(symbols)).Msg("universe selected, entering trading loop")
	t.state = StateRunning
	return t.run(ctx)
}

// run is the infinite cycle. A cycle-level failure backs off by one full
// interval before retrying; there is no graceful terminal state besides
// cancellation.
func (t *Trader) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			t.log.Info().Msg("trading loop cancelled")
			return err
		}
		if err := t.cycleSafe(ctx); err != nil {
			if ctx.Err() != nil {
				t.log.Info().Msg("trading loop cancelled")
				return ctx.Err()
			}
			t.log.Error().Err(err).Msg("cycle failed, backing off one interval")
			if err := t.sleep(ctx); err != nil {
				return err
			}
		}
	}
}

// cycleSafe shields the loop from a runtime panic anywhere below the
// orchestrator: the panic surfaces as a cycle-level error and the loop backs
// off one interval instead of taking the process down.
func (t *Trader) cycleSafe(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	return t.cycle(ctx)
}

func (t *Trader) cycle(ctx context.Context) error {
	for _, symbol := range t.symbols {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := t.tradeSymbol(ctx, symbol); err != nil {
			// Skip this symbol's action for the cycle; the symbol itself
			// stays in the universe. Connectivity trouble is transient and
			// logs at warn; anything else is a real rejection.
			lvl := zerolog.ErrorLevel
			if errors.Is(err, exchange.ErrConnectivity) {
				lvl = zerolog.WarnLevel
			}
			t.log.WithLevel(lvl).Err(err).Str("symbol", string(symbol)).Msg("symbol skipped this cycle")
		}

		t.maybeRetrain(ctx)

		if err := t.sleep(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (t *Trader) tradeSymbol(ctx context.Context, symbol market.Symbol) error {
	candles, err := t.gateway.FetchOHLCV(ctx, symbol, t.cfg.Timeframe, t.cfg.HistoryLimit)
	if err != nil {
		return err
	}
	if len(candles) == 0 {
		return fmt.Errorf("no history for %s", symbol)
	}

	row, err := t.feat.Compute(candles)
	if err != nil {
		// Data-quality condition: this cycle becomes a no-op for the symbol.
		return err
	}

	signal := t.model.Predict(row)
	position := t.exec.Position(symbol)
	action := engine.Decide(signal, position)

	t.log.Info().Str("symbol", string(symbol)).Str("signal", signal.String()).
		Str("side", string(position.Side)).Str("action", action.String()).
		Msg("decision")

	if action == engine.NoAction {
		return nil
	}
	return t.exec.Execute(ctx, symbol, action)
}

// maybeRetrain refits the model from freshly pulled rolling history of the
// active universe once the retrain interval has elapsed. Retrain failure is
// logged and never blocks trading.
func (t *Trader) maybeRetrain(ctx context.Context) {
	if time.Since(t.lastRetrainCheck) < t.cfg.RetrainInterval {
		return
	}
	t.lastRetrainCheck = time.Now()

	var rows []features.Row
	var labels []bool
	for _, symbol := range t.symbols {
		candles, err := t.gateway.FetchOHLCV(ctx, symbol, t.cfg.Timeframe, t.cfg.HistoryLimit)
		if err != nil {
			t.log.Warn().Err(err).Str("symbol", string(symbol)).Msg("retrain data fetch failed")
			continue
		}
		symRows, symLabels, err := t.feat.Dataset(candles)
		if err != nil {
			t.log.Warn().Err(err).Str("symbol", string(symbol)).Msg("retrain dataset skipped")
			continue
		}
		rows = append(rows, symRows...)
		labels = append(labels, symLabels...)
	}

	if len(rows) == 0 {
		t.log.Warn().Msg("no training data this retrain window")
		return
	}
	if err := t.model.Retrain(rows, labels); err != nil {
		t.log.Error().Err(err).Msg("retrain failed, previous model stays in effect")
		return
	}
	t.log.Info().Int("samples", len(rows)).Msg("model retrained on rolling history")
}

func (t *Trader) sleep(ctx context.Context) error {
	timer := time.NewTimer(t.cfg.Interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
