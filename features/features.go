// Package features turns raw OHLCV history into the fixed-schema indicator
// row the classifier consumes.
package features

import (
	"fmt"

	"github.com/coinpilot/autotrader/indicators"
	"github.com/coinpilot/autotrader/market"
)

// Row is one feature vector for one time point. The schema is fixed at
// compile time; Vector and Schema report the values and names in canonical
// order, which must match what the classifier was fitted on.
type Row struct {
	EMAShort   float64
	EMALong    float64
	MACD       float64
	MACDSignal float64
	RSI        float64
}

// Arity is the number of features in a Row.
const Arity = 5

// Vector returns the feature values in canonical schema order.
func (r Row) Vector() []float64 {
	return []float64{r.EMAShort, r.EMALong, r.MACD, r.MACDSignal, r.RSI}
}

// Schema returns the feature names in canonical order.
func Schema() []string {
	return []string{"ema_short", "ema_long", "macd", "macd_signal", "rsi"}
}

// Config holds the indicator spans. Zero values fall back to the defaults
// the engine was designed around (12/26/9 MACD, 14 RSI).
type Config struct {
	ShortSpan  int
	LongSpan   int
	SignalSpan int
	RSIWindow  int
}

func (c Config) withDefaults() Config {
	if c.ShortSpan == 0 {
		c.ShortSpan = 12
	}
	if c.LongSpan == 0 {
		c.LongSpan = 26
	}
	if c.SignalSpan == 0 {
		c.SignalSpan = 9
	}
	if c.RSIWindow == 0 {
		c.RSIWindow = 14
	}
	return c
}

// Engine computes feature rows from candle history.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// warmup is the number of candles required before the first eligible row.
func (e *Engine) warmup() int {
	if e.cfg.LongSpan > e.cfg.RSIWindow+1 {
		return e.cfg.LongSpan
	}
	return e.cfg.RSIWindow + 1
}

// series computes every indicator series once and reports the first
// eligible index.
func (e *Engine) series(candles []market.Candle) (ema12, ema26, macd, signal, rsi []float64, first int, err error) {
	if len(candles) < e.warmup() {
		return nil, nil, nil, nil, nil, 0,
			fmt.Errorf("insufficient history: need %d candles, got %d", e.warmup(), len(candles))
	}

	closes := market.Closes(candles)

	if ema12, err = indicators.EMASeries(closes, e.cfg.ShortSpan); err != nil {
		return nil, nil, nil, nil, nil, 0, err
	}
	if ema26, err = indicators.EMASeries(closes, e.cfg.LongSpan); err != nil {
		return nil, nil, nil, nil, nil, 0, err
	}
	if macd, signal, err = indicators.MACDSeries(closes, e.cfg.ShortSpan, e.cfg.LongSpan, e.cfg.SignalSpan); err != nil {
		return nil, nil, nil, nil, nil, 0, err
	}

	var rsiOK []bool
	if rsi, rsiOK, err = indicators.RSISeries(closes, e.cfg.RSIWindow); err != nil {
		return nil, nil, nil, nil, nil, 0, err
	}

	first = e.warmup() - 1
	for !rsiOK[first] {
		// Defensive: warmup already covers the RSI window, but never hand out
		// an undefined oscillator value.
		first++
	}
	return ema12, ema26, macd, signal, rsi, first, nil
}

// Compute returns the feature row for the latest candle. It errors when the
// history is too short for every indicator to be defined.
func (e *Engine) Compute(candles []market.Candle) (Row, error) {
	ema12, ema26, macd, signal, rsi, _, err := e.series(candles)
	if err != nil {
		return Row{}, err
	}

	last := len(candles) - 1
	return Row{
		EMAShort:   ema12[last],
		EMALong:    ema26[last],
		MACD:       macd[last],
		MACDSignal: signal[last],
		RSI:        rsi[last],
	}, nil
}

// Dataset builds training rows with forward-looking labels: label[i] is true
// when the next close is above the current close. The final candle has no
// next close and is excluded. Labels are only meaningful offline; inference
// never sees them.
func (e *Engine) Dataset(candles []market.Candle) ([]Row, []bool, error) {
	ema12, ema26, macd, signal, rsi, first, err := e.series(candles)
	if err != nil {
		return nil, nil, err
	}

	var rows []Row
	var labels []bool
	for i := first; i < len(candles)-1; i++ {
		rows = append(rows, Row{
			EMAShort:   ema12[i],
			EMALong:    ema26[i],
			MACD:       macd[i],
			MACDSignal: signal[i],
			RSI:        rsi[i],
		})
		labels = append(labels, candles[i+1].Close > candles[i].Close)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("insufficient history: no labeled rows after warmup")
	}
	return rows, labels, nil
}
