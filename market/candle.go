// Package market holds the shared market-data types the rest of the
// system trades in terms of: symbols, candles, tickers, balances and
// trade signals.
package market

import "time"

// Symbol identifies a tradable instrument, e.g. "BTCUSDT".
type Symbol string

// Candle represents OHLCV (Open, High, Low, Close, Volume) candlestick data
// for one timeframe bucket.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Closes extracts the close series from an ordered candle slice.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
