// Package exchange adapts the remote exchange API behind the narrow gateway
// contract the trading core depends on. Every call can fail with network,
// bad-symbol, rejection, or insufficient-funds conditions; all of them are
// recoverable from the caller's point of view.
package exchange

import (
	"context"

	"github.com/coinpilot/autotrader/market"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Listing is one tradable pair from the exchange catalog.
type Listing struct {
	Symbol     market.Symbol
	QuoteAsset string
}

// OrderResult is the exchange's acknowledgement of an accepted order.
// FillPrice is zero when the exchange did not report an average fill.
type OrderResult struct {
	ID        string
	FillPrice float64
}

// Gateway is the exchange connectivity surface the core trades through.
type Gateway interface {
	// FetchBalances returns asset -> total amount for the account.
	FetchBalances(ctx context.Context) (map[string]float64, error)

	// FetchMarkets returns the current exchange catalog.
	FetchMarkets(ctx context.Context) ([]Listing, error)

	// FetchTicker returns the 24h statistics snapshot for one symbol.
	FetchTicker(ctx context.Context, symbol market.Symbol) (market.Ticker, error)

	// FetchTickers returns 24h statistics for the whole exchange in one call.
	FetchTickers(ctx context.Context) (map[market.Symbol]market.Ticker, error)

	// FetchOHLCV returns up to limit candles for the symbol and timeframe,
	// ordered by strictly increasing open time.
	FetchOHLCV(ctx context.Context, symbol market.Symbol, timeframe string, limit int) ([]market.Candle, error)

	// PlaceOrder submits a market order. A returned error means the exchange
	// did not accept the order.
	PlaceOrder(ctx context.Context, symbol market.Symbol, side Side, amount float64) (OrderResult, error)

	// MinTradeAmount returns the exchange's minimum order quantity for the
	// symbol, falling back to a configured default on any fetch failure.
	MinTradeAmount(ctx context.Context, symbol market.Symbol) float64
}
