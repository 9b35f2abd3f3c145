package universe

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinpilot/autotrader/config"
	"github.com/coinpilot/autotrader/exchange"
	"github.com/coinpilot/autotrader/market"
)

// fakeGateway serves canned catalog and ticker responses.
type fakeGateway struct {
	markets    []exchange.Listing
	marketsErr error
	tickers    map[market.Symbol]market.Ticker
	tickersErr error
}

func (f *fakeGateway) FetchMarkets(ctx context.Context) ([]exchange.Listing, error) {
	return f.markets, f.marketsErr
}

func (f *fakeGateway) FetchTickers(ctx context.Context) (map[market.Symbol]market.Ticker, error) {
	return f.tickers, f.tickersErr
}

func (f *fakeGateway) FetchTicker(ctx context.Context, symbol market.Symbol) (market.Ticker, error) {
	return f.tickers[symbol], f.tickersErr
}

func (f *fakeGateway) FetchBalances(ctx context.Context) (map[string]float64, error) {
	return nil, nil
}

func (f *fakeGateway) FetchOHLCV(ctx context.Context, symbol market.Symbol, timeframe string, limit int) ([]market.Candle, error) {
	return nil, nil
}

func (f *fakeGateway) PlaceOrder(ctx context.Context, symbol market.Symbol, side exchange.Side, amount float64) (exchange.OrderResult, error) {
	return exchange.OrderResult{}, nil
}

func (f *fakeGateway) MinTradeAmount(ctx context.Context, symbol market.Symbol) float64 {
	return 0
}

func usdtListings(symbols ...string) []exchange.Listing {
	out := make([]exchange.Listing, len(symbols))
	for i, s := range symbols {
		out[i] = exchange.Listing{Symbol: market.Symbol(s), QuoteAsset: "USDT"}
	}
	return out
}

func TestSelectFilterPipeline(t *testing.T) {
	t.Parallel()

	// Ten candidates. Volume threshold 100 removes four; top-3 by volume
	// keeps S1,S2,S3; volatility >= 2% then removes S3. Final: S1, S2.
	symbols := make([]string, 10)
	tickers := make(map[market.Symbol]market.Ticker, 10)
	for i := range symbols {
		name := fmt.Sprintf("S%dUSDT", i)
		symbols[i] = name

		volume := 50.0 // below threshold
		if i < 6 {
			volume = float64(1000 - i*100) // S0 largest ... S5 smallest
		}
		change := 5.0
		if i == 3 {
			change = 0.5 // too quiet
		}
		tickers[market.Symbol(name)] = market.Ticker{
			Symbol:      market.Symbol(name),
			LastPrice:   10,
			QuoteVolume: volume,
			PctChange:   change,
		}
	}

	// S3 must land inside the top-3 for the volatility stage to matter, so
	// bump it above S2.
	tickers["S3USDT"] = market.Ticker{Symbol: "S3USDT", LastPrice: 10, QuoteVolume: 850, PctChange: 0.5}

	gw := &fakeGateway{
		markets: usdtListings(symbols...),
		tickers: tickers,
	}
	s := NewSelector(gw, "USDT", config.UniverseConfig{
		MinQuoteVolume: 100,
		TopN:           3,
		MinVolatility:  2,
	}, zerolog.Nop())

	got, err := s.Select(context.Background(), gw.markets)
	require.NoError(t, err)
	assert.Equal(t, []market.Symbol{"S0USDT", "S1USDT"}, got)
}

func TestSelectDropsOtherQuoteAssets(t *testing.T) {
	t.Parallel()

	catalog := []exchange.Listing{
		{Symbol: "BTCUSDT", QuoteAsset: "USDT"},
		{Symbol: "ETHBTC", QuoteAsset: "BTC"},
	}
	gw := &fakeGateway{
		markets: catalog,
		tickers: map[market.Symbol]market.Ticker{
			"BTCUSDT": {Symbol: "BTCUSDT", QuoteVolume: 1000, PctChange: 3},
		},
	}
	s := NewSelector(gw, "USDT", config.UniverseConfig{MinQuoteVolume: 1, TopN: 5, MinVolatility: 1}, zerolog.Nop())

	got, err := s.Select(context.Background(), catalog)
	require.NoError(t, err)
	assert.Equal(t, []market.Symbol{"BTCUSDT"}, got)
}

func TestSelectTickerFailureFallsBack(t *testing.T) {
	t.Parallel()

	catalog := usdtListings("BTCUSDT", "ETHUSDT")
	gw := &fakeGateway{
		markets:    catalog,
		tickersErr: errors.New("socket closed"),
	}
	s := NewSelector(gw, "USDT", config.UniverseConfig{MinQuoteVolume: 100, TopN: 1, MinVolatility: 5}, zerolog.Nop())

	// A transient ticker failure must never empty the universe.
	got, err := s.Select(context.Background(), catalog)
	require.NoError(t, err)
	assert.ElementsMatch(t, []market.Symbol{"BTCUSDT", "ETHUSDT"}, got)
}

func TestSelectDelistedSymbolsDropped(t *testing.T) {
	t.Parallel()

	// The stale catalog still lists DOGEUSDT; the fresh fetch does not.
	stale := usdtListings("BTCUSDT", "DOGEUSDT")
	gw := &fakeGateway{
		markets: usdtListings("BTCUSDT"),
		tickers: map[market.Symbol]market.Ticker{
			"BTCUSDT": {Symbol: "BTCUSDT", QuoteVolume: 1000, PctChange: 3},
		},
	}
	s := NewSelector(gw, "USDT", config.UniverseConfig{MinQuoteVolume: 1, TopN: 5, MinVolatility: 1}, zerolog.Nop())

	got, err := s.Select(context.Background(), stale)
	require.NoError(t, err)
	assert.Equal(t, []market.Symbol{"BTCUSDT"}, got)
}

func TestSelectEmptyCatalogIsError(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	s := NewSelector(gw, "USDT", config.UniverseConfig{MinQuoteVolume: 1, TopN: 5, MinVolatility: 1}, zerolog.Nop())

	_, err := s.Select(context.Background(), nil)
	assert.Error(t, err)
}
