package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"

	"github.com/coinpilot/autotrader/market"
)

// Binance is the Gateway implementation over the USDT-margined futures API.
type Binance struct {
	client *futures.Client
	log    zerolog.Logger

	// defaultMinAmount is returned by MinTradeAmount when the exchange
	// info lookup fails.
	defaultMinAmount float64
}

var _ Gateway = (*Binance)(nil)

// NewBinance builds a gateway around authenticated API credentials.
func NewBinance(apiKey, secretKey string, defaultMinAmount float64, log zerolog.Logger) *Binance {
	return &Binance{
		client:           binance.NewFuturesClient(apiKey, secretKey),
		log:              log.With().Str("component", "binance").Logger(),
		defaultMinAmount: defaultMinAmount,
	}
}

func (b *Binance) FetchBalances(ctx context.Context) (map[string]float64, error) {
	acct, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch balances: %w: %w", classify(err), err)
	}

	balances := make(map[string]float64, len(acct.Assets))
	for _, a := range acct.Assets {
		amount, err := strconv.ParseFloat(a.WalletBalance, 64)
		if err != nil {
			b.log.Warn().Str("asset", a.Asset).Str("raw", a.WalletBalance).
				Msg("unparsable wallet balance, skipping asset")
			continue
		}
		balances[a.Asset] = amount
	}
	return balances, nil
}

func (b *Binance) FetchMarkets(ctx context.Context) ([]Listing, error) {
	info, err := b.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w: %w", classify(err), err)
	}

	listings := make([]Listing, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		listings = append(listings, Listing{
			Symbol:     market.Symbol(s.Symbol),
			QuoteAsset: s.QuoteAsset,
		})
	}
	return listings, nil
}

func (b *Binance) FetchTicker(ctx context.Context, symbol market.Symbol) (market.Ticker, error) {
	stats, err := b.client.NewListPriceChangeStatsService().Symbol(string(symbol)).Do(ctx)
	if err != nil {
		return market.Ticker{}, fmt.Errorf("fetch ticker %s: %w: %w", symbol, classify(err), err)
	}
	if len(stats) == 0 {
		return market.Ticker{}, fmt.Errorf("fetch ticker %s: %w: empty response", symbol, ErrBadSymbol)
	}
	return tickerFromStats(stats[0]), nil
}

func (b *Binance) FetchTickers(ctx context.Context) (map[market.Symbol]market.Ticker, error) {
	stats, err := b.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w: %w", classify(err), err)
	}

	tickers := make(map[market.Symbol]market.Ticker, len(stats))
	for _, s := range stats {
		t := tickerFromStats(s)
		tickers[t.Symbol] = t
	}
	return tickers, nil
}

func tickerFromStats(s *futures.PriceChangeStats) market.Ticker {
	last, _ := strconv.ParseFloat(s.LastPrice, 64)
	volume, _ := strconv.ParseFloat(s.QuoteVolume, 64)
	change, _ := strconv.ParseFloat(s.PriceChangePercent, 64)
	return market.Ticker{
		Symbol:      market.Symbol(s.Symbol),
		LastPrice:   last,
		QuoteVolume: volume,
		PctChange:   change,
	}
}

func (b *Binance) FetchOHLCV(ctx context.Context, symbol market.Symbol, timeframe string, limit int) ([]market.Candle, error) {
	klines, err := b.client.NewKlinesService().
		Symbol(string(symbol)).
		Interval(timeframe).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch ohlcv %s: %w: %w", symbol, classify(err), err)
	}

	candles := make([]market.Candle, 0, len(klines))
	for _, k := range klines {
		c, err := candleFromKline(k)
		if err != nil {
			b.log.Warn().Str("symbol", string(symbol)).Err(err).
				Msg("dropping unparsable kline")
			continue
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func candleFromKline(k *futures.Kline) (market.Candle, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("open %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("high %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("low %q: %w", k.Low, err)
	}
	closeV, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("close %q: %w", k.Close, err)
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("volume %q: %w", k.Volume, err)
	}
	return market.Candle{
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closeV,
		Volume: volume,
	}, nil
}

func (b *Binance) PlaceOrder(ctx context.Context, symbol market.Symbol, side Side, amount float64) (OrderResult, error) {
	binSide := futures.SideTypeBuy
	if side == SideSell {
		binSide = futures.SideTypeSell
	}

	order, err := b.client.NewCreateOrderService().
		Symbol(string(symbol)).
		Side(binSide).
		Type(futures.OrderTypeMarket).
		Quantity(strconv.FormatFloat(amount, 'f', -1, 64)).
		Do(ctx)
	if err != nil {
		return OrderResult{}, fmt.Errorf("place order %s %s: %w: %w", side, symbol, classify(err), err)
	}

	fill, _ := strconv.ParseFloat(order.AvgPrice, 64)
	return OrderResult{
		ID:        strconv.FormatInt(order.OrderID, 10),
		FillPrice: fill,
	}, nil
}

func (b *Binance) MinTradeAmount(ctx context.Context, symbol market.Symbol) float64 {
	info, err := b.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		b.log.Warn().Str("symbol", string(symbol)).Err(err).
			Msg("exchange info unavailable, using default min trade amount")
		return b.defaultMinAmount
	}

	for _, s := range info.Symbols {
		if s.Symbol != string(symbol) {
			continue
		}
		lot := s.LotSizeFilter()
		if lot == nil {
			break
		}
		min, err := strconv.ParseFloat(lot.MinQuantity, 64)
		if err != nil || min <= 0 {
			break
		}
		return min
	}

	b.log.Warn().Str("symbol", string(symbol)).
		Msg("no lot size filter for symbol, using default min trade amount")
	return b.defaultMinAmount
}
