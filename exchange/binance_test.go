package exchange

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinpilot/autotrader/market"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"transport", errors.New("connection reset"), ErrConnectivity},
		{"bad symbol", &common.APIError{Code: -1121, Message: "Invalid symbol."}, ErrBadSymbol},
		{"insufficient balance", &common.APIError{Code: -2010, Message: "Account has insufficient balance"}, ErrInsufficientFunds},
		{"insufficient margin", &common.APIError{Code: -2019, Message: "Margin is insufficient."}, ErrInsufficientFunds},
		{"other api error", &common.APIError{Code: -1013, Message: "Filter failure"}, ErrRejected},
		{"wrapped api error", fmt.Errorf("do request: %w", &common.APIError{Code: -1121}), ErrBadSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestTickerFromStats(t *testing.T) {
	t.Parallel()

	ticker := tickerFromStats(&futures.PriceChangeStats{
		Symbol:             "BTCUSDT",
		LastPrice:          "64000.50",
		QuoteVolume:        "1234567.89",
		PriceChangePercent: "-2.145",
	})

	assert.Equal(t, market.Ticker{
		Symbol:      "BTCUSDT",
		LastPrice:   64000.50,
		QuoteVolume: 1234567.89,
		PctChange:   -2.145,
	}, ticker)
}

func TestCandleFromKline(t *testing.T) {
	t.Parallel()

	openTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	candle, err := candleFromKline(&futures.Kline{
		OpenTime: openTime.UnixMilli(),
		Open:     "100.1",
		High:     "101.2",
		Low:      "99.3",
		Close:    "100.9",
		Volume:   "42.5",
	})
	require.NoError(t, err)

	assert.Equal(t, market.Candle{
		Time:   openTime,
		Open:   100.1,
		High:   101.2,
		Low:    99.3,
		Close:  100.9,
		Volume: 42.5,
	}, candle)
}

func TestCandleFromKlineRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := candleFromKline(&futures.Kline{
		Open: "100.1", High: "101.2", Low: "99.3", Close: "not a number", Volume: "42.5",
	})
	assert.Error(t, err)
}
