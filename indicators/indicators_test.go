package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMASeriesSeedsWithFirstValue(t *testing.T) {
	t.Parallel()

	series, err := EMASeries([]float64{10, 11, 12}, 2)
	require.NoError(t, err)

	// multiplier = 2/3: 10, 10+(11-10)*2/3, ...
	assert.InDelta(t, 10.0, series[0], 1e-12)
	assert.InDelta(t, 10.0+(11.0-10.0)*2.0/3.0, series[1], 1e-12)
}

func TestEMARejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := EMA(nil, 5)
	assert.Error(t, err)

	_, err = EMA([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
}

func TestEMADeterministic(t *testing.T) {
	t.Parallel()

	values := []float64{100, 101.5, 99.25, 103, 102.125, 104, 101, 105.5}
	first, err := EMASeries(values, 3)
	require.NoError(t, err)
	second, err := EMASeries(values, 3)
	require.NoError(t, err)

	// Bit-identical, not just close.
	assert.Equal(t, first, second)
}

func TestMACDSeriesIsFastMinusSlow(t *testing.T) {
	t.Parallel()

	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	macd, signal, err := MACDSeries(values, 3, 6, 2)
	require.NoError(t, err)
	require.Len(t, macd, len(values))
	require.Len(t, signal, len(values))

	fast, err := EMASeries(values, 3)
	require.NoError(t, err)
	slow, err := EMASeries(values, 6)
	require.NoError(t, err)
	for i := range values {
		assert.InDelta(t, fast[i]-slow[i], macd[i], 1e-12)
	}
}

func TestMACDSeriesRejectsInvertedSpans(t *testing.T) {
	t.Parallel()

	_, _, err := MACDSeries([]float64{1, 2, 3}, 6, 3, 2)
	assert.Error(t, err)
}

func TestRSIAllGainsClampsTo100(t *testing.T) {
	t.Parallel()

	// Strictly rising: average loss is zero, ratio undefined, clamp to 100.
	values := []float64{1, 2, 3, 4, 5, 6}
	rsi, err := RSI(values, 3)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)
}

func TestRSIFlatSeriesIs50(t *testing.T) {
	t.Parallel()

	values := []float64{5, 5, 5, 5, 5, 5}
	rsi, err := RSI(values, 3)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rsi)
}

func TestRSIBalancedGainsAndLosses(t *testing.T) {
	t.Parallel()

	// Gains and losses alternate with equal magnitude: RS = 1, RSI = 50.
	values := []float64{10, 11, 10, 11, 10, 11, 10}
	rsi, err := RSI(values, 4)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, rsi, 1e-9)
}

func TestRSIAllLossesIsZero(t *testing.T) {
	t.Parallel()

	values := []float64{6, 5, 4, 3, 2, 1}
	rsi, err := RSI(values, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, rsi, 1e-9)
}

func TestRSIInsufficientHistory(t *testing.T) {
	t.Parallel()

	_, err := RSI([]float64{1, 2, 3}, 14)
	assert.Error(t, err)
}

func TestRSISeriesMarksWarmupUndefined(t *testing.T) {
	t.Parallel()

	values := []float64{1, 2, 3, 4, 5}
	_, ok, err := RSISeries(values, 3)
	require.NoError(t, err)

	assert.False(t, ok[0])
	assert.False(t, ok[2])
	assert.True(t, ok[3])
	assert.True(t, ok[4])
}
