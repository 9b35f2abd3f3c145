package indicators

import "fmt"

// RSISeries computes a ratio-based Relative Strength Index over a rolling
// window: 100 − 100/(1+RS) with RS = average gain / average loss across the
// last window price changes.
//
// When the rolling average loss is exactly zero the raw ratio is undefined;
// the value is clamped instead of propagating NaN: 100 when there were gains,
// 50 when the window was completely flat.
//
// Indexes with fewer than window prior changes have no defined value and are
// reported as ok=false.
func RSISeries(values []float64, window int) (rsi []float64, ok []bool, err error) {
	if window <= 0 {
		return nil, nil, fmt.Errorf("window must be positive, got %d", window)
	}
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("empty series")
	}

	rsi = make([]float64, len(values))
	ok = make([]bool, len(values))

	for i := window; i < len(values); i++ {
		var gains, losses float64
		for j := i - window + 1; j <= i; j++ {
			change := values[j] - values[j-1]
			if change > 0 {
				gains += change
			} else {
				losses -= change
			}
		}

		avgGain := gains / float64(window)
		avgLoss := losses / float64(window)

		switch {
		case avgLoss == 0 && avgGain == 0:
			rsi[i] = 50
		case avgLoss == 0:
			rsi[i] = 100
		default:
			rs := avgGain / avgLoss
			rsi[i] = 100 - 100/(1+rs)
		}
		ok[i] = true
	}
	return rsi, ok, nil
}

// RSI returns the latest defined value of RSISeries.
func RSI(values []float64, window int) (float64, error) {
	series, oks, err := RSISeries(values, window)
	if err != nil {
		return 0, err
	}
	last := len(series) - 1
	if !oks[last] {
		return 0, fmt.Errorf("not enough values: need %d, got %d", window+1, len(values))
	}
	return series[last], nil
}
