package indicators

import "fmt"

// MACDSeries computes the convergence-divergence line EMA(short)−EMA(long)
// and its signal line (EMA of the MACD line over signalSpan) at every index.
func MACDSeries(values []float64, shortSpan, longSpan, signalSpan int) (macd, signal []float64, err error) {
	if shortSpan >= longSpan {
		return nil, nil, fmt.Errorf("short span %d must be below long span %d", shortSpan, longSpan)
	}

	fast, err := EMASeries(values, shortSpan)
	if err != nil {
		return nil, nil, err
	}
	slow, err := EMASeries(values, longSpan)
	if err != nil {
		return nil, nil, err
	}

	macd = make([]float64, len(values))
	for i := range values {
		macd[i] = fast[i] - slow[i]
	}

	signal, err = EMASeries(macd, signalSpan)
	if err != nil {
		return nil, nil, err
	}
	return macd, signal, nil
}
