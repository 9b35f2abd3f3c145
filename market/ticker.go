package market

// Ticker is a 24h rolling statistics snapshot for one symbol.
type Ticker struct {
	Symbol      Symbol
	LastPrice   float64
	QuoteVolume float64 // 24h volume in the quote asset
	PctChange   float64 // 24h price change in percent, signed
}
