package ledger

// TradeStore is the durable backing for the trade log: O(1) append plus a
// full load at startup.
type TradeStore interface {
	Append(TradeRecord) error
	LoadAll() ([]TradeRecord, error)
	Close() error
}
