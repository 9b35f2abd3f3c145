// Package ledger is the authoritative in-memory record of current exposure
// per symbol plus the append-only historical trade log. Nothing else mutates
// positions or trade records.
package ledger

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coinpilot/autotrader/market"
)

// Side is the directional exposure held for a symbol.
type Side string

const (
	None  Side = "NONE"
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Position is the current exposure for one symbol. Amount is never negative.
type Position struct {
	Side   Side
	Amount float64
}

// TradeRecord is one executed trade. Immutable once appended.
type TradeRecord struct {
	ID      string // ULID, time-sortable
	Time    time.Time
	Symbol  market.Symbol
	Action  string // order side as sent to the exchange
	Price   float64
	Amount  float64
	OrderID string
}

// Ledger tracks positions under per-symbol mutual exclusion and appends
// trades to a durable store. Symbols are independent: no cross-symbol lock
// contention.
type Ledger struct {
	mu        sync.Mutex // guards the maps, never held across store I/O
	positions map[market.Symbol]*symbolPosition

	histMu  sync.Mutex
	history []TradeRecord
	store   TradeStore

	log zerolog.Logger
}

type symbolPosition struct {
	mu  sync.Mutex
	pos Position
}

// New builds a ledger over the given store and loads prior history. A
// missing or corrupt store starts the ledger empty; it is never fatal.
func New(store TradeStore, log zerolog.Logger) *Ledger {
	l := &Ledger{
		positions: make(map[market.Symbol]*symbolPosition),
		store:     store,
		log:       log.With().Str("component", "ledger").Logger(),
	}

	history, err := store.LoadAll()
	if err != nil {
		l.log.Warn().Err(err).Msg("trade history unreadable, starting from an empty ledger")
		return l
	}
	l.history = history
	l.log.Info().Int("trades", len(history)).Msg("trade history loaded")
	return l
}

func (l *Ledger) forSymbol(symbol market.Symbol) *symbolPosition {
	l.mu.Lock()
	defer l.mu.Unlock()
	sp, ok := l.positions[symbol]
	if !ok {
		sp = &symbolPosition{pos: Position{Side: None}}
		l.positions[symbol] = sp
	}
	return sp
}

// GetPosition returns the current position, defaulting to None/0.
func (l *Ledger) GetPosition(symbol market.Symbol) Position {
	sp := l.forSymbol(symbol)
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.pos
}

// ApplyFill replaces the position for the symbol atomically.
func (l *Ledger) ApplyFill(symbol market.Symbol, side Side, amount float64) {
	sp := l.forSymbol(symbol)
	sp.mu.Lock()
	sp.pos = Position{Side: side, Amount: amount}
	sp.mu.Unlock()
}

// AppendTrade durably appends a trade record. Appends for one symbol happen
// in decision order because the orchestrator serializes per-symbol execution.
func (l *Ledger) AppendTrade(record TradeRecord) error {
	if err := l.store.Append(record); err != nil {
		return err
	}
	l.histMu.Lock()
	l.history = append(l.history, record)
	l.histMu.Unlock()
	return nil
}

// History returns a copy of the trade log in append order.
func (l *Ledger) History() []TradeRecord {
	l.histMu.Lock()
	defer l.histMu.Unlock()
	out := make([]TradeRecord, len(l.history))
	copy(out, l.history)
	return out
}
