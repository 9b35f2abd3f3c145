package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/coinpilot/autotrader/market"
)

// SQLiteStore keeps the trade log in a SQLite database. ULID primary keys
// are time-sortable, so insertion order and key order agree.
type SQLiteStore struct {
	db *sql.DB
}

var _ TradeStore = (*SQLiteStore)(nil)

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trade db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(t TradeRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO trades
		(trade_id, timestamp, symbol, action, price, amount, order_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Time.UTC(), string(t.Symbol), t.Action, t.Price, t.Amount, t.OrderID,
	)
	return err
}

func (s *SQLiteStore) LoadAll() ([]TradeRecord, error) {
	rows, err := s.db.Query(`
		SELECT trade_id, timestamp, symbol, action, price, amount, order_id
		FROM trades ORDER BY trade_id`)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	defer rows.Close()

	var records []TradeRecord
	for rows.Next() {
		var r TradeRecord
		var symbol string
		var ts time.Time
		if err := rows.Scan(&r.ID, &ts, &symbol, &r.Action, &r.Price, &r.Amount, &r.OrderID); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		r.Time = ts.UTC()
		r.Symbol = market.Symbol(symbol)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
