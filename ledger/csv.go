package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/coinpilot/autotrader/market"
)

var csvHeader = []string{"trade_id", "timestamp", "symbol", "action", "price", "amount", "order_id"}

// CSVStore appends trade records to a CSV file incrementally; it never
// rewrites earlier rows.
type CSVStore struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

var _ TradeStore = (*CSVStore)(nil)

// NewCSV opens (or creates) the trade file for appending. The header is
// written only when the file is new.
func NewCSV(path string) (*CSVStore, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trade file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat trade file: %w", err)
	}

	writer := csv.NewWriter(file)
	if stat.Size() == 0 {
		if err := writer.Write(csvHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &CSVStore{path: path, file: file, writer: writer}, nil
}

func (s *CSVStore) Append(t TradeRecord) error {
	err := s.writer.Write([]string{
		t.ID,
		t.Time.UTC().Format(time.RFC3339),
		string(t.Symbol),
		t.Action,
		f(t.Price),
		f(t.Amount),
		t.OrderID,
	})
	if err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

// LoadAll reads the whole file back. Malformed rows are skipped, not fatal:
// a partially corrupt history should not stop trading.
func (s *CSVStore) LoadAll() ([]TradeRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open trade file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var records []TradeRecord
	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trade file: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == csvHeader[0] {
				continue
			}
		}
		record, ok := parseRow(row)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRow(row []string) (TradeRecord, bool) {
	if len(row) != len(csvHeader) {
		return TradeRecord{}, false
	}
	ts, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return TradeRecord{}, false
	}
	price, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return TradeRecord{}, false
	}
	amount, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return TradeRecord{}, false
	}
	return TradeRecord{
		ID:      row[0],
		Time:    ts,
		Symbol:  market.Symbol(row[2]),
		Action:  row[3],
		Price:   price,
		Amount:  amount,
		OrderID: row[6],
	}, true
}

func (s *CSVStore) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return err
	}
	return s.file.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 8, 64)
}
