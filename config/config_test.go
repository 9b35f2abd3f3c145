package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())
}

func TestValidateRiskInvariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"reserve ratio negative", func(c *Config) { c.Risk.ReserveRatio = -0.1 }},
		{"reserve ratio one", func(c *Config) { c.Risk.ReserveRatio = 1 }},
		{"exposure zero", func(c *Config) { c.Risk.MaxExposure = 0 }},
		{"exposure above one", func(c *Config) { c.Risk.MaxExposure = 1.5 }},
		{"min trade amount zero", func(c *Config) { c.Risk.MinTradeAmount = 0 }},
		{"top n zero", func(c *Config) { c.Universe.TopN = 0 }},
		{"bad interval", func(c *Config) { c.Trading.Interval = "soon" }},
		{"bad ledger type", func(c *Config) { c.Ledger.Type = "parquet" }},
		{"missing classifier dir", func(c *Config) { c.Classifier.Dir = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
exchange:
  quote_asset: USDT
  timeframe: 1h
  history_limit: 200
risk:
  reserve_ratio: 0.2
  max_exposure: 0.1
  min_trade_amount: 25
trading:
  interval: 30s
  retrain_interval: 12h
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Exchange.HistoryLimit)
	assert.Equal(t, 0.2, cfg.Risk.ReserveRatio)
	assert.Equal(t, 25.0, cfg.Risk.MinTradeAmount)

	interval, err := cfg.Trading.IntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, "30s", interval.String())

	// Unset sections keep their defaults.
	assert.Equal(t, "csv", cfg.Ledger.Type)
	assert.Equal(t, 10, cfg.Universe.TopN)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("risk:\n  reserve_ratio: 2\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
