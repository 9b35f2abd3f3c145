// Package config loads and validates the agent's configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration. API credentials are not part
// of this file; they come from the environment (see cmd).
type Config struct {
	Exchange   ExchangeConfig   `json:"exchange" yaml:"exchange"`
	Risk       RiskConfig       `json:"risk" yaml:"risk"`
	Universe   UniverseConfig   `json:"universe" yaml:"universe"`
	Trading    TradingConfig    `json:"trading" yaml:"trading"`
	Ledger     LedgerConfig     `json:"ledger" yaml:"ledger"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// ExchangeConfig describes how market history is pulled.
type ExchangeConfig struct {
	QuoteAsset   string `json:"quote_asset" yaml:"quote_asset"`
	Timeframe    string `json:"timeframe" yaml:"timeframe"`
	HistoryLimit int    `json:"history_limit" yaml:"history_limit"`
}

// RiskConfig bounds every order-sizing computation.
type RiskConfig struct {
	// ReserveRatio is the balance fraction deliberately kept uninvested.
	ReserveRatio float64 `json:"reserve_ratio" yaml:"reserve_ratio"`
	// MaxExposure caps the usable-capital fraction committed to one order.
	MaxExposure float64 `json:"max_exposure" yaml:"max_exposure"`
	// MinTradeAmount is the absolute order notional floor in quote units.
	MinTradeAmount float64 `json:"min_trade_amount" yaml:"min_trade_amount"`
}

// UniverseConfig holds the symbol filter thresholds.
type UniverseConfig struct {
	MinQuoteVolume float64 `json:"min_quote_volume" yaml:"min_quote_volume"`
	TopN           int     `json:"top_n" yaml:"top_n"`
	MinVolatility  float64 `json:"min_volatility" yaml:"min_volatility"`
}

// TradingConfig holds the loop timings as duration strings, e.g. "60s",
// "24h".
type TradingConfig struct {
	Interval        string `json:"interval" yaml:"interval"`
	RetrainInterval string `json:"retrain_interval" yaml:"retrain_interval"`
}

// IntervalDuration parses the per-symbol sleep interval.
func (t TradingConfig) IntervalDuration() (time.Duration, error) {
	return time.ParseDuration(t.Interval)
}

// RetrainIntervalDuration parses the retrain-check interval.
func (t TradingConfig) RetrainIntervalDuration() (time.Duration, error) {
	return time.ParseDuration(t.RetrainInterval)
}

// LedgerConfig selects the durable trade store.
type LedgerConfig struct {
	Type string `json:"type" yaml:"type"` // "csv" or "sqlite"
	Path string `json:"path" yaml:"path"`
}

// ClassifierConfig points at the model artifact directory.
type ClassifierConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// LogConfig sets the zerolog level.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration, in particular the risk invariants every
// sizing computation relies on.
func (c *Config) Validate() error {
	if c.Exchange.QuoteAsset == "" {
		return fmt.Errorf("exchange.quote_asset is required")
	}
	if c.Exchange.Timeframe == "" {
		return fmt.Errorf("exchange.timeframe is required")
	}
	if c.Exchange.HistoryLimit <= 0 {
		return fmt.Errorf("exchange.history_limit must be positive")
	}
	if c.Risk.ReserveRatio < 0 || c.Risk.ReserveRatio >= 1 {
		return fmt.Errorf("risk.reserve_ratio must be in [0, 1)")
	}
	if c.Risk.MaxExposure <= 0 || c.Risk.MaxExposure > 1 {
		return fmt.Errorf("risk.max_exposure must be in (0, 1]")
	}
	if c.Risk.MinTradeAmount <= 0 {
		return fmt.Errorf("risk.min_trade_amount must be positive")
	}
	if c.Universe.MinQuoteVolume < 0 {
		return fmt.Errorf("universe.min_quote_volume must not be negative")
	}
	if c.Universe.TopN <= 0 {
		return fmt.Errorf("universe.top_n must be positive")
	}
	if c.Universe.MinVolatility < 0 {
		return fmt.Errorf("universe.min_volatility must not be negative")
	}
	if d, err := c.Trading.IntervalDuration(); err != nil || d <= 0 {
		return fmt.Errorf("trading.interval must be a positive duration, got %q", c.Trading.Interval)
	}
	if d, err := c.Trading.RetrainIntervalDuration(); err != nil || d <= 0 {
		return fmt.Errorf("trading.retrain_interval must be a positive duration, got %q", c.Trading.RetrainInterval)
	}
	if c.Ledger.Type != "csv" && c.Ledger.Type != "sqlite" {
		return fmt.Errorf("ledger.type must be 'csv' or 'sqlite'")
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("ledger.path is required")
	}
	if c.Classifier.Dir == "" {
		return fmt.Errorf("classifier.dir is required")
	}
	return nil
}

// Default returns a configuration with the defaults the agent was designed
// around: 60s cycles, daily retraining, 10% reserve, 20% exposure cap.
func Default() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			QuoteAsset:   "USDT",
			Timeframe:    "1h",
			HistoryLimit: 100,
		},
		Risk: RiskConfig{
			ReserveRatio:   0.1,
			MaxExposure:    0.2,
			MinTradeAmount: 50,
		},
		Universe: UniverseConfig{
			MinQuoteVolume: 1_000_000,
			TopN:           10,
			MinVolatility:  1.0,
		},
		Trading: TradingConfig{
			Interval:        "60s",
			RetrainInterval: "24h",
		},
		Ledger: LedgerConfig{
			Type: "csv",
			Path: "./trade_history.csv",
		},
		Classifier: ClassifierConfig{
			Dir: "./models",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
