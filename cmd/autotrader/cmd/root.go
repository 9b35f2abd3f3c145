package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coinpilot/autotrader/config"
)

var rootCmd = &cobra.Command{
	Use:   "autotrader",
	Short: "An automated crypto trading agent driven by a signal classifier",
	Long: `Autotrader polls the exchange for market data, derives a trade signal
from a classifier over technical indicators, sizes orders under risk limits,
and records every executed trade in a durable ledger.

Commands:
  run        start the trading loop
  universe   print the symbol universe the filters would select
  history    dump the recorded trade ledger
  version    print the version`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "", "path to config file (YAML or JSON)")
}

// loadConfig resolves the config file, falling back to defaults when no file
// was given.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(configPath)
}

// newLogger builds the root structured logger every component hangs off.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)
}

// credentials loads API keys from the environment, honoring a local .env
// file when present.
func credentials() (apiKey, secretKey string, err error) {
	_ = godotenv.Load()

	apiKey = os.Getenv("BINANCE_API_KEY")
	secretKey = os.Getenv("BINANCE_SECRET_KEY")
	if apiKey == "" || secretKey == "" {
		return "", "", fmt.Errorf("BINANCE_API_KEY and BINANCE_SECRET_KEY must be set (env or .env)")
	}
	return apiKey, secretKey, nil
}
