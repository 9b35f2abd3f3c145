package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coinpilot/autotrader/exchange"
	"github.com/coinpilot/autotrader/universe"
)

var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Print the symbol universe the current filters select",
	Long: `Run symbol selection once and print the result without trading.

Useful for tuning the volume, top-N and volatility thresholds before
letting the agent loose.`,
	RunE: runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
}

func runUniverse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.Log.Level)

	apiKey, secretKey, err := credentials()
	if err != nil {
		return err
	}
	gateway := exchange.NewBinance(apiKey, secretKey, cfg.Risk.MinTradeAmount, log)

	ctx := context.Background()
	catalog, err := gateway.FetchMarkets(ctx)
	if err != nil {
		return fmt.Errorf("load market catalog: %w", err)
	}

	selector := universe.NewSelector(gateway, cfg.Exchange.QuoteAsset, cfg.Universe, log)
	symbols, err := selector.Select(ctx, catalog)
	if err != nil {
		return fmt.Errorf("select universe: %w", err)
	}

	fmt.Printf("Selected %d symbols (quote %s, min volume %.0f, top %d, min volatility %.1f%%):\n",
		len(symbols), cfg.Exchange.QuoteAsset, cfg.Universe.MinQuoteVolume,
		cfg.Universe.TopN, cfg.Universe.MinVolatility)
	for _, s := range symbols {
		fmt.Printf("  %s\n", s)
	}
	return nil
}
