package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coinpilot/autotrader/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Dump the recorded trade ledger",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.Log.Level)

	store, err := newTradeStore(cfg.Ledger)
	if err != nil {
		return fmt.Errorf("open trade store: %w", err)
	}
	defer store.Close()

	book := ledger.New(store, log)
	trades := book.History()
	if len(trades) == 0 {
		fmt.Println("No trades recorded.")
		return nil
	}

	fmt.Printf("%-28s %-22s %-12s %-6s %14s %14s %s\n",
		"trade_id", "time", "symbol", "side", "price", "amount", "order_id")
	for _, t := range trades {
		fmt.Printf("%-28s %-22s %-12s %-6s %14.8f %14.8f %s\n",
			t.ID, t.Time.UTC().Format(time.RFC3339), t.Symbol, t.Action,
			t.Price, t.Amount, t.OrderID)
	}
	return nil
}
