package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coinpilot/autotrader/classifier"
	"github.com/coinpilot/autotrader/config"
	"github.com/coinpilot/autotrader/engine"
	"github.com/coinpilot/autotrader/exchange"
	"github.com/coinpilot/autotrader/features"
	"github.com/coinpilot/autotrader/ledger"
	"github.com/coinpilot/autotrader/trader"
	"github.com/coinpilot/autotrader/universe"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the trading loop",
	Long: `Start the trading agent: select the symbol universe, then poll, predict
and execute every interval until interrupted.

Credentials come from BINANCE_API_KEY / BINANCE_SECRET_KEY (a local .env file
is honored). Everything else comes from the config file.

Example:
  autotrader run -f config.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.Log.Level)

	apiKey, secretKey, err := credentials()
	if err != nil {
		return err
	}

	interval, err := cfg.Trading.IntervalDuration()
	if err != nil {
		return fmt.Errorf("trading interval: %w", err)
	}
	retrainInterval, err := cfg.Trading.RetrainIntervalDuration()
	if err != nil {
		return fmt.Errorf("retrain interval: %w", err)
	}

	gateway := exchange.NewBinance(apiKey, secretKey, cfg.Risk.MinTradeAmount, log)

	store, err := newTradeStore(cfg.Ledger)
	if err != nil {
		return fmt.Errorf("open trade store: %w", err)
	}
	defer store.Close()
	book := ledger.New(store, log)

	modelStore, err := classifier.NewStore(cfg.Classifier.Dir)
	if err != nil {
		return fmt.Errorf("open model store: %w", err)
	}
	model := classifier.NewCentroid(modelStore, log)

	t := trader.New(
		gateway,
		universe.NewSelector(gateway, cfg.Exchange.QuoteAsset, cfg.Universe, log),
		features.NewEngine(features.Config{}),
		model,
		engine.New(gateway, book, cfg.Risk, cfg.Exchange.QuoteAsset, log),
		trader.Config{
			Timeframe:       cfg.Exchange.Timeframe,
			HistoryLimit:    cfg.Exchange.HistoryLimit,
			Interval:        interval,
			RetrainInterval: retrainInterval,
		},
		log,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := t.Start(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("shut down cleanly")
			return nil
		}
		log.Error().Err(err).Msg("trading agent failed to start")
		return err
	}
	return nil
}

func newTradeStore(cfg config.LedgerConfig) (ledger.TradeStore, error) {
	if cfg.Type == "sqlite" {
		return ledger.NewSQLite(cfg.Path)
	}
	return ledger.NewCSV(cfg.Path)
}
