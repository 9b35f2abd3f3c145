// Package engine turns a signal plus current position into an order under
// the risk limits, and keeps the ledger in lockstep with what the exchange
// actually accepted: a trade record exists if and only if the order was
// accepted.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coinpilot/autotrader/config"
	"github.com/coinpilot/autotrader/exchange"
	"github.com/coinpilot/autotrader/id"
	"github.com/coinpilot/autotrader/ledger"
	"github.com/coinpilot/autotrader/market"
)

// Action is what the engine decided to do for one symbol this cycle.
type Action int

const (
	NoAction Action = iota
	OpenLong
	OpenShort
	AverageDownLong
)

func (a Action) String() string {
	switch a {
	case OpenLong:
		return "OPEN_LONG"
	case OpenShort:
		return "OPEN_SHORT"
	case AverageDownLong:
		return "AVERAGE_DOWN_LONG"
	default:
		return "NONE"
	}
}

// Decide maps signal and current side onto an action. Opening in the
// direction already held is a no-op, so repeated BUY signals while long
// never stack entries. AverageDown only adds to an existing long.
func Decide(signal market.Signal, position ledger.Position) Action {
	switch signal {
	case market.Buy:
		if position.Side == ledger.Long {
			return NoAction
		}
		return OpenLong
	case market.Sell:
		if position.Side == ledger.Short {
			return NoAction
		}
		return OpenShort
	case market.AverageDown:
		if position.Side == ledger.Long {
			return AverageDownLong
		}
		return NoAction
	default:
		return NoAction
	}
}

// Engine executes decided actions.
type Engine struct {
	gateway    exchange.Gateway
	ledger     *ledger.Ledger
	risk       config.RiskConfig
	quoteAsset string
	ids        *id.Generator
	log        zerolog.Logger
}

func New(gateway exchange.Gateway, l *ledger.Ledger, risk config.RiskConfig, quoteAsset string, log zerolog.Logger) *Engine {
	return &Engine{
		gateway:    gateway,
		ledger:     l,
		risk:       risk,
		quoteAsset: quoteAsset,
		ids:        id.NewGenerator(),
		log:        log.With().Str("component", "engine").Logger(),
	}
}

// Position reports the ledger's current exposure for the symbol.
func (e *Engine) Position(symbol market.Symbol) ledger.Position {
	return e.ledger.GetPosition(symbol)
}

// OrderSize computes the submitted amount in base units: exposure-capped
// size, clamped up to the absolute minimum-notional floor. The floor takes
// precedence, so the result can exceed the nominal exposure cap.
func OrderSize(usable, lastPrice float64, risk config.RiskConfig) float64 {
	amount := (usable * risk.MaxExposure) / lastPrice
	floor := risk.MinTradeAmount / lastPrice
	if amount < floor {
		amount = floor
	}
	return amount
}

// Execute submits the order for the action and updates ledger state only on
// acceptance. A nil return with no order means the action was aborted by a
// pre-trade check; those are logged, not errors.
func (e *Engine) Execute(ctx context.Context, symbol market.Symbol, action Action) error {
	if action == NoAction {
		return nil
	}

	balances, err := e.gateway.FetchBalances(ctx)
	if err != nil {
		return fmt.Errorf("execute %s %s: %w", action, symbol, err)
	}
	usable := balances[e.quoteAsset] * (1 - e.risk.ReserveRatio)
	if usable < e.risk.MinTradeAmount {
		e.log.Warn().Str("symbol", string(symbol)).
			Float64("usable", usable).Float64("min", e.risk.MinTradeAmount).
			Msg("usable capital below minimum trade amount, aborting")
		return nil
	}

	ticker, err := e.gateway.FetchTicker(ctx, symbol)
	if err != nil {
		return fmt.Errorf("execute %s %s: %w", action, symbol, err)
	}
	if ticker.LastPrice <= 0 {
		e.log.Warn().Str("symbol", string(symbol)).Float64("price", ticker.LastPrice).
			Msg("last price unavailable, aborting")
		return nil
	}

	amount := OrderSize(usable, ticker.LastPrice, e.risk)

	// The exchange rejects quantities under the symbol's lot minimum, so the
	// submitted size clamps up to it the same way it clamps to our own floor.
	if lotMin := e.gateway.MinTradeAmount(ctx, symbol); amount < lotMin {
		e.log.Warn().Str("symbol", string(symbol)).
			Float64("amount", amount).Float64("lot_min", lotMin).
			Msg("sized below exchange lot minimum, clamping up")
		amount = lotMin
	}

	side := exchange.SideBuy
	if action == OpenShort {
		side = exchange.SideSell
	}

	order, err := e.gateway.PlaceOrder(ctx, symbol, side, amount)
	if err != nil {
		// No silent partial state: the ledger only changes on acceptance.
		return fmt.Errorf("execute %s %s: %w", action, symbol, err)
	}

	position := e.ledger.GetPosition(symbol)
	switch action {
	case OpenLong:
		e.ledger.ApplyFill(symbol, ledger.Long, amount)
	case OpenShort:
		e.ledger.ApplyFill(symbol, ledger.Short, amount)
	case AverageDownLong:
		e.ledger.ApplyFill(symbol, ledger.Long, position.Amount+amount)
	}

	price := order.FillPrice
	if price <= 0 {
		price = ticker.LastPrice
	}
	record := ledger.TradeRecord{
		ID:      e.ids.New(),
		Time:    time.Now().UTC(),
		Symbol:  symbol,
		Action:  string(side),
		Price:   price,
		Amount:  amount,
		OrderID: order.ID,
	}
	if err := e.ledger.AppendTrade(record); err != nil {
		// The order went through; losing the durable append must be loud but
		// cannot undo the fill.
		e.log.Error().Err(err).Str("symbol", string(symbol)).Str("order_id", order.ID).
			Msg("trade executed but ledger append failed")
		return nil
	}

	e.log.Info().Str("symbol", string(symbol)).Str("action", action.String()).
		Float64("amount", amount).Float64("price", price).Str("order_id", order.ID).
		Msg("order executed")
	return nil
}
