// Package universe turns the full exchange catalog into the validated,
// liquidity-and-volatility-filtered symbol set the orchestrator evaluates
// each cycle.
package universe

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/coinpilot/autotrader/config"
	"github.com/coinpilot/autotrader/exchange"
	"github.com/coinpilot/autotrader/market"
)

// Selector applies the filter pipeline: quote asset -> catalog validation ->
// minimum volume -> top-N by volume -> minimum volatility. The filter order
// is fixed; it is not commutative.
type Selector struct {
	gateway    exchange.Gateway
	quoteAsset string
	cfg        config.UniverseConfig
	log        zerolog.Logger
}

func NewSelector(gateway exchange.Gateway, quoteAsset string, cfg config.UniverseConfig, log zerolog.Logger) *Selector {
	return &Selector{
		gateway:    gateway,
		quoteAsset: quoteAsset,
		cfg:        cfg,
		log:        log.With().Str("component", "universe").Logger(),
	}
}

// Select builds the trading universe from the given catalog. Failures after
// the quote-asset cut degrade to the best list produced so far rather than
// aborting: availability over filter precision.
func (s *Selector) Select(ctx context.Context, catalog []exchange.Listing) ([]market.Symbol, error) {
	candidates := s.quoteFilter(catalog)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no %s-quoted symbols in catalog", s.quoteAsset)
	}

	validated := s.validate(ctx, candidates)

	filtered, err := s.liquidityFilter(ctx, validated)
	if err != nil {
		s.log.Warn().Err(err).Int("fallback_size", len(validated)).
			Msg("ticker filter degraded, using unfiltered validated symbols")
		return validated, nil
	}
	return filtered, nil
}

func (s *Selector) quoteFilter(catalog []exchange.Listing) []market.Symbol {
	var out []market.Symbol
	for _, l := range catalog {
		if l.QuoteAsset == s.quoteAsset {
			out = append(out, l.Symbol)
		}
	}
	return out
}

// validate re-checks candidates against a freshly fetched catalog: exchange
// catalogs drift and a delisted symbol would fail every cycle. A fetch
// failure falls back to the unvalidated list.
func (s *Selector) validate(ctx context.Context, candidates []market.Symbol) []market.Symbol {
	fresh, err := s.gateway.FetchMarkets(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("catalog re-fetch failed, skipping symbol validation")
		return candidates
	}

	known := make(map[market.Symbol]struct{}, len(fresh))
	for _, l := range fresh {
		known[l.Symbol] = struct{}{}
	}

	valid := candidates[:0:0]
	for _, sym := range candidates {
		if _, ok := known[sym]; ok {
			valid = append(valid, sym)
		} else {
			s.log.Warn().Str("symbol", string(sym)).Msg("symbol no longer listed, dropping")
		}
	}
	if len(valid) == 0 {
		s.log.Warn().Msg("validation removed every candidate, keeping original list")
		return candidates
	}
	return valid
}

// liquidityFilter applies min volume, then top-N by volume, then the
// volatility threshold.
func (s *Selector) liquidityFilter(ctx context.Context, candidates []market.Symbol) ([]market.Symbol, error) {
	tickers, err := s.gateway.FetchTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}

	var liquid []market.Symbol
	for _, sym := range candidates {
		t, ok := tickers[sym]
		if !ok {
			continue
		}
		if t.QuoteVolume >= s.cfg.MinQuoteVolume {
			liquid = append(liquid, sym)
		}
	}

	sort.Slice(liquid, func(i, j int) bool {
		return tickers[liquid[i]].QuoteVolume > tickers[liquid[j]].QuoteVolume
	})
	if len(liquid) > s.cfg.TopN {
		liquid = liquid[:s.cfg.TopN]
	}

	var final []market.Symbol
	for _, sym := range liquid {
		if math.Abs(tickers[sym].PctChange) >= s.cfg.MinVolatility {
			final = append(final, sym)
		}
	}

	if len(final) == 0 {
		return nil, fmt.Errorf("filters removed every candidate (%d liquid of %d)", len(liquid), len(candidates))
	}

	s.log.Info().Int("candidates", len(candidates)).Int("selected", len(final)).
		Msg("universe selected")
	return final, nil
}
