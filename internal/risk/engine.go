package risk

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/config"
	"github.com/quantfolio/risk-engine/internal/model"
	"github.com/quantfolio/risk-engine/internal/provider"
)

// weightTolerance is the floating tolerance within which portfolio
// weights must sum to one.
const weightTolerance = 1e-6

// HoldingsSource is the portfolio store boundary the engine consumes.
// It is read-only from the engine's perspective.
type HoldingsSource interface {
	GetHoldings(portfolioID string) ([]model.Holding, error)
}

// Engine runs the full risk pipeline for a portfolio: snapshot holdings
// and prices, align returns, classify regimes, estimate VaR/CVaR and
// beta, and decompose risk per holding. All numeric stages are pure
// functions over the snapshot, so concurrent runs for different
// portfolios share no mutable state.
type Engine struct {
	holdings HoldingsSource
	prices   provider.PriceHistory
	cfg      config.RiskConfig
	timeout  time.Duration
	log      zerolog.Logger
}

// NewEngine creates a risk engine. timeout bounds each external data
// fetch; expiry surfaces as data-unavailable.
func NewEngine(holdings HoldingsSource, prices provider.PriceHistory, cfg config.RiskConfig, timeout time.Duration, log zerolog.Logger) *Engine {
	return &Engine{
		holdings: holdings,
		prices:   prices,
		cfg:      cfg,
		timeout:  timeout,
		log:      log.With().Str("component", "risk_engine").Logger(),
	}
}

// Compute runs the pipeline for one portfolio as of the given date and
// returns the assembled bundle. The price snapshot is taken once at the
// start; later updates to price data are not visible mid-computation.
func (e *Engine) Compute(ctx context.Context, portfolioID string, asOf time.Time) (model.RiskBundle, error) {
	holdings, err := e.holdings.GetHoldings(portfolioID)
	if err != nil {
		return model.RiskBundle{}, err
	}
	if len(holdings) == 0 {
		return model.RiskBundle{}, fmt.Errorf("%w: portfolio %s has no holdings",
			apperrors.ErrDataInsufficient, portfolioID)
	}

	aligned, err := e.snapshotReturns(ctx, holdings, asOf)
	if err != nil {
		return model.RiskBundle{}, err
	}

	warnings := []string{}
	for _, ticker := range aligned.Insufficient {
		warnings = append(warnings, fmt.Sprintf("ticker %s excluded: insufficient price history", ticker))
	}

	totalValue, weights, err := marketValueWeights(holdings, aligned)
	if err != nil {
		return model.RiskBundle{}, err
	}

	portfolioReturns := weightedReturns(aligned, weights)

	regimes := ClassifyRegimes(portfolioReturns, e.cfg.VolatilityWindow, e.cfg.StressPercentile)
	if len(regimes.Labels) == 0 {
		warnings = append(warnings, fmt.Sprintf(
			"insufficient history for regime classification: %d observations, window is %d",
			len(portfolioReturns), e.cfg.VolatilityWindow))
	}

	varResult, err := EstimateVaR(portfolioReturns, regimes.StressReturns, totalValue, VaRParams{
		Confidence:       e.cfg.VaRConfidence,
		StressConfidence: e.cfg.StressConfidence,
		MinStressDays:    e.cfg.MinStressDays,
	})
	if err != nil {
		return model.RiskBundle{}, err
	}
	varResult.RegimeDistribution = regimes.Distribution

	betaResult, betaWarnings, err := EstimateBeta(portfolioReturns, aligned.Benchmark, e.cfg.BetaWindow)
	if err != nil {
		return model.RiskBundle{}, err
	}
	warnings = append(warnings, betaWarnings...)

	components, err := DecomposeVaR(aligned, weights, varResult.VaRNormal)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSingularCovariance) {
			return model.RiskBundle{}, err
		}
		e.log.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("Risk decomposition degenerate")
		warnings = append(warnings, "risk decomposition fell back to proportional weights: degenerate covariance")
	}

	bundle := model.RiskBundle{
		PortfolioID:   portfolioID,
		AsOf:          asOf.UTC().Format("2006-01-02"),
		TotalValue:    totalValue,
		Beta:          betaResult,
		VaRMetrics:    varResult,
		VaRComponents: components,
		Warnings:      warnings,
		LatestUpdate:  time.Now().UTC(),
	}

	e.log.Info().
		Str("portfolio_id", portfolioID).
		Str("as_of", bundle.AsOf).
		Float64("total_value", totalValue).
		Float64("var_normal", varResult.VaRNormal).
		Float64("beta", betaResult.Beta).
		Int("holdings", len(components)).
		Msg("Computed risk bundle")

	return bundle, nil
}

// Composition builds the requested composition view from a computed
// bundle and the portfolio's holding metadata.
func (e *Engine) Composition(bundle model.RiskBundle, view model.View) (model.CompositionView, error) {
	holdings, err := e.holdings.GetHoldings(bundle.PortfolioID)
	if err != nil {
		return model.CompositionView{}, err
	}
	return AggregateComposition(holdings, bundle.VaRComponents, view)
}

// snapshotReturns fetches price history for every holding plus the
// benchmark under the fetch timeout and aligns the return series.
// Alignment only requires enough points for a return series to exist at
// all; short histories degrade downstream (empty rolling betas, regime
// warm-up exclusion) instead of failing the whole portfolio.
func (e *Engine) snapshotReturns(ctx context.Context, holdings []model.Holding, asOf time.Time) (AlignedReturns, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// Trading-day lookback widened to calendar days, with slack for
	// holidays.
	start := asOf.AddDate(0, 0, -(e.cfg.LookbackDays*7/5 + 10))

	prices := make(map[string]model.PriceSeries, len(holdings))
	for _, h := range holdings {
		series, err := e.prices.GetDailyPrices(fetchCtx, h.Ticker, start, asOf)
		if err != nil {
			if errors.Is(err, apperrors.ErrDataUnavailable) {
				// Reported by the builder as insufficient rather than
				// failing the whole portfolio.
				e.log.Warn().Err(err).Str("ticker", h.Ticker).Msg("Price fetch failed")
				prices[h.Ticker] = model.PriceSeries{Ticker: h.Ticker}
				continue
			}
			return AlignedReturns{}, err
		}
		prices[h.Ticker] = series
	}

	benchmark, err := e.prices.GetDailyPrices(fetchCtx, e.cfg.BenchmarkTicker, start, asOf)
	if err != nil {
		return AlignedReturns{}, fmt.Errorf("benchmark %s: %w", e.cfg.BenchmarkTicker, err)
	}

	return BuildAlignedReturns(prices, benchmark, 2)
}

// marketValueWeights derives market-value weights from quantities and
// the latest aligned close prices. The weights of the usable tickers
// are normalized over their combined value and validated to sum to one
// within tolerance.
func marketValueWeights(holdings []model.Holding, aligned AlignedReturns) (float64, map[string]float64, error) {
	totalValue := 0.0
	values := make(map[string]float64, len(aligned.Series))
	for _, h := range holdings {
		closePrice, ok := aligned.LatestClose[h.Ticker]
		if !ok {
			continue
		}
		value := h.Quantity * closePrice
		values[h.Ticker] = value
		totalValue += value
	}

	if totalValue <= 0 {
		return 0, nil, fmt.Errorf("%w: portfolio market value is zero", apperrors.ErrDataInsufficient)
	}

	weights := make(map[string]float64, len(values))
	sum := 0.0
	for ticker, value := range values {
		weights[ticker] = value / totalValue
		sum += weights[ticker]
	}
	if math.Abs(sum-1) > weightTolerance {
		return 0, nil, fmt.Errorf("portfolio weights sum to %v, expected 1", sum)
	}

	return totalValue, weights, nil
}

// weightedReturns collapses the per-ticker return series into a single
// portfolio return series using fixed current weights.
func weightedReturns(aligned AlignedReturns, weights map[string]float64) []float64 {
	out := make([]float64, len(aligned.Dates))
	for ticker, series := range aligned.Series {
		w := weights[ticker]
		for i, r := range series {
			out[i] += w * r
		}
	}
	return out
}
