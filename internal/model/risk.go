package model

import "time"

// RegimeDistribution is the share of labeled trading days classified as
// calm versus turbulent. The two fractions always sum to 1.
type RegimeDistribution struct {
	Normal float64 `json:"normal"`
	Stress float64 `json:"stress"`
}

// VaRResult holds tail-risk metrics for a portfolio. All VaR figures are
// negative values representing losses in portfolio currency.
type VaRResult struct {
	VaRNormal float64 `json:"var_normal"`
	VaRStress float64 `json:"var_stress"`
	CVaR      float64 `json:"cvar"`
	// StressFallback is set when fewer stress days than the configured
	// minimum were available and the stress VaR was computed over the
	// full sample instead.
	StressFallback     bool               `json:"stress_fallback,omitempty"`
	RegimeDistribution RegimeDistribution `json:"regime_distribution"`
}

// ConfidenceBand is a symmetric interval around the headline beta.
type ConfidenceBand struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// BetaResult holds the market-sensitivity metrics of a portfolio versus
// its benchmark. RollingBetas is ordered by date and covers only days
// with a full trailing window behind them; it is empty when the history
// is shorter than the window.
//
// The confidence band is estimated once from the full-sample regression
// (slope plus/minus 1.96 standard errors) and applied uniformly across
// the rolling series rather than re-estimated per window.
type BetaResult struct {
	Beta         float64        `json:"beta"`
	RollingBetas []float64      `json:"rolling_betas"`
	Confidence   ConfidenceBand `json:"confidence"`
	RSquared     float64        `json:"r_squared"`
	// DownsideBeta is nil when fewer than two negative-benchmark days
	// exist in the sample.
	DownsideBeta *float64 `json:"downside_beta"`
}

// RiskComponent attributes a share of portfolio VaR to one holding.
// Contributions across all holdings sum to the portfolio VaR.
type RiskComponent struct {
	Ticker          string  `json:"ticker"`
	Volatility      float64 `json:"volatility"`
	VaRContribution float64 `json:"var_contribution"`
	Weight          float64 `json:"weight"`
}

// CompositionView is a grouped percentage breakdown of portfolio value.
// Labels and Values are parallel slices; values sum to 100 up to
// rounding.
type CompositionView struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// RiskBundle is the full result of one engine run for a portfolio as of
// a given date. It is cached and replaced wholesale, never patched.
type RiskBundle struct {
	PortfolioID   string          `json:"portfolio_id"`
	AsOf          string          `json:"as_of"` // YYYY-MM-DD
	TotalValue    float64         `json:"total_value"`
	Beta          BetaResult      `json:"beta"`
	VaRMetrics    VaRResult       `json:"var_metrics"`
	VaRComponents []RiskComponent `json:"var_components"`
	// Warnings carries degraded-computation notices (insufficient
	// history for some tickers, decomposition fallback, and similar).
	Warnings     []string  `json:"warnings,omitempty"`
	LatestUpdate time.Time `json:"latest_update"`
}
