package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

// minPortfolioVariance is the threshold below which the covariance
// structure is treated as degenerate and the decomposition falls back
// to proportional-weight allocation.
const minPortfolioVariance = 1e-18

// DecomposeVaR attributes portfolio VaR to individual holdings via
// Euler decomposition: the marginal variance contribution of holding i
// is w_i * (Σw)_i, scaled by portfolioVaR / portfolioVariance so the
// contributions sum exactly to the portfolio VaR.
//
// On a degenerate covariance matrix (zero portfolio variance) the
// allocation falls back to plain proportional weights and the returned
// error wraps apperrors.ErrSingularCovariance while still delivering a
// usable component list; callers log and flag, they do not abort.
func DecomposeVaR(aligned AlignedReturns, weights map[string]float64, portfolioVaR float64) ([]model.RiskComponent, error) {
	tickers := aligned.Tickers()
	n := len(tickers)
	if n == 0 {
		return nil, fmt.Errorf("%w: no return series to decompose", apperrors.ErrDataInsufficient)
	}

	obs := len(aligned.Dates)
	if obs < 2 {
		return nil, fmt.Errorf("%w: need at least 2 observations for covariance, got %d",
			apperrors.ErrDataInsufficient, obs)
	}

	components := make([]model.RiskComponent, n)
	for i, ticker := range tickers {
		components[i] = model.RiskComponent{
			Ticker:     ticker,
			Volatility: stat.StdDev(aligned.Series[ticker], nil),
			Weight:     weights[ticker],
		}
	}

	// Sample covariance of the aligned return matrix (rows are days,
	// columns are tickers).
	data := make([]float64, obs*n)
	for j, ticker := range tickers {
		series := aligned.Series[ticker]
		for i := 0; i < obs; i++ {
			data[i*n+j] = series[i]
		}
	}
	cov := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(cov, mat.NewDense(obs, n, data), nil)

	w := mat.NewVecDense(n, nil)
	for i, ticker := range tickers {
		w.SetVec(i, weights[ticker])
	}

	var sigmaW mat.VecDense
	sigmaW.MulVec(cov, w)
	portfolioVariance := mat.Dot(w, &sigmaW)

	if portfolioVariance < minPortfolioVariance || math.IsNaN(portfolioVariance) {
		for i := range components {
			components[i].VaRContribution = components[i].Weight * portfolioVaR
		}
		return components, fmt.Errorf("%w: portfolio variance %v, using proportional-weight fallback",
			apperrors.ErrSingularCovariance, portfolioVariance)
	}

	scale := portfolioVaR / portfolioVariance
	for i := range components {
		marginal := w.AtVec(i) * sigmaW.AtVec(i)
		components[i].VaRContribution = marginal * scale
	}

	return components, nil
}
