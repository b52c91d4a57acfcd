package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

// betaBandZ is the two-sided 95% normal quantile used for the
// confidence band around the full-sample slope.
const betaBandZ = 1.96

// EstimateBeta regresses portfolio returns on benchmark returns.
//
// The headline beta, R² and confidence band come from a single
// regression over the entire sample; the band (slope ± 1.96 standard
// errors) is applied uniformly to the rolling series rather than
// re-estimated per window. RollingBetas holds the trailing window-day
// OLS slope for each day with a full window behind it. When the history
// is shorter than the window, RollingBetas is empty and a warning is
// added.
//
// The downside beta is restricted to days with a negative benchmark
// return and is absent (nil) when fewer than two such days exist.
func EstimateBeta(portfolio, benchmark []float64, window int) (model.BetaResult, []string, error) {
	n := len(portfolio)
	if n != len(benchmark) {
		return model.BetaResult{}, nil, fmt.Errorf("mismatched series lengths: portfolio %d, benchmark %d", n, len(benchmark))
	}
	if n < 2 {
		return model.BetaResult{}, nil, fmt.Errorf("%w: need at least 2 observations for beta, got %d",
			apperrors.ErrDataInsufficient, n)
	}
	if stat.Variance(benchmark, nil) == 0 {
		return model.BetaResult{}, nil, fmt.Errorf("%w: zero benchmark variance, beta undefined",
			apperrors.ErrDataInsufficient)
	}

	warnings := []string{}

	alpha, beta := stat.LinearRegression(benchmark, portfolio, nil, false)

	rsq := stat.RSquared(benchmark, portfolio, nil, alpha, beta)
	// Guard against tiny numerical excursions outside [0, 1].
	rsq = math.Max(0, math.Min(1, rsq))

	se := slopeStdError(benchmark, portfolio, alpha, beta)

	result := model.BetaResult{
		Beta:     beta,
		RSquared: rsq,
		Confidence: model.ConfidenceBand{
			Low:  beta - betaBandZ*se,
			High: beta + betaBandZ*se,
		},
		RollingBetas: []float64{},
	}

	if n < window {
		warnings = append(warnings, fmt.Sprintf(
			"insufficient history for rolling beta: %d observations, window is %d", n, window))
	} else {
		result.RollingBetas = make([]float64, 0, n-window+1)
		for t := window - 1; t < n; t++ {
			x := benchmark[t-window+1 : t+1]
			y := portfolio[t-window+1 : t+1]
			if stat.Variance(x, nil) == 0 {
				// Flat benchmark window: carry the full-sample slope
				// rather than emitting an undefined value.
				result.RollingBetas = append(result.RollingBetas, beta)
				continue
			}
			_, slope := stat.LinearRegression(x, y, nil, false)
			result.RollingBetas = append(result.RollingBetas, slope)
		}
	}

	// Downside beta over negative-benchmark days only.
	downX, downY := []float64{}, []float64{}
	for i, b := range benchmark {
		if b < 0 {
			downX = append(downX, b)
			downY = append(downY, portfolio[i])
		}
	}
	if len(downX) >= 2 && stat.Variance(downX, nil) > 0 {
		_, down := stat.LinearRegression(downX, downY, nil, false)
		result.DownsideBeta = &down
	} else {
		warnings = append(warnings, "downside beta undefined: fewer than 2 negative benchmark days")
	}

	return result, warnings, nil
}

// slopeStdError computes the OLS standard error of the regression
// slope. With only two points the residual degrees of freedom are zero
// and the error is reported as zero, collapsing the band onto the
// slope.
func slopeStdError(x, y []float64, alpha, beta float64) float64 {
	n := len(x)
	if n <= 2 {
		return 0
	}

	meanX := stat.Mean(x, nil)
	sse, sxx := 0.0, 0.0
	for i := range x {
		resid := y[i] - (alpha + beta*x[i])
		sse += resid * resid
		dx := x[i] - meanX
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0
	}

	return math.Sqrt(sse / float64(n-2) / sxx)
}
