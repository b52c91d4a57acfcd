package risk

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/quantfolio/risk-engine/internal/model"
)

// RegimeLabel tags a trading day as calm or turbulent.
type RegimeLabel int

const (
	// RegimeNormal marks a day whose trailing realized volatility sits
	// at or below the stress threshold.
	RegimeNormal RegimeLabel = iota
	// RegimeStress marks a day whose trailing realized volatility
	// exceeds the stress threshold.
	RegimeStress
)

// RegimeResult is the output of the regime classifier. Labels cover
// only days with a full trailing volatility window behind them; warm-up
// days are excluded from both the distribution and the tally.
type RegimeResult struct {
	// Labels for days windowSize-1 .. n-1 of the return series, in order.
	Labels []RegimeLabel
	// StressReturns are the portfolio returns of the stress-labeled
	// days, feeding the stress VaR estimate.
	StressReturns []float64
	// Distribution is the share of labeled days per regime.
	Distribution model.RegimeDistribution
}

// ClassifyRegimes labels each trading day Normal or Stress from the
// trailing window-day standard deviation of portfolio returns. A day is
// Stress when its rolling volatility exceeds the given percentile of
// the full rolling-volatility distribution.
//
// When fewer than window+1 observations exist no day can be labeled;
// the distribution then degenerates to all-Normal and the caller is
// expected to surface the thin history separately.
func ClassifyRegimes(returns []float64, window int, percentile float64) RegimeResult {
	n := len(returns)
	if window < 2 || n < window {
		return RegimeResult{
			Labels:        []RegimeLabel{},
			StressReturns: []float64{},
			Distribution:  model.RegimeDistribution{Normal: 1, Stress: 0},
		}
	}

	// Rolling realized volatility, one value per labelable day.
	vols := make([]float64, 0, n-window+1)
	for t := window - 1; t < n; t++ {
		vols = append(vols, stat.StdDev(returns[t-window+1:t+1], nil))
	}

	sorted := make([]float64, len(vols))
	copy(sorted, vols)
	sort.Float64s(sorted)
	threshold := stat.Quantile(percentile, stat.Empirical, sorted, nil)

	labels := make([]RegimeLabel, len(vols))
	stressReturns := []float64{}
	stressCount := 0
	for i, vol := range vols {
		if vol > threshold {
			labels[i] = RegimeStress
			stressCount++
			stressReturns = append(stressReturns, returns[window-1+i])
		}
	}

	labeled := float64(len(labels))
	return RegimeResult{
		Labels:        labels,
		StressReturns: stressReturns,
		Distribution: model.RegimeDistribution{
			Normal: (labeled - float64(stressCount)) / labeled,
			Stress: float64(stressCount) / labeled,
		},
	}
}
