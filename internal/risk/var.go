package risk

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

// VaRParams are the estimator's tunable parameters. Confidence levels
// are one-sided; MinStressDays is the smallest stress subsample the
// stress VaR will be estimated on before falling back to the full
// sample.
type VaRParams struct {
	Confidence       float64
	StressConfidence float64
	MinStressDays    int
}

// EstimateVaR computes parametric VaR over the full return sample,
// parametric stress VaR over the stress-day subsample, and CVaR
// (expected shortfall) as the mean loss beyond the normal VaR
// threshold. All figures are monetary and reported as negative values;
// the regime distribution is filled in by the caller.
//
// Guarantees on success: |cvar| >= |var_normal|.
func EstimateVaR(returns, stressReturns []float64, portfolioValue float64, p VaRParams) (model.VaRResult, error) {
	if len(returns) < 2 {
		return model.VaRResult{}, fmt.Errorf("%w: need at least 2 return observations for VaR, got %d",
			apperrors.ErrDataInsufficient, len(returns))
	}
	if portfolioValue <= 0 {
		return model.VaRResult{}, fmt.Errorf("%w: non-positive portfolio value", apperrors.ErrDataInsufficient)
	}

	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 {
		return model.VaRResult{}, fmt.Errorf("%w: zero return variance, VaR undefined", apperrors.ErrDataInsufficient)
	}

	varNormal := parametricVaR(mean, std, portfolioValue, p.Confidence)

	result := model.VaRResult{VaRNormal: varNormal}

	// Stress VaR at the higher confidence level over stress days only.
	// A subsample below the minimum falls back to the full sample and
	// is flagged; a value is never fabricated from too few days.
	if len(stressReturns) >= p.MinStressDays {
		sMean, sStd := stat.MeanStdDev(stressReturns, nil)
		if sStd > 0 {
			result.VaRStress = parametricVaR(sMean, sStd, portfolioValue, p.StressConfidence)
		} else {
			result.VaRStress = parametricVaR(mean, std, portfolioValue, p.StressConfidence)
			result.StressFallback = true
		}
	} else {
		result.VaRStress = parametricVaR(mean, std, portfolioValue, p.StressConfidence)
		result.StressFallback = true
	}

	// CVaR: average monetary loss across days whose loss exceeds the
	// normal VaR threshold. With no exceedances the threshold is the
	// worst historically attained and CVaR degenerates to it.
	tailSum, tailCount := 0.0, 0
	for _, r := range returns {
		loss := portfolioValue * r
		if loss < varNormal {
			tailSum += loss
			tailCount++
		}
	}
	if tailCount > 0 {
		result.CVaR = tailSum / float64(tailCount)
	} else {
		result.CVaR = varNormal
	}

	return result, nil
}

// parametricVaR applies the normal-quantile formula
// value * (mean - z*std), clamped at zero so the figure always reads as
// a loss.
func parametricVaR(mean, std, value, confidence float64) float64 {
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(confidence)
	v := value * (mean - z*std)
	if v > 0 {
		return 0
	}
	return v
}
