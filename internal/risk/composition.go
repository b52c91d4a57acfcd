package risk

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

// Risk-bucket labels for the risk composition view, ordered from most
// to least contribution.
const (
	riskBucketHigh   = "High risk"
	riskBucketMedium = "Medium risk"
	riskBucketLow    = "Low risk"
)

// AggregateComposition groups the portfolio's weights by the requested
// dimension and expresses each group as a percentage of total value.
// Sector and asset class come from holding metadata; the risk view
// buckets holdings by the tercile of their absolute VaR contribution.
// Values sum to 100 up to floating rounding.
func AggregateComposition(holdings []model.Holding, components []model.RiskComponent, view model.View) (model.CompositionView, error) {
	if len(components) == 0 {
		return model.CompositionView{}, fmt.Errorf("%w: no risk components to aggregate", apperrors.ErrDataInsufficient)
	}

	meta := make(map[string]model.Holding, len(holdings))
	for _, h := range holdings {
		meta[h.Ticker] = h
	}

	groups := make(map[string]float64)

	switch view {
	case model.ViewSector:
		for _, c := range components {
			groups[labelOrUnknown(meta[c.Ticker].Sector)] += c.Weight * 100
		}
	case model.ViewAssetClass:
		for _, c := range components {
			groups[labelOrUnknown(meta[c.Ticker].AssetClass)] += c.Weight * 100
		}
	case model.ViewRisk:
		bucketByContribution(components, groups)
	default:
		return model.CompositionView{}, fmt.Errorf("%w: %v", apperrors.ErrUnsupportedView, view)
	}

	return sortedView(groups), nil
}

// bucketByContribution assigns each component to a tercile bucket of
// the absolute VaR contribution distribution and accumulates weights.
func bucketByContribution(components []model.RiskComponent, groups map[string]float64) {
	contribs := make([]float64, len(components))
	for i, c := range components {
		contribs[i] = math.Abs(c.VaRContribution)
	}
	sorted := make([]float64, len(contribs))
	copy(sorted, contribs)
	sort.Float64s(sorted)

	lower := stat.Quantile(1.0/3.0, stat.Empirical, sorted, nil)
	upper := stat.Quantile(2.0/3.0, stat.Empirical, sorted, nil)

	for i, c := range components {
		switch {
		case contribs[i] > upper:
			groups[riskBucketHigh] += c.Weight * 100
		case contribs[i] > lower:
			groups[riskBucketMedium] += c.Weight * 100
		default:
			groups[riskBucketLow] += c.Weight * 100
		}
	}
}

// sortedView flattens the group map into parallel label/value slices,
// largest share first with label order as tie-break.
func sortedView(groups map[string]float64) model.CompositionView {
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if groups[labels[i]] != groups[labels[j]] {
			return groups[labels[i]] > groups[labels[j]]
		}
		return labels[i] < labels[j]
	})

	view := model.CompositionView{
		Labels: labels,
		Values: make([]float64, len(labels)),
	}
	for i, label := range labels {
		view.Values[i] = groups[label]
	}
	return view
}

func labelOrUnknown(label string) string {
	if label == "" {
		return "Unknown"
	}
	return label
}
