package risk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

func TestAggregateComposition(t *testing.T) {
	holdings := []model.Holding{
		{Ticker: "AAA", Sector: "Technology", AssetClass: "Equity"},
		{Ticker: "BBB", Sector: "Technology", AssetClass: "Equity"},
		{Ticker: "CCC", Sector: "Energy", AssetClass: "Commodity"},
	}
	components := []model.RiskComponent{
		{Ticker: "AAA", Weight: 0.5, VaRContribution: -900},
		{Ticker: "BBB", Weight: 0.3, VaRContribution: -80},
		{Ticker: "CCC", Weight: 0.2, VaRContribution: -20},
	}

	t.Run("sector view groups weights and sums to 100", func(t *testing.T) {
		view, err := AggregateComposition(holdings, components, model.ViewSector)
		require.NoError(t, err)

		require.Equal(t, []string{"Technology", "Energy"}, view.Labels)
		assert.InDelta(t, 80, view.Values[0], 1e-9)
		assert.InDelta(t, 20, view.Values[1], 1e-9)
		assert.InDelta(t, 100, sum(view.Values), 1e-9)
	})

	t.Run("asset class view groups by holding metadata", func(t *testing.T) {
		view, err := AggregateComposition(holdings, components, model.ViewAssetClass)
		require.NoError(t, err)

		require.Equal(t, []string{"Equity", "Commodity"}, view.Labels)
		assert.InDelta(t, 80, view.Values[0], 1e-9)
		assert.InDelta(t, 100, sum(view.Values), 1e-9)
	})

	t.Run("risk view buckets by VaR contribution terciles", func(t *testing.T) {
		view, err := AggregateComposition(holdings, components, model.ViewRisk)
		require.NoError(t, err)

		assert.InDelta(t, 100, sum(view.Values), 1e-9)

		// The dominant contributor lands in the high bucket.
		byLabel := map[string]float64{}
		for i, label := range view.Labels {
			byLabel[label] = view.Values[i]
		}
		assert.InDelta(t, 50, byLabel["High risk"], 1e-9)
	})

	t.Run("missing metadata is grouped as Unknown", func(t *testing.T) {
		bare := []model.Holding{{Ticker: "AAA"}}
		comps := []model.RiskComponent{{Ticker: "AAA", Weight: 1}}

		view, err := AggregateComposition(bare, comps, model.ViewSector)
		require.NoError(t, err)
		assert.Equal(t, []string{"Unknown"}, view.Labels)
		assert.InDelta(t, 100, view.Values[0], 1e-9)
	})

	t.Run("rejects an unknown view", func(t *testing.T) {
		_, err := AggregateComposition(holdings, components, model.View(99))
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrUnsupportedView))
	})

	t.Run("rejects empty components", func(t *testing.T) {
		_, err := AggregateComposition(holdings, nil, model.ViewSector)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrDataInsufficient))
	})
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
