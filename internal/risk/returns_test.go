package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

func dailySeries(ticker string, start time.Time, closes ...float64) model.PriceSeries {
	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return model.PriceSeries{Ticker: ticker, Points: points}
}

func TestBuildAlignedReturns(t *testing.T) {
	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	t.Run("aligns to the date intersection", func(t *testing.T) {
		prices := map[string]model.PriceSeries{
			"AAA": dailySeries("AAA", start, 100, 102, 101, 103),
			// BBB is missing the first day.
			"BBB": dailySeries("BBB", start.AddDate(0, 0, 1), 50, 51, 52),
		}
		bench := dailySeries("SPY", start, 400, 404, 402, 406)

		aligned, err := BuildAlignedReturns(prices, bench, 2)
		require.NoError(t, err)

		// Three common dates yield two return observations.
		require.Len(t, aligned.Dates, 2)
		require.Len(t, aligned.Benchmark, 2)
		require.Len(t, aligned.Series["AAA"], 2)
		require.Len(t, aligned.Series["BBB"], 2)
		assert.Empty(t, aligned.Insufficient)

		// Day-over-day simple returns on the intersected dates.
		assert.InDelta(t, 101.0/102.0-1, aligned.Series["AAA"][0], 1e-12)
		assert.InDelta(t, 103.0/101.0-1, aligned.Series["AAA"][1], 1e-12)
		assert.InDelta(t, 51.0/50.0-1, aligned.Series["BBB"][0], 1e-12)

		assert.InDelta(t, 103, aligned.LatestClose["AAA"], 1e-12)
		assert.InDelta(t, 52, aligned.LatestClose["BBB"], 1e-12)
	})

	t.Run("reports thin tickers instead of dropping them silently", func(t *testing.T) {
		prices := map[string]model.PriceSeries{
			"AAA": dailySeries("AAA", start, 100, 102, 101, 103),
			"NEW": dailySeries("NEW", start.AddDate(0, 0, 3), 10),
		}
		bench := dailySeries("SPY", start, 400, 404, 402, 406)

		aligned, err := BuildAlignedReturns(prices, bench, 2)
		require.NoError(t, err)

		assert.Equal(t, []string{"NEW"}, aligned.Insufficient)
		assert.NotContains(t, aligned.Series, "NEW")
		// The thin ticker must not shrink the intersection.
		assert.Len(t, aligned.Series["AAA"], 3)
	})

	t.Run("fails when the benchmark is too short", func(t *testing.T) {
		prices := map[string]model.PriceSeries{
			"AAA": dailySeries("AAA", start, 100, 102),
		}
		bench := dailySeries("SPY", start, 400)

		_, err := BuildAlignedReturns(prices, bench, 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrDataInsufficient))
	})

	t.Run("fails when no ticker is usable", func(t *testing.T) {
		prices := map[string]model.PriceSeries{
			"AAA": dailySeries("AAA", start, 100),
		}
		bench := dailySeries("SPY", start, 400, 404, 402)

		_, err := BuildAlignedReturns(prices, bench, 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrDataInsufficient))
	})

	t.Run("fails when the intersection is empty", func(t *testing.T) {
		prices := map[string]model.PriceSeries{
			"AAA": dailySeries("AAA", start, 100, 102, 101),
		}
		bench := dailySeries("SPY", start.AddDate(0, 0, 10), 400, 404, 402)

		_, err := BuildAlignedReturns(prices, bench, 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrDataInsufficient))
	})

	t.Run("does not mutate its inputs", func(t *testing.T) {
		series := dailySeries("AAA", start, 100, 102, 101)
		prices := map[string]model.PriceSeries{"AAA": series}
		bench := dailySeries("SPY", start, 400, 404, 402)

		_, err := BuildAlignedReturns(prices, bench, 2)
		require.NoError(t, err)

		assert.Equal(t, dailySeries("AAA", start, 100, 102, 101), prices["AAA"])
		assert.Equal(t, dailySeries("SPY", start, 400, 404, 402), bench)
	})
}

func TestAlignedReturnsTickers(t *testing.T) {
	aligned := AlignedReturns{Series: map[string][]float64{
		"ZZZ": {0.1},
		"AAA": {0.2},
		"MMM": {0.3},
	}}
	assert.Equal(t, []string{"AAA", "MMM", "ZZZ"}, aligned.Tickers())
}
