// Package risk implements the portfolio risk analytics engine: return
// alignment, regime classification, VaR/CVaR estimation, rolling beta,
// risk decomposition, composition views, and the cached pipeline that
// ties them together.
package risk

import (
	"fmt"
	"sort"
	"time"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

// AlignedReturns is the output of the return series builder: simple
// daily returns for every usable ticker plus the benchmark, truncated to
// the intersection of available dates. Consumers treat it as read-only.
type AlignedReturns struct {
	// Dates of the aligned return observations, ascending.
	Dates []time.Time
	// Series maps ticker to its returns, index-aligned with Dates.
	Series map[string][]float64
	// Benchmark returns, index-aligned with Dates.
	Benchmark []float64
	// LatestClose maps ticker to the last aligned close price, used for
	// market-value weighting.
	LatestClose map[string]float64
	// Insufficient lists tickers that were excluded because their
	// history could not support the alignment. They are reported, never
	// silently dropped.
	Insufficient []string
}

// BuildAlignedReturns converts raw price series into aligned daily
// return series. Tickers with fewer than minPoints price observations
// are excluded and reported in Insufficient; the benchmark is
// mandatory. The transform is pure: inputs are not mutated.
//
// Returns apperrors.ErrDataInsufficient when the benchmark itself is
// too short or the date intersection cannot produce at least two
// return observations.
func BuildAlignedReturns(prices map[string]model.PriceSeries, benchmark model.PriceSeries, minPoints int) (AlignedReturns, error) {
	if minPoints < 2 {
		minPoints = 2
	}

	if len(benchmark.Points) < minPoints {
		return AlignedReturns{}, fmt.Errorf("%w: benchmark %s has %d price points, need at least %d",
			apperrors.ErrDataInsufficient, benchmark.Ticker, len(benchmark.Points), minPoints)
	}

	// Partition tickers into usable and insufficient up front so a thin
	// series cannot shrink the intersection for everyone else.
	usable := make([]string, 0, len(prices))
	insufficient := []string{}
	for ticker, series := range prices {
		if len(series.Points) < minPoints {
			insufficient = append(insufficient, ticker)
			continue
		}
		usable = append(usable, ticker)
	}
	sort.Strings(usable)
	sort.Strings(insufficient)

	if len(usable) == 0 {
		return AlignedReturns{}, fmt.Errorf("%w: no ticker has the %d price points required",
			apperrors.ErrDataInsufficient, minPoints)
	}

	// Intersect dates across the benchmark and all usable tickers.
	counts := make(map[time.Time]int)
	for _, p := range benchmark.Points {
		counts[p.Date] = 1
	}
	for _, ticker := range usable {
		for _, p := range prices[ticker].Points {
			if counts[p.Date] > 0 {
				counts[p.Date]++
			}
		}
	}

	need := len(usable) + 1
	dates := make([]time.Time, 0, len(counts))
	for date, n := range counts {
		if n == need {
			dates = append(dates, date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	if len(dates) < minPoints {
		return AlignedReturns{}, fmt.Errorf("%w: only %d common trading days across holdings and benchmark, need at least %d",
			apperrors.ErrDataInsufficient, len(dates), minPoints)
	}

	aligned := AlignedReturns{
		Dates:        dates[1:],
		Series:       make(map[string][]float64, len(usable)),
		LatestClose:  make(map[string]float64, len(usable)),
		Insufficient: insufficient,
	}

	benchPrices := pricesOnDates(benchmark, dates)
	aligned.Benchmark = simpleReturns(benchPrices)

	for _, ticker := range usable {
		aligned.Series[ticker] = simpleReturns(pricesOnDates(prices[ticker], dates))
		aligned.LatestClose[ticker] = pricesOnDates(prices[ticker], dates)[len(dates)-1]
	}

	return aligned, nil
}

// ReturnSeriesFor materializes the aligned returns of one ticker as a
// model.ReturnSeries.
func (a AlignedReturns) ReturnSeriesFor(ticker string) model.ReturnSeries {
	returns, ok := a.Series[ticker]
	if !ok {
		return model.ReturnSeries{Ticker: ticker}
	}
	points := make([]model.ReturnPoint, len(returns))
	for i, r := range returns {
		points[i] = model.ReturnPoint{Date: a.Dates[i], Return: r}
	}
	return model.ReturnSeries{Ticker: ticker, Points: points}
}

// Tickers returns the usable tickers in deterministic order.
func (a AlignedReturns) Tickers() []string {
	tickers := make([]string, 0, len(a.Series))
	for t := range a.Series {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// pricesOnDates extracts the close prices of a series on the given
// dates, in order. Every date is expected to exist in the series.
func pricesOnDates(series model.PriceSeries, dates []time.Time) []float64 {
	byDate := make(map[time.Time]float64, len(series.Points))
	for _, p := range series.Points {
		byDate[p.Date] = p.Close
	}
	out := make([]float64, len(dates))
	for i, d := range dates {
		out[i] = byDate[d]
	}
	return out
}

// simpleReturns derives day-over-day simple returns, price[t]/price[t-1] - 1.
func simpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] > 0 {
			returns[i-1] = prices[i]/prices[i-1] - 1
		}
	}
	return returns
}
