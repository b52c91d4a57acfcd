package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

// MockPriceHistory is an in-memory implementation of provider.PriceHistory
// for testing. It returns predefined series instead of hitting a real
// source, and records how often each ticker was requested.
type MockPriceHistory struct {
	mu sync.Mutex
	// Series holds the full series per ticker; requests are filtered to
	// the asked date range.
	Series map[string]model.PriceSeries
	// Errors maps a ticker to an error to return instead of data.
	Errors map[string]error
	// Calls tracks the number of requests per ticker.
	Calls map[string]int
}

// NewMockPriceHistory creates an empty mock price history.
func NewMockPriceHistory() *MockPriceHistory {
	return &MockPriceHistory{
		Series: make(map[string]model.PriceSeries),
		Errors: make(map[string]error),
		Calls:  make(map[string]int),
	}
}

// WithSeries registers a close series for a ticker, one close per
// weekday ending on the given date.
func (m *MockPriceHistory) WithSeries(ticker string, end time.Time, closes []float64) *MockPriceHistory {
	dates := TradingDays(end, len(closes))
	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{Date: dates[i], Close: c}
	}
	m.Series[ticker] = model.PriceSeries{Ticker: ticker, Points: points}
	return m
}

// WithError configures the mock to fail requests for a ticker.
func (m *MockPriceHistory) WithError(ticker string, err error) *MockPriceHistory {
	m.Errors[ticker] = err
	return m
}

// GetDailyPrices returns the registered series for a ticker, filtered
// to [start, end]. Unregistered tickers report data as unavailable.
func (m *MockPriceHistory) GetDailyPrices(_ context.Context, ticker string, start, end time.Time) (model.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls[ticker]++

	if err, ok := m.Errors[ticker]; ok {
		return model.PriceSeries{}, err
	}

	series, ok := m.Series[ticker]
	if !ok {
		return model.PriceSeries{}, apperrors.ErrDataUnavailable
	}

	filtered := model.PriceSeries{Ticker: ticker}
	for _, p := range series.Points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		filtered.Points = append(filtered.Points, p)
	}
	return filtered, nil
}

// CallCount returns how many times a ticker was requested.
func (m *MockPriceHistory) CallCount(ticker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[ticker]
}
