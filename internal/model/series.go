package model

import "time"

// PricePoint is a single (date, close) observation in a price series.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries holds an ordered daily close price history for one ticker.
// Dates are strictly increasing; gap handling is the price provider's
// responsibility.
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// ReturnPoint is a single (date, simple return) observation. The return
// on a date is price[t]/price[t-1] - 1, attributed to date t.
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// ReturnSeries holds an ordered daily simple-return series for one ticker.
// It is produced by the return builder and consumed read-only downstream.
type ReturnSeries struct {
	Ticker string        `json:"ticker"`
	Points []ReturnPoint `json:"points"`
}

// Returns extracts the raw return values in date order.
func (s ReturnSeries) Returns() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Return
	}
	return out
}
