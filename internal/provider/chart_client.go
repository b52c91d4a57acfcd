package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

// ChartClient fetches daily close prices from an HTTP chart API.
// Every request runs under the configured timeout; expiry or any other
// transport failure is reported as data-unavailable to the caller.
type ChartClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewChartClient creates a chart API client. token may be empty when the
// endpoint does not require authentication.
func NewChartClient(baseURL, token string, timeout time.Duration, log zerolog.Logger) *ChartClient {
	return &ChartClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "chart_client").Logger(),
	}
}

// GetDailyPrices fetches the daily close series for a ticker within
// [start, end]. Entries with a missing close (halted days) are skipped.
func (c *ChartClient) GetDailyPrices(ctx context.Context, ticker string, start, end time.Time) (model.PriceSeries, error) {
	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		ticker,
		start.Unix(),
		end.Unix(),
	)

	resp, err := c.query(ctx, url)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("%w: fetching %s: %v", apperrors.ErrDataUnavailable, ticker, err)
	}

	if len(resp.Chart.Result) == 0 {
		return model.PriceSeries{}, fmt.Errorf("%w: no results returned for ticker %s", apperrors.ErrDataUnavailable, ticker)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return model.PriceSeries{}, fmt.Errorf("%w: no price data returned for ticker %s", apperrors.ErrDataUnavailable, ticker)
	}

	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return model.PriceSeries{}, fmt.Errorf("%w: mismatched data lengths for ticker %s", apperrors.ErrDataUnavailable, ticker)
	}

	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if closes[i] == 0 {
			continue
		}
		points = append(points, model.PricePoint{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: closes[i],
		})
	}

	c.log.Debug().
		Str("ticker", ticker).
		Int("points", len(points)).
		Msg("Fetched price series from chart API")

	return model.PriceSeries{Ticker: ticker, Points: points}, nil
}

// query executes an HTTP request against the chart API and parses the
// response envelope, checking for an in-band API error.
func (c *ChartClient) query(ctx context.Context, url string) (chartResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return chartResponse{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chartResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return chartResponse{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return chartResponse{}, err
	}

	var response chartResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return chartResponse{}, err
	}

	if response.Chart.Error != nil {
		return chartResponse{}, fmt.Errorf("chart API error: %s", *response.Chart.Error)
	}

	return response, nil
}
