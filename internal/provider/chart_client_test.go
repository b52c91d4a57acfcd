package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/risk-engine/internal/apperrors"
)

func chartPayload(timestamps []int64, closes []float64) string {
	ts, cl := "", ""
	for i := range timestamps {
		if i > 0 {
			ts += ","
			cl += ","
		}
		ts += fmt.Sprintf("%d", timestamps[i])
		cl += fmt.Sprintf("%g", closes[i])
	}
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"meta": {"currency": "USD", "symbol": "AAA"},
				"timestamp": [%s],
				"indicators": {"quote": [{"close": [%s]}]}
			}],
			"error": null
		}
	}`, ts, cl)
}

func TestChartClientGetDailyPrices(t *testing.T) {
	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	log := zerolog.Nop()

	t.Run("parses a close series", func(t *testing.T) {
		timestamps := []int64{start.Unix(), start.AddDate(0, 0, 1).Unix(), start.AddDate(0, 0, 2).Unix()}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v8/finance/chart/AAA" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("interval") != "1d" {
				t.Errorf("Expected interval=1d, got %s", r.URL.Query().Get("interval"))
			}
			fmt.Fprint(w, chartPayload(timestamps, []float64{100, 101.5, 102}))
		}))
		defer server.Close()

		client := NewChartClient(server.URL, "", 5*time.Second, log)

		series, err := client.GetDailyPrices(context.Background(), "AAA", start, end)
		if err != nil {
			t.Fatalf("GetDailyPrices() returned unexpected error: %v", err)
		}

		if len(series.Points) != 3 {
			t.Fatalf("Expected 3 points, got %d", len(series.Points))
		}
		if series.Points[1].Close != 101.5 {
			t.Errorf("Expected close 101.5, got %v", series.Points[1].Close)
		}
	})

	t.Run("skips halted days with zero close", func(t *testing.T) {
		timestamps := []int64{start.Unix(), start.AddDate(0, 0, 1).Unix(), start.AddDate(0, 0, 2).Unix()}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, chartPayload(timestamps, []float64{100, 0, 102}))
		}))
		defer server.Close()

		client := NewChartClient(server.URL, "", 5*time.Second, log)

		series, err := client.GetDailyPrices(context.Background(), "AAA", start, end)
		if err != nil {
			t.Fatalf("GetDailyPrices() returned unexpected error: %v", err)
		}

		if len(series.Points) != 2 {
			t.Errorf("Expected halted day skipped, got %d points", len(series.Points))
		}
	})

	t.Run("sends the bearer token when configured", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, chartPayload([]int64{start.Unix()}, []float64{100}))
		}))
		defer server.Close()

		client := NewChartClient(server.URL, "secret-token", 5*time.Second, log)

		if _, err := client.GetDailyPrices(context.Background(), "AAA", start, end); err != nil {
			t.Fatalf("GetDailyPrices() returned unexpected error: %v", err)
		}

		if gotAuth != "Bearer secret-token" {
			t.Errorf("Expected bearer token header, got %q", gotAuth)
		}
	})

	t.Run("maps HTTP failures to data-unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewChartClient(server.URL, "", 5*time.Second, log)

		_, err := client.GetDailyPrices(context.Background(), "AAA", start, end)
		if !errors.Is(err, apperrors.ErrDataUnavailable) {
			t.Errorf("Expected ErrDataUnavailable, got %v", err)
		}
	})

	t.Run("maps in-band API errors to data-unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart": {"result": [], "error": "Not Found"}}`)
		}))
		defer server.Close()

		client := NewChartClient(server.URL, "", 5*time.Second, log)

		_, err := client.GetDailyPrices(context.Background(), "MISSING", start, end)
		if !errors.Is(err, apperrors.ErrDataUnavailable) {
			t.Errorf("Expected ErrDataUnavailable, got %v", err)
		}
	})

	t.Run("maps empty results to data-unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart": {"result": [], "error": null}}`)
		}))
		defer server.Close()

		client := NewChartClient(server.URL, "", 5*time.Second, log)

		_, err := client.GetDailyPrices(context.Background(), "MISSING", start, end)
		if !errors.Is(err, apperrors.ErrDataUnavailable) {
			t.Errorf("Expected ErrDataUnavailable, got %v", err)
		}
	})
}
