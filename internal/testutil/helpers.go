package testutil

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeTicker generates a unique ticker symbol for testing.
//
// Example usage:
//
//	ticker := testutil.MakeTicker("AAPL")
//	// Returns: "AAPL1A2B"
func MakeTicker(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// TradingDays returns n consecutive weekdays ending at end, oldest first.
// Weekends are skipped so the dates look like a real close series.
func TradingDays(end time.Time, n int) []time.Time {
	dates := make([]time.Time, 0, n)
	d := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for len(dates) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates = append(dates, d)
		}
		d = d.AddDate(0, 0, -1)
	}
	// Reverse into chronological order
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}
	return dates
}

// Common test constants

var (
	// CommonSectors contains frequently used sector labels
	CommonSectors = []string{"Technology", "Financials", "Healthcare", "Energy", "Utilities"}

	// CommonAssetClasses contains frequently used asset class labels
	CommonAssetClasses = []string{"Equity", "Bond", "Commodity", "Cash"}
)

// RandomSector returns a random sector from CommonSectors.
func RandomSector() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonSectors[rand.Intn(len(CommonSectors))]
}

// RandomAssetClass returns a random asset class from CommonAssetClasses.
func RandomAssetClass() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonAssetClasses[rand.Intn(len(CommonAssetClasses))]
}
