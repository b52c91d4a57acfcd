// Package provider supplies historical close prices to the risk engine.
// Two implementations exist: an HTTP chart-API client and a
// database-backed reader over locally stored daily prices. Both surface
// fetch failures as apperrors.ErrDataUnavailable so the engine never has
// to care which one it is talking to.
package provider

import (
	"context"
	"time"

	"github.com/quantfolio/risk-engine/internal/model"
)

// PriceHistory is the boundary the engine consumes for market data.
// Implementations return an ordered (ascending by date) close-price
// series for the ticker within [start, end], or an error wrapping
// apperrors.ErrDataUnavailable when the ticker is unknown or the
// backend cannot be reached.
type PriceHistory interface {
	GetDailyPrices(ctx context.Context, ticker string, start, end time.Time) (model.PriceSeries, error)
}
