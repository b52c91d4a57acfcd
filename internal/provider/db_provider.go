package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
	"github.com/quantfolio/risk-engine/internal/repository"
)

// DBProvider serves price history from the local daily_price table.
// It is the default source in deployments where prices are synced by an
// out-of-band import, and the one tests run against.
type DBProvider struct {
	prices *repository.PriceRepository
	log    zerolog.Logger
}

// NewDBProvider creates a database-backed price history provider.
func NewDBProvider(prices *repository.PriceRepository, log zerolog.Logger) *DBProvider {
	return &DBProvider{
		prices: prices,
		log:    log.With().Str("component", "db_provider").Logger(),
	}
}

// GetDailyPrices reads the stored close series for a ticker within
// [start, end]. An unknown ticker or an empty range reports data as
// unavailable; the context deadline is honored by the query.
func (p *DBProvider) GetDailyPrices(ctx context.Context, ticker string, start, end time.Time) (model.PriceSeries, error) {
	series, err := p.prices.GetDailyPrices(ctx, ticker, start, end)
	if err != nil {
		if errors.Is(err, apperrors.ErrSecurityNotFound) {
			return model.PriceSeries{}, fmt.Errorf("%w: unknown ticker %s", apperrors.ErrDataUnavailable, ticker)
		}
		return model.PriceSeries{}, fmt.Errorf("%w: reading prices for %s: %v", apperrors.ErrDataUnavailable, ticker, err)
	}

	if len(series.Points) == 0 {
		return model.PriceSeries{}, fmt.Errorf("%w: no stored prices for ticker %s", apperrors.ErrDataUnavailable, ticker)
	}

	p.log.Debug().
		Str("ticker", ticker).
		Int("points", len(series.Points)).
		Msg("Loaded price series from database")

	return series, nil
}
