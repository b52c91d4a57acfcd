package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

// PriceRepository provides data access methods for the daily_price table.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetDailyPrices retrieves the stored close series for a ticker within
// [start, end], ordered by date ascending. Returns
// apperrors.ErrSecurityNotFound when the ticker is unknown.
func (r *PriceRepository) GetDailyPrices(ctx context.Context, ticker string, start, end time.Time) (model.PriceSeries, error) {
	var securityID string
	err := r.db.QueryRowContext(ctx, "SELECT id FROM security WHERE ticker = ?", ticker).Scan(&securityID)
	if err == sql.ErrNoRows {
		return model.PriceSeries{}, apperrors.ErrSecurityNotFound
	}
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("failed to resolve ticker %s: %w", ticker, err)
	}

	query := `
          SELECT date, close
          FROM daily_price
          WHERE security_id = ? AND date >= ? AND date <= ?
          ORDER BY date ASC
      `

	rows, err := r.db.QueryContext(ctx, query, securityID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("failed to query daily_price table: %w", err)
	}
	defer rows.Close()

	series := model.PriceSeries{Ticker: ticker}

	for rows.Next() {
		var dateStr string
		var closePrice float64

		if err := rows.Scan(&dateStr, &closePrice); err != nil {
			return model.PriceSeries{}, fmt.Errorf("failed to scan daily_price table results: %w", err)
		}

		date, err := ParseTime(dateStr)
		if err != nil {
			return model.PriceSeries{}, err
		}

		series.Points = append(series.Points, model.PricePoint{Date: date, Close: closePrice})
	}

	if err = rows.Err(); err != nil {
		return model.PriceSeries{}, fmt.Errorf("error iterating daily_price table: %w", err)
	}

	return series, nil
}
