package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

// ResultRepository persists computed risk bundles in the risk_result
// table, one row per (portfolio, as-of date). Rows are only ever
// replaced wholesale; a partially updated bundle cannot exist.
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new ResultRepository with the provided database connection.
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Get retrieves the cached bundle for a (portfolio, as-of) key. Returns
// apperrors.ErrResultNotFound when no row exists.
func (r *ResultRepository) Get(portfolioID, asOf string) (model.RiskBundle, error) {
	query := `
          SELECT bundle
          FROM risk_result
          WHERE portfolio_id = ? AND as_of = ?
      `

	var raw string
	err := r.db.QueryRow(query, portfolioID, asOf).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.RiskBundle{}, apperrors.ErrResultNotFound
	}
	if err != nil {
		return model.RiskBundle{}, fmt.Errorf("failed to query risk_result table: %w", err)
	}

	var bundle model.RiskBundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		return model.RiskBundle{}, fmt.Errorf("failed to decode cached risk bundle: %w", err)
	}

	return bundle, nil
}

// Save stores a bundle under its (portfolio, as-of) key, replacing any
// previous row for that key.
func (r *ResultRepository) Save(bundle model.RiskBundle) error {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to encode risk bundle: %w", err)
	}

	query := `
          INSERT INTO risk_result (portfolio_id, as_of, bundle, computed_at)
          VALUES (?, ?, ?, ?)
          ON CONFLICT(portfolio_id, as_of) DO UPDATE SET
              bundle = excluded.bundle,
              computed_at = excluded.computed_at
      `

	_, err = r.db.Exec(query, bundle.PortfolioID, bundle.AsOf, string(raw), bundle.LatestUpdate.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert risk_result table: %w", err)
	}

	return nil
}

// DeletePortfolio removes all cached bundles for one portfolio.
func (r *ResultRepository) DeletePortfolio(portfolioID string) error {
	if _, err := r.db.Exec("DELETE FROM risk_result WHERE portfolio_id = ?", portfolioID); err != nil {
		return fmt.Errorf("failed to delete risk_result rows: %w", err)
	}
	return nil
}

// DeleteAll removes every cached bundle.
func (r *ResultRepository) DeleteAll() error {
	if _, err := r.db.Exec("DELETE FROM risk_result"); err != nil {
		return fmt.Errorf("failed to clear risk_result table: %w", err)
	}
	return nil
}

// DeleteBefore removes bundles computed for as-of dates earlier than the
// given date. The rollover job uses it to drop entries that went stale
// at the start of a new trading day.
func (r *ResultRepository) DeleteBefore(asOf string) error {
	if _, err := r.db.Exec("DELETE FROM risk_result WHERE as_of < ?", asOf); err != nil {
		return fmt.Errorf("failed to prune risk_result table: %w", err)
	}
	return nil
}
