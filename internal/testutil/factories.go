package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/quantfolio/risk-engine/internal/model"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    Archived().
//	    Build(t, db)
type PortfolioBuilder struct {
	ID          string
	Name        string
	Description string
	IsArchived  bool
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:          MakeID(),
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
		IsArchived:  false,
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// Archived marks the portfolio as archived.
func (b *PortfolioBuilder) Archived() *PortfolioBuilder {
	b.IsArchived = true
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	query := `
		INSERT INTO portfolio (id, name, description, is_archived)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.Description, b.IsArchived)
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		IsArchived:  b.IsArchived,
	}
}

// CreatePortfolio creates a portfolio with the given name and default values.
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// SecurityBuilder provides a fluent interface for creating test securities.
//
// Example usage:
//
//	security := testutil.NewSecurity().
//	    WithTicker("AAPL").
//	    WithSector("Technology").
//	    Build(t, db)
type SecurityBuilder struct {
	ID         string
	Ticker     string
	Name       string
	Sector     string
	AssetClass string
	Currency   string
}

// NewSecurity creates a SecurityBuilder with sensible defaults.
func NewSecurity() *SecurityBuilder {
	return &SecurityBuilder{
		ID:         MakeID(),
		Ticker:     MakeTicker("TEST"),
		Name:       "Test Security",
		Sector:     "Technology",
		AssetClass: "Equity",
		Currency:   "USD",
	}
}

// WithTicker sets a custom ticker.
func (b *SecurityBuilder) WithTicker(ticker string) *SecurityBuilder {
	b.Ticker = ticker
	return b
}

// WithSector sets a custom sector.
func (b *SecurityBuilder) WithSector(sector string) *SecurityBuilder {
	b.Sector = sector
	return b
}

// WithAssetClass sets a custom asset class.
func (b *SecurityBuilder) WithAssetClass(assetClass string) *SecurityBuilder {
	b.AssetClass = assetClass
	return b
}

// Build creates the security in the database and returns it.
func (b *SecurityBuilder) Build(t *testing.T, db *sql.DB) model.Security {
	t.Helper()

	query := `
		INSERT INTO security (id, ticker, name, sector, asset_class, currency)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Ticker, b.Name, b.Sector, b.AssetClass, b.Currency)
	if err != nil {
		t.Fatalf("Failed to create test security: %v", err)
	}

	return model.Security{
		ID:         b.ID,
		Ticker:     b.Ticker,
		Name:       b.Name,
		Sector:     b.Sector,
		AssetClass: b.AssetClass,
		Currency:   b.Currency,
	}
}

// HoldingBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	holding := testutil.NewHolding(portfolio.ID, security).
//	    WithQuantity(25).
//	    Build(t, db)
type HoldingBuilder struct {
	ID          string
	PortfolioID string
	Security    model.Security
	Quantity    float64
	CostBasis   float64
}

// NewHolding creates a HoldingBuilder with sensible defaults.
func NewHolding(portfolioID string, security model.Security) *HoldingBuilder {
	return &HoldingBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Security:    security,
		Quantity:    10,
		CostBasis:   100,
	}
}

// WithQuantity sets a custom quantity.
func (b *HoldingBuilder) WithQuantity(quantity float64) *HoldingBuilder {
	b.Quantity = quantity
	return b
}

// WithCostBasis sets a custom cost basis.
func (b *HoldingBuilder) WithCostBasis(costBasis float64) *HoldingBuilder {
	b.CostBasis = costBasis
	return b
}

// Build creates the holding in the database and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	query := `
		INSERT INTO holding (id, portfolio_id, security_id, quantity, cost_basis)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.PortfolioID, b.Security.ID, b.Quantity, b.CostBasis)
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}

	return model.Holding{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		Ticker:      b.Security.Ticker,
		Sector:      b.Security.Sector,
		AssetClass:  b.Security.AssetClass,
		Quantity:    b.Quantity,
		CostBasis:   b.CostBasis,
	}
}

// CreateHolding creates a holding linking a portfolio to a security.
func CreateHolding(t *testing.T, db *sql.DB, portfolioID string, security model.Security, quantity float64) model.Holding {
	t.Helper()
	return NewHolding(portfolioID, security).WithQuantity(quantity).Build(t, db)
}

// InsertDailyPrices stores one close per weekday, ending on the given
// date, oldest first. The closes slice drives the number of rows.
func InsertDailyPrices(t *testing.T, db *sql.DB, securityID string, end time.Time, closes []float64) {
	t.Helper()

	dates := TradingDays(end, len(closes))
	query := `
		INSERT INTO daily_price (id, security_id, date, close)
		VALUES (?, ?, ?, ?)
	`
	for i, c := range closes {
		_, err := db.Exec(query, MakeID(), securityID, dates[i].Format("2006-01-02"), c)
		if err != nil {
			t.Fatalf("Failed to insert test price: %v", err)
		}
	}
}
