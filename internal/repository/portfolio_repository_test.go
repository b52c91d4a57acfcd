package repository_test

import (
	"errors"
	"testing"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
	"github.com/quantfolio/risk-engine/internal/repository"
	"github.com/quantfolio/risk-engine/internal/testutil"
)

func TestPortfolioRepository_GetPortfolios(t *testing.T) {
	t.Run("returns empty slice when no portfolios exist", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		// Execute
		portfolios, err := repo.GetPortfolios(model.PortfolioFilter{})

		// Assert
		if err != nil {
			t.Fatalf("GetPortfolios() returned unexpected error: %v", err)
		}

		if len(portfolios) != 0 {
			t.Errorf("Expected empty slice, got %d portfolios", len(portfolios))
		}
	})

	t.Run("excludes archived portfolios by default", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		active := testutil.CreatePortfolio(t, db, "Active Portfolio")
		testutil.NewPortfolio().WithName("Archived Portfolio").Archived().Build(t, db)

		// Execute
		portfolios, err := repo.GetPortfolios(model.PortfolioFilter{})

		// Assert
		if err != nil {
			t.Fatalf("GetPortfolios() returned unexpected error: %v", err)
		}

		if len(portfolios) != 1 {
			t.Fatalf("Expected 1 portfolio, got %d", len(portfolios))
		}

		if portfolios[0].ID != active.ID {
			t.Errorf("Expected portfolio %s, got %s", active.ID, portfolios[0].ID)
		}
	})

	t.Run("includes archived portfolios when asked", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		testutil.CreatePortfolio(t, db, "Active Portfolio")
		testutil.NewPortfolio().WithName("Archived Portfolio").Archived().Build(t, db)

		// Execute
		portfolios, err := repo.GetPortfolios(model.PortfolioFilter{IncludeArchived: true})

		// Assert
		if err != nil {
			t.Fatalf("GetPortfolios() returned unexpected error: %v", err)
		}

		if len(portfolios) != 2 {
			t.Errorf("Expected 2 portfolios, got %d", len(portfolios))
		}
	})
}

func TestPortfolioRepository_GetPortfolioOnID(t *testing.T) {
	t.Run("returns the portfolio when it exists", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)
		created := testutil.CreatePortfolio(t, db, "My Portfolio")

		// Execute
		portfolio, err := repo.GetPortfolioOnID(created.ID)

		// Assert
		if err != nil {
			t.Fatalf("GetPortfolioOnID() returned unexpected error: %v", err)
		}

		if portfolio.Name != "My Portfolio" {
			t.Errorf("Expected name 'My Portfolio', got '%s'", portfolio.Name)
		}
	})

	t.Run("returns not-found for an unknown ID", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		// Execute
		_, err := repo.GetPortfolioOnID(testutil.MakeID())

		// Assert
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

func TestPortfolioRepository_GetHoldings(t *testing.T) {
	t.Run("returns holdings with security metadata in ticker order", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		portfolio := testutil.CreatePortfolio(t, db, "Holdings Portfolio")
		secB := testutil.NewSecurity().WithTicker("BBB").WithSector("Energy").Build(t, db)
		secA := testutil.NewSecurity().WithTicker("AAA").WithSector("Technology").Build(t, db)
		testutil.CreateHolding(t, db, portfolio.ID, secB, 20)
		testutil.CreateHolding(t, db, portfolio.ID, secA, 10)

		// Execute
		holdings, err := repo.GetHoldings(portfolio.ID)

		// Assert
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}

		if len(holdings) != 2 {
			t.Fatalf("Expected 2 holdings, got %d", len(holdings))
		}

		if holdings[0].Ticker != "AAA" || holdings[1].Ticker != "BBB" {
			t.Errorf("Expected holdings ordered by ticker, got %s, %s", holdings[0].Ticker, holdings[1].Ticker)
		}

		if holdings[0].Sector != "Technology" {
			t.Errorf("Expected sector 'Technology', got '%s'", holdings[0].Sector)
		}

		if holdings[0].Quantity != 10 {
			t.Errorf("Expected quantity 10, got %v", holdings[0].Quantity)
		}
	})

	t.Run("returns empty slice for a portfolio without holdings", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)
		portfolio := testutil.CreatePortfolio(t, db, "Empty Portfolio")

		// Execute
		holdings, err := repo.GetHoldings(portfolio.ID)

		// Assert
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}

		if len(holdings) != 0 {
			t.Errorf("Expected no holdings, got %d", len(holdings))
		}
	})

	t.Run("returns not-found for an unknown portfolio", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		// Execute
		_, err := repo.GetHoldings(testutil.MakeID())

		// Assert
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}
