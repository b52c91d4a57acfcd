package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Portfolio table
		CREATE TABLE IF NOT EXISTS portfolio (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			description TEXT,
			is_archived BOOLEAN DEFAULT FALSE NOT NULL
		);

		-- Security table
		CREATE TABLE IF NOT EXISTS security (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			ticker VARCHAR(10) NOT NULL UNIQUE,
			name VARCHAR(100) NOT NULL,
			sector VARCHAR(50) NOT NULL,
			asset_class VARCHAR(20) NOT NULL,
			currency VARCHAR(3) NOT NULL DEFAULT 'USD'
		);

		-- Holding table: positions per portfolio
		CREATE TABLE IF NOT EXISTS holding (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL,
			security_id VARCHAR(36) NOT NULL,
			quantity FLOAT NOT NULL,
			cost_basis FLOAT NOT NULL,
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE,
			FOREIGN KEY(security_id) REFERENCES security(id) ON DELETE CASCADE,
			CONSTRAINT unique_portfolio_security UNIQUE (portfolio_id, security_id)
		);

		-- Daily close prices, one row per security per trading day
		CREATE TABLE IF NOT EXISTS daily_price (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			security_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			close FLOAT NOT NULL,
			FOREIGN KEY(security_id) REFERENCES security(id) ON DELETE CASCADE,
			CONSTRAINT unique_security_date UNIQUE (security_id, date)
		);

		CREATE INDEX IF NOT EXISTS idx_daily_price_security_date
			ON daily_price(security_id, date);

		-- Cached risk results
		CREATE TABLE IF NOT EXISTS risk_result (
			portfolio_id VARCHAR(36) NOT NULL,
			as_of DATE NOT NULL,
			bundle TEXT NOT NULL,
			computed_at DATETIME NOT NULL,
			PRIMARY KEY (portfolio_id, as_of),
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE
		);

		-- Price provider settings
		CREATE TABLE IF NOT EXISTS provider_config (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			encrypted_token TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables in dependency order.
// Useful for reusing the same database across multiple tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	// Order matters: delete children before parents due to foreign keys
	tables := []string{
		"risk_result",
		"daily_price",
		"holding",
		"security",
		"portfolio",
		"provider_config",
	}

	for _, table := range tables {
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
