package repository_test

import (
	"errors"
	"testing"

	"github.com/fernet/fernet-go"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/repository"
	"github.com/quantfolio/risk-engine/internal/testutil"
)

func generateFernetKey(t *testing.T) string {
	t.Helper()

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate fernet key: %v", err)
	}
	return key.Encode()
}

func TestProviderConfigRepository(t *testing.T) {
	t.Run("round-trips a token through encryption", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo, err := repository.NewProviderConfigRepository(db, generateFernetKey(t))
		if err != nil {
			t.Fatalf("NewProviderConfigRepository() returned unexpected error: %v", err)
		}

		// Execute
		if err := repo.SetToken("secret-api-token"); err != nil {
			t.Fatalf("SetToken() returned unexpected error: %v", err)
		}
		token, err := repo.GetToken()

		// Assert
		if err != nil {
			t.Fatalf("GetToken() returned unexpected error: %v", err)
		}
		if token != "secret-api-token" {
			t.Errorf("Expected decrypted token 'secret-api-token', got '%s'", token)
		}

		// The stored value must not be the plaintext.
		var stored string
		if err := db.QueryRow("SELECT encrypted_token FROM provider_config").Scan(&stored); err != nil {
			t.Fatalf("Failed to read stored token: %v", err)
		}
		if stored == "secret-api-token" {
			t.Error("Token stored in plaintext")
		}
	})

	t.Run("replaces the previous token", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo, err := repository.NewProviderConfigRepository(db, generateFernetKey(t))
		if err != nil {
			t.Fatalf("NewProviderConfigRepository() returned unexpected error: %v", err)
		}

		// Execute
		if err := repo.SetToken("first"); err != nil {
			t.Fatalf("SetToken() returned unexpected error: %v", err)
		}
		if err := repo.SetToken("second"); err != nil {
			t.Fatalf("SetToken() returned unexpected error: %v", err)
		}

		// Assert
		testutil.AssertRowCount(t, db, "provider_config", 1)

		token, err := repo.GetToken()
		if err != nil {
			t.Fatalf("GetToken() returned unexpected error: %v", err)
		}
		if token != "second" {
			t.Errorf("Expected token 'second', got '%s'", token)
		}
	})

	t.Run("reports not-found before any token is set", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo, err := repository.NewProviderConfigRepository(db, generateFernetKey(t))
		if err != nil {
			t.Fatalf("NewProviderConfigRepository() returned unexpected error: %v", err)
		}

		// Execute
		_, err = repo.GetToken()

		// Assert
		if !errors.Is(err, apperrors.ErrProviderConfigNotFound) {
			t.Errorf("Expected ErrProviderConfigNotFound, got %v", err)
		}

		if _, err := repo.UpdatedAt(); !errors.Is(err, apperrors.ErrProviderConfigNotFound) {
			t.Errorf("Expected ErrProviderConfigNotFound from UpdatedAt, got %v", err)
		}
	})

	t.Run("tracks the update timestamp", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo, err := repository.NewProviderConfigRepository(db, generateFernetKey(t))
		if err != nil {
			t.Fatalf("NewProviderConfigRepository() returned unexpected error: %v", err)
		}

		// Execute
		if err := repo.SetToken("secret"); err != nil {
			t.Fatalf("SetToken() returned unexpected error: %v", err)
		}
		updatedAt, err := repo.UpdatedAt()

		// Assert
		if err != nil {
			t.Fatalf("UpdatedAt() returned unexpected error: %v", err)
		}
		if updatedAt.IsZero() {
			t.Error("Expected a non-zero update timestamp")
		}
	})

	t.Run("rejects an invalid key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)

		if _, err := repository.NewProviderConfigRepository(db, "not-a-key"); err == nil {
			t.Error("Expected error for invalid fernet key, got nil")
		}
	})
}
