package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/quantfolio/risk-engine/internal/apperrors"
)

// ProviderConfigRepository stores the price provider API token. The
// token is fernet-encrypted before it touches the database and only
// decrypted on read, so a database dump never exposes it.
type ProviderConfigRepository struct {
	db   *sql.DB
	keys []*fernet.Key
}

// NewProviderConfigRepository creates a repository using the given
// fernet key (base64, as produced by fernet key generation).
func NewProviderConfigRepository(db *sql.DB, fernetKey string) (*ProviderConfigRepository, error) {
	keys, err := fernet.DecodeKeys(fernetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}
	return &ProviderConfigRepository{db: db, keys: keys}, nil
}

// SetToken encrypts and stores the provider API token, replacing any
// previous one.
func (r *ProviderConfigRepository) SetToken(token string) error {
	encrypted, err := fernet.EncryptAndSign([]byte(token), r.keys[0])
	if err != nil {
		return fmt.Errorf("failed to encrypt provider token: %w", err)
	}

	if _, err := r.db.Exec("DELETE FROM provider_config"); err != nil {
		return fmt.Errorf("failed to clear provider_config table: %w", err)
	}

	query := `
          INSERT INTO provider_config (id, encrypted_token, updated_at)
          VALUES (?, ?, ?)
      `
	if _, err := r.db.Exec(query, uuid.NewString(), string(encrypted), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to insert provider_config row: %w", err)
	}

	return nil
}

// GetToken retrieves and decrypts the stored provider API token.
// Returns apperrors.ErrProviderConfigNotFound when none has been set.
func (r *ProviderConfigRepository) GetToken() (string, error) {
	var encrypted string
	err := r.db.QueryRow("SELECT encrypted_token FROM provider_config LIMIT 1").Scan(&encrypted)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrProviderConfigNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query provider_config table: %w", err)
	}

	// Zero TTL disables token expiry; the stored token does not age out.
	plain := fernet.VerifyAndDecrypt([]byte(encrypted), 0, r.keys)
	if plain == nil {
		return "", fmt.Errorf("failed to decrypt provider token: key mismatch or corrupted data")
	}

	return string(plain), nil
}

// UpdatedAt reports when the token was last set. Returns
// apperrors.ErrProviderConfigNotFound when none has been set.
func (r *ProviderConfigRepository) UpdatedAt() (time.Time, error) {
	var updatedAt string
	err := r.db.QueryRow("SELECT updated_at FROM provider_config LIMIT 1").Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, apperrors.ErrProviderConfigNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query provider_config table: %w", err)
	}

	return ParseTime(updatedAt)
}
