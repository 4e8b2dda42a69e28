// Package credentials reads per-brand OAuth token sets. Rows are owned by the
// external auth flow; the orchestration core consumes them read-only.
package credentials

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// CredentialSet is a per-brand OAuth token pair with optional expiry
type CredentialSet struct {
	BrandID      string     `json:"brandId"`
	AccessToken  string     `json:"accessToken"`
	AccessSecret string     `json:"accessSecret"`
	RefreshToken *string    `json:"refreshToken,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

// Repository handles credential database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new credentials repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "credentials").Logger(),
	}
}

// Get retrieves the credential set for a brand. Returns nil if none exists.
func (r *Repository) Get(brandID string) (*CredentialSet, error) {
	row := r.db.QueryRow(`
		SELECT brand_id, access_token, access_secret, refresh_token, expires_at
		FROM brand_credentials
		WHERE brand_id = ?
	`, brandID)

	var c CredentialSet
	var refresh, expires sql.NullString

	err := row.Scan(&c.BrandID, &c.AccessToken, &c.AccessSecret, &refresh, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials for %s: %w", brandID, err)
	}

	if refresh.Valid {
		c.RefreshToken = &refresh.String
	}
	if expires.Valid {
		if t, err := time.Parse(time.RFC3339, expires.String); err == nil {
			c.ExpiresAt = &t
		}
	}

	return &c, nil
}

// Upsert writes a credential row (used by seeding and tests)
func (r *Repository) Upsert(c CredentialSet) error {
	var expires *string
	if c.ExpiresAt != nil {
		s := c.ExpiresAt.Format(time.RFC3339)
		expires = &s
	}

	_, err := r.db.Exec(`
		INSERT INTO brand_credentials (brand_id, access_token, access_secret, refresh_token, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(brand_id) DO UPDATE SET
			access_token = excluded.access_token,
			access_secret = excluded.access_secret,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at
	`, c.BrandID, c.AccessToken, c.AccessSecret, c.RefreshToken, expires)
	if err != nil {
		return fmt.Errorf("failed to upsert credentials for %s: %w", c.BrandID, err)
	}
	return nil
}
