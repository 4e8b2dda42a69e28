package automation

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles automation policy database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new automation policy repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "automation").Logger(),
	}
}

// Get retrieves the policy for a brand. Returns nil if no row exists.
// When multiple owner rows exist for one brand the most recently updated wins.
func (r *Repository) Get(brandID string) (*Policy, error) {
	row := r.db.QueryRow(`
		SELECT brand_id, owner_id, enabled, schedule_window, posting_limits, risk_thresholds, updated_at
		FROM automation_settings
		WHERE brand_id = ?
		ORDER BY updated_at DESC
		LIMIT 1
	`, brandID)

	var p Policy
	var enabled int
	var window, limits, thresholds sql.NullString
	var updatedAt string

	err := row.Scan(&p.BrandID, &p.OwnerID, &enabled, &window, &limits, &thresholds, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get automation policy for %s: %w", brandID, err)
	}

	p.Enabled = enabled != 0
	if window.Valid {
		p.ScheduleWindow = &window.String
	}
	if limits.Valid {
		p.PostingLimits = &limits.String
	}
	if thresholds.Valid {
		p.RiskThresholds = &thresholds.String
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = t
	}

	return &p, nil
}

// Upsert writes a policy row (used by seeding and tests; production writes
// come from the external settings API)
func (r *Repository) Upsert(p Policy) error {
	enabled := 0
	if p.Enabled {
		enabled = 1
	}

	_, err := r.db.Exec(`
		INSERT INTO automation_settings
			(brand_id, owner_id, enabled, schedule_window, posting_limits, risk_thresholds, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(brand_id, owner_id) DO UPDATE SET
			enabled = excluded.enabled,
			schedule_window = excluded.schedule_window,
			posting_limits = excluded.posting_limits,
			risk_thresholds = excluded.risk_thresholds,
			updated_at = excluded.updated_at
	`, p.BrandID, p.OwnerID, enabled, p.ScheduleWindow, p.PostingLimits, p.RiskThresholds,
		time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert automation policy for %s: %w", p.BrandID, err)
	}
	return nil
}
