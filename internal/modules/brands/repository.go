package brands

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles brand database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new brand repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "brands").Logger(),
	}
}

// All returns every registered brand, oldest first
func (r *Repository) All() ([]Brand, error) {
	rows, err := r.db.Query(`
		SELECT id, display_name, owner_id, social_handle, lunar_symbol, created_at
		FROM brands
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	var result []Brand
	for rows.Next() {
		brand, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, brand)
	}
	return result, rows.Err()
}

// GetByID retrieves a brand by id. Returns nil if not found.
func (r *Repository) GetByID(id string) (*Brand, error) {
	row := r.db.QueryRow(`
		SELECT id, display_name, owner_id, social_handle, lunar_symbol, created_at
		FROM brands
		WHERE id = ?
	`, id)

	brand, err := scanBrand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// Upsert inserts or replaces a brand row (used by seeding and tests)
func (r *Repository) Upsert(brand Brand) error {
	createdAt := brand.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO brands (id, display_name, owner_id, social_handle, lunar_symbol, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			owner_id = excluded.owner_id,
			social_handle = excluded.social_handle,
			lunar_symbol = excluded.lunar_symbol
	`, brand.ID, brand.DisplayName, brand.OwnerID, brand.SocialHandle, brand.LunarSymbol,
		createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert brand %s: %w", brand.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBrand(row rowScanner) (Brand, error) {
	var b Brand
	var ownerID, handle, symbol sql.NullString
	var createdAt string

	if err := row.Scan(&b.ID, &b.DisplayName, &ownerID, &handle, &symbol, &createdAt); err != nil {
		return Brand{}, err
	}

	if ownerID.Valid {
		b.OwnerID = &ownerID.String
	}
	if handle.Valid {
		b.SocialHandle = &handle.String
	}
	if symbol.Valid {
		b.LunarSymbol = &symbol.String
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		b.CreatedAt = t
	}

	return b, nil
}
