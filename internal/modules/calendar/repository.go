package calendar

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository stores each brand's calendar as one JSON row. The whole list is
// replaced on save (upsert-by-key, last-writer-wins) so a partial failure
// mid-cycle never leaves a half-written calendar.
//
// Keys are owner-scoped (`calendar:{owner}:{brand}`). Reads fall back to the
// legacy unscoped key (`calendar:{brand}`) when no scoped row exists; the
// scoped row is authoritative whenever both are present, and saves always
// write the scoped key.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new calendar repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "calendar").Logger(),
	}
}

// ScopedKey builds the owner-scoped storage key
func ScopedKey(ownerID, brandID string) string {
	return fmt.Sprintf("calendar:%s:%s", ownerID, brandID)
}

// LegacyKey builds the pre-scoping storage key
func LegacyKey(brandID string) string {
	return "calendar:" + brandID
}

// Load returns a brand's event list, trying the scoped key first and the
// legacy key as fallback. A missing calendar is an empty list, not an error.
func (r *Repository) Load(ownerID, brandID string) ([]Event, error) {
	events, found, err := r.loadKey(ScopedKey(ownerID, brandID))
	if err != nil {
		return nil, err
	}
	if found {
		return events, nil
	}

	events, found, err = r.loadKey(LegacyKey(brandID))
	if err != nil {
		return nil, err
	}
	if found {
		r.log.Debug().Str("brand", brandID).Msg("Calendar served from legacy unscoped key")
		return events, nil
	}

	return nil, nil
}

// Save replaces a brand's entire event list under the scoped key
func (r *Repository) Save(ownerID, brandID string, events []Event) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to marshal calendar for %s: %w", brandID, err)
	}

	_, err = r.db.Exec(`
		INSERT INTO calendars (key, events, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			events = excluded.events,
			updated_at = excluded.updated_at
	`, ScopedKey(ownerID, brandID), string(payload), time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save calendar for %s: %w", brandID, err)
	}
	return nil
}

func (r *Repository) loadKey(key string) ([]Event, bool, error) {
	var payload string
	err := r.db.QueryRow("SELECT events FROM calendars WHERE key = ?", key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load calendar %s: %w", key, err)
	}

	var events []Event
	if err := json.Unmarshal([]byte(payload), &events); err != nil {
		// Malformed row: treat as missing so the cycle continues with an empty list
		r.log.Warn().Err(err).Str("key", key).Msg("Malformed calendar row, treating as empty")
		return nil, false, nil
	}
	return events, true, nil
}
