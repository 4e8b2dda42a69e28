package decisions

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fallbackCap bounds the in-memory fallback list (most-recent-first)
const fallbackCap = 50

// Repository dual-writes decisions: the durable store is the source of
// truth, the bounded in-memory fallback serves reads only when the durable
// store is unreachable. The fallback may be stale or capped by design.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger

	mu       sync.Mutex
	fallback []Decision
}

// NewRepository creates a new decision repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "decisions").Logger(),
	}
}

// Save persists a decision as pending. Assigns an id and creation time when
// absent. The durable insert and the fallback append both always run; a
// durable failure is returned after the fallback is updated so the caller
// still has a local copy.
func (r *Repository) Save(decision Decision, brandID string) (Decision, error) {
	decision.BrandID = brandID
	if decision.ID == "" {
		decision.ID = uuid.NewString()
	}
	if decision.CreatedAt.IsZero() {
		decision.CreatedAt = time.Now().UTC()
	}
	decision.Status = StatusPending

	r.appendFallback(decision)

	var metadata *string
	if len(decision.Metadata) > 0 {
		s := string(decision.Metadata)
		metadata = &s
	}

	_, err := r.db.Exec(`
		INSERT INTO decisions (id, brand_id, action, target_id, reason, draft, status, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			action = excluded.action,
			target_id = excluded.target_id,
			reason = excluded.reason,
			draft = excluded.draft,
			status = excluded.status,
			metadata = excluded.metadata
	`, decision.ID, decision.BrandID, string(decision.Action), decision.TargetID,
		decision.Reason, decision.Draft, decision.Status, metadata,
		decision.CreatedAt.Format(time.RFC3339))
	if err != nil {
		r.log.Error().Err(err).Str("brand", brandID).Msg("Durable decision write failed, fallback copy kept")
		return decision, fmt.Errorf("failed to save decision: %w", err)
	}

	r.log.Info().
		Str("decision_id", decision.ID).
		Str("brand", brandID).
		Str("action", string(decision.Action)).
		Msg("Decision saved")

	return decision, nil
}

// Recent returns the latest decisions, durable store first, fallback only
// when the durable read fails
func (r *Repository) Recent(limit int) ([]Decision, error) {
	stored, err := r.queryRecent(limit)
	if err == nil {
		return stored, nil
	}

	r.log.Warn().Err(err).Msg("Durable decision read failed, serving fallback")

	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.fallback) {
		limit = len(r.fallback)
	}
	out := make([]Decision, limit)
	copy(out, r.fallback[:limit])
	return out, nil
}

// RecentForBrand returns the latest decisions for one brand from the durable store
func (r *Repository) RecentForBrand(brandID string, limit int) ([]Decision, error) {
	rows, err := r.db.Query(`
		SELECT id, brand_id, action, target_id, reason, draft, status, metadata, created_at
		FROM decisions
		WHERE brand_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, brandID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions for %s: %w", brandID, err)
	}
	defer rows.Close()
	return scanDecisions(rows)
}

// DeleteOlderThan removes durable rows older than the cutoff.
// Returns the number of rows deleted.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(
		"DELETE FROM decisions WHERE created_at < ?",
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old decisions: %w", err)
	}
	deleted, _ := res.RowsAffected()
	return deleted, nil
}

func (r *Repository) queryRecent(limit int) ([]Decision, error) {
	rows, err := r.db.Query(`
		SELECT id, brand_id, action, target_id, reason, draft, status, metadata, created_at
		FROM decisions
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent decisions: %w", err)
	}
	defer rows.Close()
	return scanDecisions(rows)
}

func scanDecisions(rows *sql.Rows) ([]Decision, error) {
	var result []Decision
	for rows.Next() {
		var d Decision
		var action string
		var targetID, reason, draft, metadata sql.NullString
		var createdAt string

		if err := rows.Scan(&d.ID, &d.BrandID, &action, &targetID, &reason, &draft,
			&d.Status, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}

		d.Action = ActionType(action)
		if targetID.Valid {
			d.TargetID = &targetID.String
		}
		if reason.Valid {
			d.Reason = &reason.String
		}
		if draft.Valid {
			d.Draft = &draft.String
		}
		if metadata.Valid {
			d.Metadata = []byte(metadata.String)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			d.CreatedAt = t
		}

		result = append(result, d)
	}
	return result, rows.Err()
}

// appendFallback prepends a decision to the bounded fallback list
func (r *Repository) appendFallback(decision Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fallback = append([]Decision{decision}, r.fallback...)
	if len(r.fallback) > fallbackCap {
		r.fallback = r.fallback[:fallbackCap]
	}
}

// FallbackSize returns the current fallback list length, used by tests and status
func (r *Repository) FallbackSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fallback)
}
