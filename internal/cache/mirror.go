// Package cache provides TTL-bounded caching for expensive upstream calls.
// Entries live in an in-memory map backed by a durable sqlite mirror, so a
// restarted process still short-circuits fetches that are younger than the TTL.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Mirror is the durable half of the cache, one row per (scope, key).
// Rows are upserted with INSERT ... ON CONFLICT, last writer wins.
type Mirror struct {
	db *sql.DB
}

// NewMirror creates a new durable cache mirror
func NewMirror(db *sql.DB) *Mirror {
	return &Mirror{db: db}
}

// Store saves a payload with the current fetch timestamp
func (m *Mirror) Store(scope Scope, key string, payload json.RawMessage, fetchedAt time.Time) error {
	_, err := m.db.Exec(`
		INSERT INTO cache_entries (scope, key, data, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET
			data = excluded.data,
			fetched_at = excluded.fetched_at
	`, string(scope), key, string(payload), fetchedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to store cache entry %s:%s: %w", scope, key, err)
	}
	return nil
}

// Load returns the payload and fetch time for a key.
// Returns found=false when the key does not exist.
func (m *Mirror) Load(scope Scope, key string) (json.RawMessage, time.Time, bool, error) {
	var data string
	var fetchedAt int64
	err := m.db.QueryRow(
		"SELECT data, fetched_at FROM cache_entries WHERE scope = ? AND key = ?",
		string(scope), key,
	).Scan(&data, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to load cache entry %s:%s: %w", scope, key, err)
	}
	return json.RawMessage(data), time.Unix(fetchedAt, 0), true, nil
}

// DeleteExpired removes all rows older than their scope TTL.
// Returns the number of rows deleted per scope.
func (m *Mirror) DeleteExpired(now time.Time) (map[Scope]int64, error) {
	results := make(map[Scope]int64)
	for _, scope := range []Scope{ScopeMentions, ScopeMetrics, ScopeNews} {
		cutoff := now.Add(-TTLFor(scope)).Unix()
		res, err := m.db.Exec(
			"DELETE FROM cache_entries WHERE scope = ? AND fetched_at < ?",
			string(scope), cutoff,
		)
		if err != nil {
			return results, fmt.Errorf("failed to delete expired %s entries: %w", scope, err)
		}
		deleted, _ := res.RowsAffected()
		results[scope] = deleted
	}
	return results, nil
}
