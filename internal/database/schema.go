package database

// schemaStatements defines the durable store schema.
// Writes across triggers are upsert-by-key, last-writer-wins, so every table
// carries a natural key usable with INSERT ... ON CONFLICT.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS brands (
		id            TEXT PRIMARY KEY,
		display_name  TEXT NOT NULL,
		owner_id      TEXT,
		social_handle TEXT,
		lunar_symbol  TEXT,
		created_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS automation_settings (
		brand_id        TEXT NOT NULL,
		owner_id        TEXT NOT NULL DEFAULT '',
		enabled         INTEGER NOT NULL DEFAULT 0,
		schedule_window TEXT,
		posting_limits  TEXT,
		risk_thresholds TEXT,
		updated_at      TEXT NOT NULL,
		PRIMARY KEY (brand_id, owner_id)
	)`,

	`CREATE TABLE IF NOT EXISTS decisions (
		id         TEXT PRIMARY KEY,
		brand_id   TEXT NOT NULL,
		action     TEXT NOT NULL,
		target_id  TEXT,
		reason     TEXT,
		draft      TEXT,
		status     TEXT NOT NULL DEFAULT 'pending',
		metadata   TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_decisions_brand_created
		ON decisions (brand_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_decisions_created
		ON decisions (created_at)`,

	`CREATE TABLE IF NOT EXISTS calendars (
		key        TEXT PRIMARY KEY,
		events     TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS brand_credentials (
		brand_id      TEXT PRIMARY KEY,
		access_token  TEXT NOT NULL,
		access_secret TEXT NOT NULL,
		refresh_token TEXT,
		expires_at    TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS cache_entries (
		scope      TEXT NOT NULL,
		key        TEXT NOT NULL,
		data       TEXT NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (scope, key)
	)`,

	`CREATE TABLE IF NOT EXISTS snapshots (
		key        TEXT PRIMARY KEY,
		data       BLOB NOT NULL,
		checksum   TEXT NOT NULL,
		item_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`,
}
