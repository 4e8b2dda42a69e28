package decisions

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lanternhq/lantern/internal/backup"
	"github.com/lanternhq/lantern/internal/events"
)

const (
	// snapshotLimit is how many recent rows each snapshot carries
	snapshotLimit = 500

	// snapshotKey is the single blob key; each run replaces the previous snapshot
	snapshotKey = "decisions/latest-snapshot"
)

// snapshotPayload is the encoded blob layout
type snapshotPayload struct {
	CreatedAt time.Time  `msgpack:"created_at"`
	Count     int        `msgpack:"count"`
	Decisions []Decision `msgpack:"decisions"`
}

// SnapshotJob encodes the most recent decisions into a single keyed blob for
// disaster recovery. The blob lands in the local snapshots table and, when an
// uploader is configured, in the backup bucket. Failures are logged and
// non-fatal. Scheduled nightly.
type SnapshotJob struct {
	repo     *Repository
	db       *sql.DB
	uploader backup.Uploader
	events   *events.Manager
	log      zerolog.Logger
}

// NewSnapshotJob creates a new snapshot job. uploader may be nil when cloud
// backup is not configured; the local snapshot row is still written.
func NewSnapshotJob(repo *Repository, db *sql.DB, uploader backup.Uploader, ev *events.Manager, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		repo:     repo,
		db:       db,
		uploader: uploader,
		events:   ev,
		log:      log.With().Str("job", "decision_snapshot").Logger(),
	}
}

// Name returns the job name for scheduling and logging
func (j *SnapshotJob) Name() string {
	return "decision_snapshot"
}

// Run builds and stores the snapshot blob
func (j *SnapshotJob) Run() error {
	recent, err := j.repo.Recent(snapshotLimit)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to load decisions for snapshot")
		return err
	}

	payload := snapshotPayload{
		CreatedAt: time.Now().UTC(),
		Count:     len(recent),
		Decisions: recent,
	}

	blob, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	sum := sha256.Sum256(blob)
	checksum := hex.EncodeToString(sum[:])

	if err := j.storeLocal(blob, checksum, len(recent), payload.CreatedAt); err != nil {
		j.log.Error().Err(err).Msg("Failed to store local snapshot")
		// Keep going; the upload may still succeed
	}

	if j.uploader != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := j.uploader.Upload(ctx, snapshotKey, blob); err != nil {
			j.log.Error().Err(err).Msg("Snapshot upload failed")
			// Non-fatal: the nightly schedule retries tomorrow
			return nil
		}

		j.events.Emit(events.SnapshotUploaded, "decisions", map[string]interface{}{
			"count":    len(recent),
			"checksum": checksum,
		})
	}

	j.log.Info().
		Int("count", len(recent)).
		Str("checksum", checksum[:12]).
		Msg("Decision snapshot completed")
	return nil
}

func (j *SnapshotJob) storeLocal(blob []byte, checksum string, count int, createdAt time.Time) error {
	_, err := j.db.Exec(`
		INSERT INTO snapshots (key, data, checksum, item_count, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			checksum = excluded.checksum,
			item_count = excluded.item_count,
			created_at = excluded.created_at
	`, snapshotKey, blob, checksum, count, createdAt.Format(time.RFC3339))
	return err
}
