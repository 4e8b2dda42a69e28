package cache

import (
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob removes expired entries from the durable cache mirror.
// Scheduled daily.
type CleanupJob struct {
	mirror *Mirror
	log    zerolog.Logger
}

// NewCleanupJob creates a new cache cleanup job
func NewCleanupJob(mirror *Mirror, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		mirror: mirror,
		log:    log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Name returns the job name for scheduling and logging
func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}

// Run executes the cleanup job
func (j *CleanupJob) Run() error {
	results, err := j.mirror.DeleteExpired(time.Now())
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired cache entries")
		return err
	}

	var total int64
	for scope, count := range results {
		if count > 0 {
			j.log.Info().
				Str("scope", string(scope)).
				Int64("deleted", count).
				Msg("Cleaned up expired cache entries")
			total += count
		}
	}

	if total > 0 {
		j.log.Info().Int64("total_deleted", total).Msg("Cache cleanup completed")
	}

	return nil
}
