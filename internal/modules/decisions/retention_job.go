package decisions

import (
	"time"

	"github.com/rs/zerolog"
)

// retentionWindow is how long durable decision rows are kept
const retentionWindow = 30 * 24 * time.Hour

// RetentionJob deletes decisions older than the retention window.
// Scheduled daily.
type RetentionJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewRetentionJob creates a new decision retention job
func NewRetentionJob(repo *Repository, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		repo: repo,
		log:  log.With().Str("job", "decision_retention").Logger(),
	}
}

// Name returns the job name for scheduling and logging
func (j *RetentionJob) Name() string {
	return "decision_retention"
}

// Run executes the retention prune
func (j *RetentionJob) Run() error {
	cutoff := time.Now().Add(-retentionWindow)

	deleted, err := j.repo.DeleteOlderThan(cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("Decision retention prune failed")
		return err
	}

	if deleted > 0 {
		j.log.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("Pruned old decisions")
	}
	return nil
}
