package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/lanternhq/lantern/internal/cycles"
)

// publishingCycleTimeout bounds one calendar sweep, including media uploads
const publishingCycleTimeout = 10 * time.Minute

// PublishingCycleJob delivers due calendar posts for all enabled tenants
type PublishingCycleJob struct {
	log     zerolog.Logger
	engine  *cycles.PublishingEngine
	running atomic.Bool
}

// NewPublishingCycleJob creates a new publishing cycle job
func NewPublishingCycleJob(engine *cycles.PublishingEngine, log zerolog.Logger) *PublishingCycleJob {
	return &PublishingCycleJob{
		log:    log.With().Str("job", "publishing_cycle").Logger(),
		engine: engine,
	}
}

// Name returns the job name
func (j *PublishingCycleJob) Name() string {
	return "publishing_cycle"
}

// Run executes one publishing cycle, skipping when a previous tick is still
// in flight
func (j *PublishingCycleJob) Run() error {
	if !j.running.CompareAndSwap(false, true) {
		j.log.Warn().Msg("Publishing cycle already running, skipping")
		return nil
	}
	defer j.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), publishingCycleTimeout)
	defer cancel()

	j.engine.RunPublishingCycle(ctx, "scheduled", "")
	return nil
}
