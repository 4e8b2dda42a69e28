package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/lanternhq/lantern/internal/cycles"
)

// brainCycleTimeout bounds a full brain sweep across all tenants
const brainCycleTimeout = 30 * time.Minute

// BrainCycleJob runs the decision cycle across all enabled tenants
type BrainCycleJob struct {
	log     zerolog.Logger
	engine  *cycles.BrainEngine
	running atomic.Bool
}

// NewBrainCycleJob creates a new brain cycle job
func NewBrainCycleJob(engine *cycles.BrainEngine, log zerolog.Logger) *BrainCycleJob {
	return &BrainCycleJob{
		log:    log.With().Str("job", "brain_cycle").Logger(),
		engine: engine,
	}
}

// Name returns the job name
func (j *BrainCycleJob) Name() string {
	return "brain_cycle"
}

// Run executes one brain cycle. Overlapping ticks are skipped rather than
// queued so a slow sweep never stacks up behind itself.
func (j *BrainCycleJob) Run() error {
	if !j.running.CompareAndSwap(false, true) {
		j.log.Warn().Msg("Brain cycle already running, skipping")
		return nil
	}
	defer j.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), brainCycleTimeout)
	defer cancel()

	j.engine.RunBrainCycle(ctx, "scheduled", "")
	return nil
}
