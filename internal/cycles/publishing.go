package cycles

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lanternhq/lantern/internal/clients/twitter"
	"github.com/lanternhq/lantern/internal/events"
	"github.com/lanternhq/lantern/internal/modules/automation"
	"github.com/lanternhq/lantern/internal/modules/brands"
	"github.com/lanternhq/lantern/internal/modules/calendar"
	"github.com/lanternhq/lantern/internal/modules/credentials"
)

// Publisher is the posting surface the publishing cycle drives.
// Satisfied by *twitter.Client; tests supply a fake.
type Publisher interface {
	UploadMedia(ctx context.Context, creds twitter.Credentials, input string) (string, error)
	PostTweet(ctx context.Context, creds twitter.Credentials, text string, mediaIDs []string) (string, error)
}

// PublishingEngine scans tenant calendars and delivers due posts
type PublishingEngine struct {
	brands    *brands.Service
	gate      *automation.Service
	creds     *credentials.Resolver
	calendars *calendar.Repository
	publisher Publisher
	events    *events.Manager
	log       zerolog.Logger
	now       func() time.Time
}

// PublishingEngineConfig holds dependencies for the publishing cycle engine
type PublishingEngineConfig struct {
	Brands    *brands.Service
	Gate      *automation.Service
	Creds     *credentials.Resolver
	Calendars *calendar.Repository
	Publisher Publisher
	Events    *events.Manager
	Log       zerolog.Logger
}

// NewPublishingEngine creates a new publishing cycle engine
func NewPublishingEngine(cfg PublishingEngineConfig) *PublishingEngine {
	return &PublishingEngine{
		brands:    cfg.Brands,
		gate:      cfg.Gate,
		creds:     cfg.Creds,
		calendars: cfg.Calendars,
		publisher: cfg.Publisher,
		events:    cfg.Events,
		log:       cfg.Log.With().Str("cycle", "publishing").Logger(),
		now:       time.Now,
	}
}

// SetClock overrides the time source, used by tests
func (e *PublishingEngine) SetClock(now func() time.Time) {
	e.now = now
}

// RunPublishingCycle runs one publishing cycle, optionally restricted to a
// single tenant
func (e *PublishingEngine) RunPublishingCycle(ctx context.Context, label, filter string) CycleResult {
	start := time.Now()
	e.log.Info().Str("label", label).Msg("Starting publishing cycle")
	e.events.Emit(events.PublishingCycleStart, "cycles", map[string]interface{}{"label": label})

	var tenants []brands.Brand
	if filter != "" {
		if brand := e.brands.Resolve(filter); brand != nil {
			tenants = []brands.Brand{*brand}
		}
	} else {
		tenants = e.brands.ActiveBrands()
	}

	results := make([]TenantResult, 0, len(tenants))
	for _, brand := range tenants {
		results = append(results, e.processTenant(ctx, brand))
	}

	result := CycleResult{
		Label:     label,
		Processed: len(tenants),
		Results:   results,
	}

	e.log.Info().
		Str("label", label).
		Int("processed", result.Processed).
		Dur("duration", time.Since(start)).
		Msg("Publishing cycle completed")
	e.events.Emit(events.PublishingCycleComplete, "cycles", map[string]interface{}{
		"label":     label,
		"processed": result.Processed,
	})

	return result
}

// processTenant publishes a single brand's due events. Events are handled
// sequentially so a partial failure mid-list cannot corrupt the atomic
// whole-list write at the end.
func (e *PublishingEngine) processTenant(ctx context.Context, brand brands.Brand) (result TenantResult) {
	result = TenantResult{BrandID: brand.ID}
	log := e.log.With().Str("brand", brand.ID).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Tenant publishing panicked")
			result.Failed = true
			result.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	if !e.gate.IsEnabled(brand.ID) {
		result.Skipped = true
		result.Reason = automation.SkipReasonDisabled
		return result
	}

	creds := e.creds.Resolve(brand.ID)
	if creds == nil {
		log.Debug().Msg("No posting credentials, skipping")
		result.Skipped = true
		result.Reason = "No posting credentials"
		return result
	}

	eventList, err := e.calendars.Load(brand.OwnerKey(), brand.ID)
	if err != nil {
		log.Error().Err(err).Msg("Calendar load failed")
		result.Failed = true
		result.Error = err.Error()
		return result
	}

	now := e.now()
	changed := false

	for idx := range eventList {
		event := &eventList[idx]

		if !event.IsTwitter() {
			continue
		}
		if !event.Due(now) || !event.Retryable(now) {
			continue
		}

		changed = true
		if e.publishEvent(ctx, log, *creds, event, now) {
			result.Published++
		}
	}

	if changed {
		if err := e.calendars.Save(brand.OwnerKey(), brand.ID, eventList); err != nil {
			log.Error().Err(err).Msg("Calendar save failed")
			result.Failed = true
			result.Error = err.Error()
		}
	}

	return result
}

// publishEvent attempts one event and mutates it in place. Returns true on
// success. Attempt bookkeeping is stamped before the network calls so a
// crash mid-attempt still counts against the retry cap.
func (e *PublishingEngine) publishEvent(ctx context.Context, log zerolog.Logger, creds twitter.Credentials, event *calendar.Event, now time.Time) bool {
	event.PublishAttempts++
	attemptAt := now
	event.LastPublishAttemptAt = &attemptAt

	var mediaIDs []string
	if event.Image != nil && *event.Image != "" {
		mediaID, err := e.publisher.UploadMedia(ctx, creds, *event.Image)
		if err != nil {
			e.recordFailure(log, event, fmt.Errorf("media upload failed: %w", err))
			return false
		}
		mediaIDs = append(mediaIDs, mediaID)
	}

	postID, err := e.publisher.PostTweet(ctx, creds, event.Content, mediaIDs)
	if err != nil {
		e.recordFailure(log, event, err)
		return false
	}

	publishedAt := e.now()
	event.Status = calendar.StatusPublished
	event.ApprovalStatus = calendar.ApprovalPublished
	event.PublishedAt = &publishedAt
	event.PlatformPostID = &postID
	event.PublishError = nil

	log.Info().
		Str("event_id", event.ID).
		Str("post_id", postID).
		Msg("Event published")
	e.events.Emit(events.PostPublished, "cycles", map[string]interface{}{
		"event_id": event.ID,
		"post_id":  postID,
	})

	return true
}

// recordFailure stamps the error on the event and leaves it scheduled so the
// next eligible cycle can retry within the bounded policy
func (e *PublishingEngine) recordFailure(log zerolog.Logger, event *calendar.Event, err error) {
	message := err.Error()
	event.PublishError = &message

	log.Warn().
		Str("event_id", event.ID).
		Int("attempts", event.PublishAttempts).
		Err(err).
		Msg("Event publish failed")
	e.events.Emit(events.PostPublishFailed, "cycles", map[string]interface{}{
		"event_id": event.ID,
		"attempts": event.PublishAttempts,
		"error":    message,
	})
}
