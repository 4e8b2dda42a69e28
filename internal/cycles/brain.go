// Package cycles implements the decision ("brain") and publishing cycle
// engines. Tenants are processed sequentially to bound burst load on
// rate-limited upstream providers; per-tenant failures are isolated to that
// tenant's result entry and never abort the loop.
package cycles

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lanternhq/lantern/internal/events"
	"github.com/lanternhq/lantern/internal/modules/automation"
	"github.com/lanternhq/lantern/internal/modules/brands"
	"github.com/lanternhq/lantern/internal/modules/decisions"
	"github.com/lanternhq/lantern/internal/modules/market"
)

// tenantPacing is the delay between tenants after upstream-heavy work
const tenantPacing = 2 * time.Second

// BrainEngine orchestrates one decision cycle across all tenants
type BrainEngine struct {
	brands   *brands.Service
	gate     *automation.Service
	market   *market.Ingestor
	analyzer Analyzer
	profiles ProfileSource
	repo     *decisions.Repository
	events   *events.Manager
	log      zerolog.Logger
	sleep    Sleeper
}

// BrainEngineConfig holds dependencies for the brain cycle engine
type BrainEngineConfig struct {
	Brands   *brands.Service
	Gate     *automation.Service
	Market   *market.Ingestor
	Analyzer Analyzer
	Profiles ProfileSource
	Repo     *decisions.Repository
	Events   *events.Manager
	Log      zerolog.Logger
}

// NewBrainEngine creates a new brain cycle engine
func NewBrainEngine(cfg BrainEngineConfig) *BrainEngine {
	return &BrainEngine{
		brands:   cfg.Brands,
		gate:     cfg.Gate,
		market:   cfg.Market,
		analyzer: cfg.Analyzer,
		profiles: cfg.Profiles,
		repo:     cfg.Repo,
		events:   cfg.Events,
		log:      cfg.Log.With().Str("cycle", "brain").Logger(),
		sleep:    time.Sleep,
	}
}

// SetSleeper overrides the inter-tenant pacing, used by tests
func (e *BrainEngine) SetSleeper(s Sleeper) {
	e.sleep = s
}

// RunBrainCycle runs one decision cycle. filter optionally restricts the run
// to a single tenant matched by id, name or handle (case-insensitive).
func (e *BrainEngine) RunBrainCycle(ctx context.Context, label, filter string) CycleResult {
	start := time.Now()
	e.log.Info().Str("label", label).Msg("Starting brain cycle")
	e.events.Emit(events.BrainCycleStart, "cycles", map[string]interface{}{"label": label})

	tenants := e.resolveTenants(filter)

	// The trend feed is process-wide: fetched once, shared across tenants
	trends := e.market.FetchTrends(ctx)

	results := make([]TenantResult, 0, len(tenants))
	for idx, brand := range tenants {
		results = append(results, e.processTenant(ctx, brand, trends))

		// Pace upstream calls between tenants
		if idx < len(tenants)-1 {
			e.sleep(tenantPacing)
		}
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
		Msg("Brain cycle completed")
	e.events.Emit(events.BrainCycleComplete, "cycles", map[string]interface{}{
		"label":     label,
		"processed": result.Processed,
	})

	return result
}

func (e *BrainEngine) resolveTenants(filter string) []brands.Brand {
	if filter != "" {
		if brand := e.brands.Resolve(filter); brand != nil {
			return []brands.Brand{*brand}
		}
		return nil
	}
	return e.brands.ActiveBrands()
}

// processTenant runs the decision flow for one brand. Panics and errors are
// contained to this tenant's result.
func (e *BrainEngine) processTenant(ctx context.Context, brand brands.Brand, trends []market.Trend) (result TenantResult) {
	result = TenantResult{BrandID: brand.ID}
	log := e.log.With().Str("brand", brand.ID).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Tenant processing panicked")
			result.Failed = true
			result.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	// Gate first: a disabled tenant is a recorded skip, not an error
	if !e.gate.IsEnabled(brand.ID) {
		log.Debug().Msg("Automation disabled, skipping")
		result.Skipped = true
		result.Reason = automation.SkipReasonDisabled
		return result
	}

	profile := e.loadProfile(ctx, brand)
	mc := e.market.FetchContext(ctx, brand.Handle(), trends)

	analysis, err := e.analyzer.Analyze(ctx, mc, profile)
	if err != nil {
		log.Error().Err(err).Msg("Analyzer failed")
		result.Failed = true
		result.Error = err.Error()
		return result
	}

	proposed := analysis.Normalized()
	var representative *decisions.Decision

	for _, decision := range proposed {
		if !decision.Actionable() {
			continue
		}

		saved, err := e.repo.Save(decision, brand.ID)
		if err != nil {
			log.Error().Err(err).Str("action", string(decision.Action)).Msg("Failed to persist decision")
			continue
		}

		// Best-effort fan-out; subscriber failures never affect the cycle
		e.events.Emit(events.DecisionCreated, "cycles", map[string]interface{}{
			"brand":       brand.ID,
			"decision_id": saved.ID,
			"action":      string(saved.Action),
		})

		if representative == nil {
			d := saved
			representative = &d
		}
	}

	if representative != nil {
		result.Decision = representative
		return result
	}

	// Nothing actionable: record a skip carrying the first raw decision,
	// or a synthetic NO_ACTION when the analyzer returned nothing at all
	result.Skipped = true
	result.Reason = "No actionable decision"
	if len(proposed) > 0 {
		d := proposed[0]
		result.Decision = &d
	} else {
		result.Decision = &decisions.Decision{BrandID: brand.ID, Action: decisions.ActionNoAction}
	}
	return result
}

// loadProfile fetches the brand profile, defaulting the name to the brand id
// when the external source has nothing
func (e *BrainEngine) loadProfile(ctx context.Context, brand brands.Brand) Profile {
	if e.profiles != nil {
		profile, err := e.profiles.LoadProfile(ctx, brand.ID)
		if err != nil {
			e.log.Warn().Err(err).Str("brand", brand.ID).Msg("Profile load failed, using defaults")
		} else if profile != nil {
			if profile.Name == "" {
				profile.Name = brand.ID
			}
			return *profile
		}
	}
	return Profile{Name: brand.ID}
}
