package cycles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhq/lantern/internal/cache"
	"github.com/lanternhq/lantern/internal/database"
	"github.com/lanternhq/lantern/internal/events"
	"github.com/lanternhq/lantern/internal/modules/automation"
	"github.com/lanternhq/lantern/internal/modules/brands"
	"github.com/lanternhq/lantern/internal/modules/decisions"
	"github.com/lanternhq/lantern/internal/modules/market"
	"github.com/lanternhq/lantern/pkg/logger"
)

type fakeAnalyzer struct {
	calls    int
	perBrand map[string]Analysis
	errFor   map[string]error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ market.Context, profile Profile) (Analysis, error) {
	f.calls++
	if err, ok := f.errFor[profile.Name]; ok {
		return Analysis{}, err
	}
	return f.perBrand[profile.Name], nil
}

type countingMentions struct {
	calls int
}

func (c *countingMentions) FetchMentions(_ context.Context, _ string) ([]market.Mention, error) {
	c.calls++
	return nil, nil
}

type brainHarness struct {
	engine   *BrainEngine
	analyzer *fakeAnalyzer
	mentions *countingMentions
	brands   *brands.Repository
	gate     *automation.Repository
	repo     *decisions.Repository
}

func newBrainHarness(t *testing.T) *brainHarness {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	log := logger.New(logger.Config{Level: "error"})

	brandRepo := brands.NewRepository(db.Conn(), log)
	gateRepo := automation.NewRepository(db.Conn(), log)
	decisionRepo := decisions.NewRepository(db.Conn(), log)
	mentions := &countingMentions{}
	analyzer := &fakeAnalyzer{perBrand: map[string]Analysis{}, errFor: map[string]error{}}

	ingestor := market.NewIngestor(mentions, nil, cache.New(nil, log), log)

	engine := NewBrainEngine(BrainEngineConfig{
		Brands:   brands.NewService(brandRepo, log),
		Gate:     automation.NewService(gateRepo, log),
		Market:   ingestor,
		Analyzer: analyzer,
		Repo:     decisionRepo,
		Events:   events.NewManager(log),
		Log:      log,
	})
	engine.SetSleeper(func(time.Duration) {})

	return &brainHarness{
		engine:   engine,
		analyzer: analyzer,
		mentions: mentions,
		brands:   brandRepo,
		gate:     gateRepo,
		repo:     decisionRepo,
	}
}

func (h *brainHarness) addBrand(t *testing.T, id string, enabled bool) {
	t.Helper()
	require.NoError(t, h.brands.Upsert(brands.Brand{ID: id, DisplayName: id}))
	require.NoError(t, h.gate.Upsert(automation.Policy{BrandID: id, OwnerID: "o", Enabled: enabled}))
}

func TestRunBrainCycle_DisabledTenantSkippedWithoutUpstreamCalls(t *testing.T) {
	h := newBrainHarness(t)
	h.addBrand(t, "acme", false)

	result := h.engine.RunBrainCycle(context.Background(), "test", "")

	require.Len(t, result.Results, 1)
	assert.True(t, result.Results[0].Skipped)
	assert.Equal(t, "Automation disabled", result.Results[0].Reason)

	assert.Zero(t, h.analyzer.calls)
	assert.Zero(t, h.mentions.calls, "disabled tenant must trigger zero upstream calls")
}

func TestRunBrainCycle_PersistsActionableDecisions(t *testing.T) {
	h := newBrainHarness(t)
	h.addBrand(t, "acme", true)

	draft := "Launch thread"
	h.analyzer.perBrand["acme"] = Analysis{Actions: []decisions.Decision{
		{Action: decisions.ActionNoAction},
		{Action: decisions.ActionTrendJack, Draft: &draft},
		{Action: decisions.ActionReply},
	}}

	result := h.engine.RunBrainCycle(context.Background(), "test", "")

	require.Len(t, result.Results, 1)
	r := result.Results[0]
	assert.False(t, r.Skipped)
	require.NotNil(t, r.Decision)
	// The first actionable decision is the representative
	assert.Equal(t, decisions.ActionTrendJack, r.Decision.Action)
	assert.Equal(t, decisions.StatusPending, r.Decision.Status)

	stored, err := h.repo.RecentForBrand("acme", 10)
	require.NoError(t, err)
	assert.Len(t, stored, 2, "NO_ACTION must not be persisted")
}

func TestRunBrainCycle_SingleDecisionNormalized(t *testing.T) {
	h := newBrainHarness(t)
	h.addBrand(t, "acme", true)

	h.analyzer.perBrand["acme"] = Analysis{
		Decision: &decisions.Decision{Action: decisions.ActionCampaign},
	}

	result := h.engine.RunBrainCycle(context.Background(), "test", "")

	require.Len(t, result.Results, 1)
	require.NotNil(t, result.Results[0].Decision)
	assert.Equal(t, decisions.ActionCampaign, result.Results[0].Decision.Action)
}

func TestRunBrainCycle_NothingActionableRecordsSkip(t *testing.T) {
	h := newBrainHarness(t)
	h.addBrand(t, "acme", true)

	h.analyzer.perBrand["acme"] = Analysis{Actions: []decisions.Decision{
		{Action: decisions.ActionNoAction},
	}}

	result := h.engine.RunBrainCycle(context.Background(), "test", "")

	require.Len(t, result.Results, 1)
	r := result.Results[0]
	assert.True(t, r.Skipped)
	require.NotNil(t, r.Decision)
	assert.Equal(t, decisions.ActionNoAction, r.Decision.Action)

	stored, err := h.repo.RecentForBrand("acme", 10)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRunBrainCycle_TenantIsolation(t *testing.T) {
	h := newBrainHarness(t)
	h.addBrand(t, "alpha", true)
	h.addBrand(t, "bravo", true)
	h.addBrand(t, "charlie", true)

	h.analyzer.errFor["bravo"] = errors.New("upstream exploded")
	h.analyzer.perBrand["alpha"] = Analysis{Actions: []decisions.Decision{{Action: decisions.ActionReply}}}
	h.analyzer.perBrand["charlie"] = Analysis{Actions: []decisions.Decision{{Action: decisions.ActionReply}}}

	result := h.engine.RunBrainCycle(context.Background(), "test", "")

	assert.Equal(t, 3, result.Processed)
	require.Len(t, result.Results, 3)

	byBrand := map[string]TenantResult{}
	for _, r := range result.Results {
		byBrand[r.BrandID] = r
	}

	assert.NotNil(t, byBrand["alpha"].Decision)
	assert.True(t, byBrand["bravo"].Failed)
	assert.Contains(t, byBrand["bravo"].Error, "upstream exploded")
	assert.NotNil(t, byBrand["charlie"].Decision)
}

func TestRunBrainCycle_FilterRestrictsToOneTenant(t *testing.T) {
	h := newBrainHarness(t)
	h.addBrand(t, "alpha", true)
	h.addBrand(t, "bravo", true)

	result := h.engine.RunBrainCycle(context.Background(), "test", "ALPHA")

	assert.Equal(t, 1, result.Processed)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "alpha", result.Results[0].BrandID)
}

func TestAnalysisNormalized(t *testing.T) {
	list := Analysis{Actions: []decisions.Decision{{Action: decisions.ActionReply}}}
	assert.Len(t, list.Normalized(), 1)

	single := Analysis{Decision: &decisions.Decision{Action: decisions.ActionCampaign}}
	require.Len(t, single.Normalized(), 1)
	assert.Equal(t, decisions.ActionCampaign, single.Normalized()[0].Action)

	assert.Nil(t, Analysis{}.Normalized())
}
