package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhq/lantern/internal/database"
	"github.com/lanternhq/lantern/pkg/logger"
)

func newTestMirror(t *testing.T) *Mirror {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return NewMirror(db.Conn())
}

func TestKeyDerivation(t *testing.T) {
	// All triggers must derive identical keys, including case-insensitivity
	assert.Equal(t, "mentions:acme", Key(ScopeMentions, "ACME"))
	assert.Equal(t, "mentions:acme", Key(ScopeMentions, "acme"))
	assert.Equal(t, "news:global", Key(ScopeNews, "Global"))
}

func TestCache_GetWithinTTL(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	c := New(newTestMirror(t), log)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c.SetClock(func() time.Time { return now })

	c.Set(ScopeMentions, "acme", json.RawMessage(`["hello"]`))

	// Fresh hit
	payload, found := c.Get(ScopeMentions, "acme")
	assert.True(t, found)
	assert.JSONEq(t, `["hello"]`, string(payload))

	// Just inside the TTL
	now = base.Add(TTLMentions)
	_, found = c.Get(ScopeMentions, "acme")
	assert.True(t, found)

	// Past the TTL
	now = base.Add(TTLMentions + time.Second)
	_, found = c.Get(ScopeMentions, "acme")
	assert.False(t, found)
}

func TestCache_MirrorSurvivesRestart(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	mirror := newTestMirror(t)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	first := New(mirror, log)
	first.SetClock(func() time.Time { return base })
	first.Set(ScopeNews, "global", json.RawMessage(`{"topics":["launch"]}`))

	// A fresh cache over the same mirror simulates a process restart
	second := New(mirror, log)
	second.SetClock(func() time.Time { return base.Add(time.Hour) })

	payload, found := second.Get(ScopeNews, "global")
	assert.True(t, found)
	assert.JSONEq(t, `{"topics":["launch"]}`, string(payload))
}

func TestCache_MemoryOnlyWhenMirrorNil(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	c := New(nil, log)

	c.Set(ScopeMetrics, "acme", json.RawMessage(`{"rate":0.5}`))
	_, found := c.Get(ScopeMetrics, "acme")
	assert.True(t, found)

	_, found = c.Get(ScopeMetrics, "other")
	assert.False(t, found)
}

func TestCache_MalformedEntryIsAMiss(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	c := New(nil, log)

	c.Set(ScopeMetrics, "acme", json.RawMessage(`{not json`))

	var out map[string]float64
	assert.False(t, c.GetObject(ScopeMetrics, "acme", &out))
}

func TestMirror_DeleteExpired(t *testing.T) {
	mirror := newTestMirror(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, mirror.Store(ScopeMetrics, "fresh", json.RawMessage(`1`), now))
	require.NoError(t, mirror.Store(ScopeMetrics, "stale", json.RawMessage(`2`), now.Add(-time.Hour)))

	results, err := mirror.DeleteExpired(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), results[ScopeMetrics])

	_, _, found, err := mirror.Load(ScopeMetrics, "fresh")
	require.NoError(t, err)
	assert.True(t, found)

	_, _, found, err = mirror.Load(ScopeMetrics, "stale")
	require.NoError(t, err)
	assert.False(t, found)
}
