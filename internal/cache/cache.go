package cache

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type memoryEntry struct {
	payload   json.RawMessage
	fetchedAt time.Time
}

// Cache is a two-layer TTL cache: a process-local map checked first, then the
// durable mirror. When the mirror is unreachable the memory layer alone is
// authoritative for the life of the process (warned once, not an error).
type Cache struct {
	mirror *Mirror
	log    zerolog.Logger
	now    func() time.Time

	mu         sync.RWMutex
	entries    map[string]memoryEntry
	mirrorDown bool
}

// New creates a new cache. The mirror may be nil for memory-only operation.
func New(mirror *Mirror, log zerolog.Logger) *Cache {
	return &Cache{
		mirror:  mirror,
		log:     log.With().Str("component", "cache").Logger(),
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// SetClock overrides the time source, used by tests
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Key derives the canonical cache key for a scope and tenant key.
// All triggers must use this derivation so redundant triggers collapse.
func Key(scope Scope, tenantKey string) string {
	return string(scope) + ":" + strings.ToLower(tenantKey)
}

// Get returns the cached payload for a key if it is younger than the scope TTL.
// Checks memory first, then the durable mirror; a mirror hit is promoted into
// memory. Absence or staleness returns found=false, never an error.
func (c *Cache) Get(scope Scope, key string) (json.RawMessage, bool) {
	ttl := TTLFor(scope)
	now := c.now()

	c.mu.RLock()
	entry, ok := c.entries[Key(scope, key)]
	c.mu.RUnlock()

	if ok && now.Sub(entry.fetchedAt) <= ttl {
		return entry.payload, true
	}

	if c.mirror == nil {
		return nil, false
	}

	payload, fetchedAt, found, err := c.mirror.Load(scope, strings.ToLower(key))
	if err != nil {
		c.noteMirrorFailure(err)
		return nil, false
	}
	if !found || now.Sub(fetchedAt) > ttl {
		return nil, false
	}

	c.mu.Lock()
	c.entries[Key(scope, key)] = memoryEntry{payload: payload, fetchedAt: fetchedAt}
	c.mu.Unlock()

	return payload, true
}

// Set stores a payload in both layers with the current timestamp
func (c *Cache) Set(scope Scope, key string, payload json.RawMessage) {
	now := c.now()

	c.mu.Lock()
	c.entries[Key(scope, key)] = memoryEntry{payload: payload, fetchedAt: now}
	c.mu.Unlock()

	if c.mirror == nil {
		return
	}
	if err := c.mirror.Store(scope, strings.ToLower(key), payload, now); err != nil {
		c.noteMirrorFailure(err)
	}
}

// SetObject marshals a value and stores it
func (c *Cache) SetObject(scope Scope, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.log.Error().Err(err).Str("key", Key(scope, key)).Msg("Failed to marshal cache payload")
		return
	}
	c.Set(scope, key, payload)
}

// GetObject fetches a cached payload and unmarshals it into out
func (c *Cache) GetObject(scope Scope, key string, out interface{}) bool {
	payload, found := c.Get(scope, key)
	if !found {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		// Malformed entry: treat as a miss so the caller re-fetches
		c.log.Warn().Err(err).Str("key", Key(scope, key)).Msg("Malformed cache entry, ignoring")
		return false
	}
	return true
}

// noteMirrorFailure logs the first mirror failure at warn level, later ones at debug
func (c *Cache) noteMirrorFailure(err error) {
	c.mu.Lock()
	first := !c.mirrorDown
	c.mirrorDown = true
	c.mu.Unlock()

	if first {
		c.log.Warn().Err(err).Msg("Durable cache mirror unavailable, continuing memory-only")
	} else {
		c.log.Debug().Err(err).Msg("Durable cache mirror still unavailable")
	}
}
