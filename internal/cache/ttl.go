package cache

import "time"

// Scope identifies a class of cached data. The scope determines the TTL and
// forms the first half of every cache key, so overlapping triggers (boot,
// cron, manual) derive identical keys and collapse into one upstream call.
type Scope string

const (
	ScopeMentions Scope = "mentions"
	ScopeMetrics  Scope = "metrics"
	ScopeNews     Scope = "news"
)

// TTL constants per data class.
const (
	TTLMentions = 6 * time.Hour    // Brand mentions are expensive to fetch and slow-moving
	TTLMetrics  = 15 * time.Minute // Derived engagement metrics
	TTLNews     = 24 * time.Hour   // Global news/trend summaries
)

// TTLFor returns the TTL for a scope. Unknown scopes get the shortest TTL so
// a missing mapping never serves stale data for long.
func TTLFor(scope Scope) time.Duration {
	switch scope {
	case ScopeMentions:
		return TTLMentions
	case ScopeMetrics:
		return TTLMetrics
	case ScopeNews:
		return TTLNews
	default:
		return TTLMetrics
	}
}
