// Package market fetches per-tenant and global signals through the TTL cache
// so overlapping cycle triggers collapse into one upstream call.
package market

import (
	"context"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/lanternhq/lantern/internal/cache"
)

// MentionSource fetches brand mentions from an upstream provider
type MentionSource interface {
	FetchMentions(ctx context.Context, handle string) ([]Mention, error)
}

// TrendSource fetches the global trend feed
type TrendSource interface {
	FetchTrends(ctx context.Context) ([]Trend, error)
}

// trendsKey is the shared cache key for the process-wide trend feed
const trendsKey = "global"

// Ingestor resolves market context. Upstream failures surface as empty
// slices, never as errors, so the analyzer can run over partial context.
type Ingestor struct {
	mentions MentionSource
	trends   TrendSource
	cache    *cache.Cache
	log      zerolog.Logger
}

// NewIngestor creates a new market context ingestor
func NewIngestor(mentions MentionSource, trends TrendSource, c *cache.Cache, log zerolog.Logger) *Ingestor {
	return &Ingestor{
		mentions: mentions,
		trends:   trends,
		cache:    c,
		log:      log.With().Str("component", "market").Logger(),
	}
}

// FetchTrends returns the global trend feed, cached for 24h. Called once per
// cycle before the tenant loop; the result is shared across all tenants.
func (i *Ingestor) FetchTrends(ctx context.Context) []Trend {
	var cached []Trend
	if i.cache.GetObject(cache.ScopeNews, trendsKey, &cached) {
		return cached
	}

	if i.trends == nil {
		return nil
	}

	fresh, err := i.trends.FetchTrends(ctx)
	if err != nil {
		i.log.Warn().Err(err).Msg("Trend fetch failed, continuing with empty feed")
		return nil
	}

	i.cache.SetObject(cache.ScopeNews, trendsKey, fresh)
	return fresh
}

// FetchMentions returns a brand's mentions, cached for 6h under the brand's
// lowercased handle
func (i *Ingestor) FetchMentions(ctx context.Context, handle string) []Mention {
	var cached []Mention
	if i.cache.GetObject(cache.ScopeMentions, handle, &cached) {
		return cached
	}

	if i.mentions == nil {
		return nil
	}

	fresh, err := i.mentions.FetchMentions(ctx, handle)
	if err != nil {
		i.log.Warn().Err(err).Str("handle", handle).Msg("Mention fetch failed, continuing with empty list")
		return nil
	}

	i.cache.SetObject(cache.ScopeMentions, handle, fresh)
	return fresh
}

// FetchContext assembles the full per-tenant context. trends are passed in
// by the cycle, which fetched them once for all tenants.
func (i *Ingestor) FetchContext(ctx context.Context, handle string, trends []Trend) Context {
	mentions := i.FetchMentions(ctx, handle)

	return Context{
		Trends:   trends,
		Mentions: mentions,
		Metrics:  i.engagementSummary(handle, mentions),
	}
}

// engagementSummary derives mention engagement statistics, cached for 15m
func (i *Ingestor) engagementSummary(handle string, mentions []Mention) EngagementSummary {
	var cached EngagementSummary
	if i.cache.GetObject(cache.ScopeMetrics, handle, &cached) {
		return cached
	}

	summary := summarize(mentions)
	i.cache.SetObject(cache.ScopeMetrics, handle, summary)
	return summary
}

func summarize(mentions []Mention) EngagementSummary {
	if len(mentions) == 0 {
		return EngagementSummary{}
	}

	values := make([]float64, len(mentions))
	for idx, m := range mentions {
		values[idx] = m.Engagement
	}

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}

	return EngagementSummary{
		Count:  len(mentions),
		Mean:   mean,
		StdDev: std,
	}
}
