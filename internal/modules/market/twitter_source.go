package market

import (
	"context"

	"github.com/lanternhq/lantern/internal/clients/twitter"
)

// TwitterSource adapts the Twitter client to the ingestor's source
// interfaces using a fixed read-credential set
type TwitterSource struct {
	client *twitter.Client
	creds  twitter.Credentials
}

// NewTwitterSource creates a mention and trend source backed by the
// Twitter API
func NewTwitterSource(client *twitter.Client, creds twitter.Credentials) *TwitterSource {
	return &TwitterSource{client: client, creds: creds}
}

// FetchMentions returns recent mentions of the handle
func (s *TwitterSource) FetchMentions(ctx context.Context, handle string) ([]Mention, error) {
	tweets, err := s.client.SearchMentions(ctx, s.creds, handle)
	if err != nil {
		return nil, err
	}

	mentions := make([]Mention, 0, len(tweets))
	for _, t := range tweets {
		mentions = append(mentions, Mention{
			ID:         t.ID,
			Author:     t.Author,
			Text:       t.Text,
			Engagement: float64(t.Retweets + t.Favorites),
			CreatedAt:  t.CreatedAt,
		})
	}

	return mentions, nil
}

// FetchTrends returns the global trending topics
func (s *TwitterSource) FetchTrends(ctx context.Context) ([]Trend, error) {
	topics, err := s.client.Trends(ctx, s.creds)
	if err != nil {
		return nil, err
	}

	trends := make([]Trend, 0, len(topics))
	for _, topic := range topics {
		trends = append(trends, Trend{
			Topic:  topic.Name,
			Volume: float64(topic.Volume),
		})
	}

	return trends, nil
}
