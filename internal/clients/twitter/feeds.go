package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultSearchURL = "https://api.twitter.com/1.1/search/tweets.json"
	defaultTrendsURL = "https://api.twitter.com/1.1/trends/place.json"

	// worldwide WOEID for the trends endpoint
	globalTrendsPlace = "1"
)

// Tweet is one status returned by the search endpoint
type Tweet struct {
	ID        string
	Author    string
	Text      string
	Retweets  int
	Favorites int
	CreatedAt time.Time
}

// TrendTopic is one entry of the trends feed
type TrendTopic struct {
	Name   string
	Volume int64
}

// SearchMentions returns recent statuses mentioning the given handle.
// The query parameters are part of the OAuth signature base.
func (c *Client) SearchMentions(ctx context.Context, creds Credentials, handle string) ([]Tweet, error) {
	params := map[string]string{
		"q":           "@" + strings.TrimPrefix(handle, "@"),
		"count":       "50",
		"result_type": "recent",
		"tweet_mode":  "extended",
	}

	body, err := c.signedGet(ctx, creds, c.searchURL, params)
	if err != nil {
		return nil, err
	}

	var result struct {
		Statuses []struct {
			IDStr     string `json:"id_str"`
			FullText  string `json:"full_text"`
			Text      string `json:"text"`
			CreatedAt string `json:"created_at"`
			User      struct {
				ScreenName string `json:"screen_name"`
			} `json:"user"`
			RetweetCount  int `json:"retweet_count"`
			FavoriteCount int `json:"favorite_count"`
		} `json:"statuses"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	tweets := make([]Tweet, 0, len(result.Statuses))
	for _, s := range result.Statuses {
		text := s.FullText
		if text == "" {
			text = s.Text
		}
		created, _ := time.Parse(time.RubyDate, s.CreatedAt)
		tweets = append(tweets, Tweet{
			ID:        s.IDStr,
			Author:    s.User.ScreenName,
			Text:      text,
			Retweets:  s.RetweetCount,
			Favorites: s.FavoriteCount,
			CreatedAt: created,
		})
	}

	return tweets, nil
}

// Trends returns the global trending topics
func (c *Client) Trends(ctx context.Context, creds Credentials) ([]TrendTopic, error) {
	params := map[string]string{"id": globalTrendsPlace}

	body, err := c.signedGet(ctx, creds, c.trendsURL, params)
	if err != nil {
		return nil, err
	}

	var result []struct {
		Trends []struct {
			Name        string `json:"name"`
			TweetVolume int64  `json:"tweet_volume"`
		} `json:"trends"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse trends response: %w", err)
	}
	if len(result) == 0 {
		return nil, nil
	}

	topics := make([]TrendTopic, 0, len(result[0].Trends))
	for _, tr := range result[0].Trends {
		topics = append(topics, TrendTopic{Name: tr.Name, Volume: tr.TweetVolume})
	}

	return topics, nil
}

// signedGet issues a GET with the query parameters covered by the signature
func (c *Client) signedGet(ctx context.Context, creds Credentials, rawURL string, params map[string]string) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}

	header := c.AuthorizationHeader(creds, "GET", rawURL, params)

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", header)

	return c.do(req)
}
