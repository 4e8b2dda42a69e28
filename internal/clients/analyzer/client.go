// Package analyzer is the HTTP client for the external decision provider.
// The provider receives a tenant profile plus market context and returns
// proposed actions.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/lanternhq/lantern/internal/cycles"
	"github.com/lanternhq/lantern/internal/modules/market"
)

// Client calls the decision provider over HTTP
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        zerolog.Logger
}

// NewClient creates a new analyzer client. baseURL may be empty; Analyze
// then fails per call so a deployment without a provider still serves the
// rest of the system.
func NewClient(baseURL, token string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: baseURL,
		token:   token,
		log:     log.With().Str("client", "analyzer").Logger(),
	}
}

// analyzeRequest is the provider request payload
type analyzeRequest struct {
	Profile cycles.Profile `json:"profile"`
	Context market.Context `json:"context"`
}

// Analyze submits one tenant's context and returns the proposed actions
func (c *Client) Analyze(ctx context.Context, mc market.Context, profile cycles.Profile) (cycles.Analysis, error) {
	if c.baseURL == "" {
		return cycles.Analysis{}, fmt.Errorf("analyzer endpoint not configured")
	}

	payload, err := json.Marshal(analyzeRequest{Profile: profile, Context: mc})
	if err != nil {
		return cycles.Analysis{}, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	body, err := c.post(ctx, c.baseURL+"/analyze", payload)
	if err != nil {
		return cycles.Analysis{}, err
	}

	var analysis cycles.Analysis
	if err := json.Unmarshal(body, &analysis); err != nil {
		return cycles.Analysis{}, fmt.Errorf("failed to parse analyze response: %w", err)
	}

	return analysis, nil
}

// LoadProfile fetches a tenant profile. Returns nil without error when the
// provider has none, letting the cycle fall back to defaults.
func (c *Client) LoadProfile(ctx context.Context, brandID string) (*cycles.Profile, error) {
	if c.baseURL == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/profiles/"+brandID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile request returned status %d", resp.StatusCode)
	}

	var profile cycles.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile response: %w", err)
	}

	return &profile, nil
}

func (c *Client) post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error().
			Int("status_code", resp.StatusCode).
			Str("url", url).
			Msg("Analyzer returned non-2xx status")
		return nil, fmt.Errorf("analyzer returned status %d", resp.StatusCode)
	}

	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
