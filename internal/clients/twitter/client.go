package twitter

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	defaultPostURL   = "https://api.twitter.com/2/tweets"
)

// APIError carries the HTTP status and provider error message of a failed
// request. The publishing cycle treats it as a per-event failure.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twitter API error (status %d): %s", e.StatusCode, e.Message)
}

// Client posts content to the Twitter API with OAuth 1.0a signed requests
type Client struct {
	httpClient *http.Client
	uploadURL  string
	postURL    string
	searchURL  string
	trendsURL  string
	log        zerolog.Logger

	// Injectable for signature determinism tests
	nonce func() string
	now   func() time.Time
}

// NewClient creates a new Twitter client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		uploadURL: defaultUploadURL,
		postURL:   defaultPostURL,
		searchURL: defaultSearchURL,
		trendsURL: defaultTrendsURL,
		log:       log.With().Str("client", "twitter").Logger(),
		nonce:     randomNonce,
		now:       time.Now,
	}
}

// SetEndpoints overrides the API endpoints, used by tests
func (c *Client) SetEndpoints(uploadURL, postURL string) {
	c.uploadURL = uploadURL
	c.postURL = postURL
}

// SetFeedEndpoints overrides the search and trends endpoints, used by tests
func (c *Client) SetFeedEndpoints(searchURL, trendsURL string) {
	c.searchURL = searchURL
	c.trendsURL = trendsURL
}

// SetNonceSource overrides nonce and clock, used by tests
func (c *Client) SetNonceSource(nonce func() string, now func() time.Time) {
	c.nonce = nonce
	c.now = now
}

func randomNonce() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// AuthorizationHeader computes the signed OAuth header for a request.
// Pure function of credentials, nonce and timestamp.
func (c *Client) AuthorizationHeader(creds Credentials, method, rawURL string, bodyParams map[string]string) string {
	nonce := c.nonce()
	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	return authorizationHeader(creds, method, rawURL, bodyParams, nonce, timestamp)
}

// UploadMedia uploads an image and returns the provider media id.
// input is either a remote URL (downloaded and base64-encoded), a data URL
// (base64 payload after the comma) or a raw base64 string.
func (c *Client) UploadMedia(ctx context.Context, creds Credentials, input string) (string, error) {
	mediaData, err := c.resolveMediaData(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to resolve media input: %w", err)
	}

	form := url.Values{}
	form.Set("media_data", mediaData)

	// The signature covers the form body parameters
	header := c.AuthorizationHeader(creds, "POST", c.uploadURL, map[string]string{
		"media_data": mediaData,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.uploadURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", header)

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var result struct {
		MediaIDString string `json:"media_id_string"`
		MediaID       int64  `json:"media_id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}

	if result.MediaIDString != "" {
		return result.MediaIDString, nil
	}
	if result.MediaID != 0 {
		return strconv.FormatInt(result.MediaID, 10), nil
	}
	return "", fmt.Errorf("upload response carried no media id")
}

// PostTweet creates a post and returns its id. mediaIDs may be empty.
func (c *Client) PostTweet(ctx context.Context, creds Credentials, text string, mediaIDs []string) (string, error) {
	payload := map[string]interface{}{
		"text": text,
	}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]interface{}{
			"media_ids": mediaIDs,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tweet payload: %w", err)
	}

	// JSON bodies are not part of the OAuth 1.0a signature base
	header := c.AuthorizationHeader(creds, "POST", c.postURL, nil)

	req, err := http.NewRequestWithContext(ctx, "POST", c.postURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", header)

	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse post response: %w", err)
	}
	if result.Data.ID == "" {
		return "", fmt.Errorf("post response carried no id")
	}

	c.log.Info().Str("post_id", result.Data.ID).Msg("Tweet posted")
	return result.Data.ID, nil
}

// do sends a request and returns the body, converting non-2xx responses
// into a typed APIError with the provider's message
func (c *Client) do(req *http.Request) ([]byte, error) {
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
		message := extractErrorMessage(body)
		c.log.Error().
			Int("status_code", resp.StatusCode).
			Str("message", message).
			Str("url", req.URL.String()).
			Msg("API returned non-2xx status")
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	return body, nil
}

// extractErrorMessage pulls a human-readable message out of the provider's
// error body, which comes in several shapes across API versions
func extractErrorMessage(body []byte) string {
	var v1 struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &v1); err == nil && len(v1.Errors) > 0 && v1.Errors[0].Message != "" {
		return v1.Errors[0].Message
	}

	var v2 struct {
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(body, &v2); err == nil {
		if v2.Detail != "" {
			return v2.Detail
		}
		if v2.Title != "" {
			return v2.Title
		}
	}

	msg := string(body)
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

// resolveMediaData turns the accepted media inputs into a raw base64 string
func (c *Client) resolveMediaData(ctx context.Context, input string) (string, error) {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return c.downloadAndEncode(ctx, trimmed)
	}

	// data:image/png;base64,AAAA... -> strip the prefix
	if strings.HasPrefix(trimmed, "data:") {
		idx := strings.Index(trimmed, "base64,")
		if idx < 0 {
			return "", fmt.Errorf("data URL without base64 payload")
		}
		return trimmed[idx+len("base64,"):], nil
	}

	return trimmed, nil
}

func (c *Client) downloadAndEncode(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "media download failed"}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read media body: %w", err)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}
