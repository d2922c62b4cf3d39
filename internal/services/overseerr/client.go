package overseerr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"digitarr/internal/config"
	"digitarr/internal/release"
	"digitarr/internal/services"
)

// HTTPDoer describes the HTTP client used by the Overseerr client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Overseerr request API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an Overseerr client from configuration.
func New(cfg config.Overseerr, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "overseerr", "new", "api url required", nil)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "overseerr", "new", "api key required", nil)
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type requestPayload struct {
	MediaType string `json:"mediaType"`
	MediaID   int64  `json:"mediaId"`
}

// Request submits a single media request. A 409 means Overseerr already
// tracks the title and is surfaced as a validation error so callers can
// distinguish it from transport failures.
func (c *Client) Request(ctx context.Context, rel release.Release) error {
	payload := requestPayload{
		MediaType: string(rel.MediaType),
		MediaID:   rel.TMDBID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrTransient, "overseerr", "request", "encode payload", err)
	}

	endpoint := c.baseURL + "/api/v1/request"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrTransient, "overseerr", "request", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrTransient, "overseerr", "request",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return services.Wrap(services.ErrValidation, "overseerr", "request",
			fmt.Sprintf("tmdb id %d already requested", rel.TMDBID), nil)
	default:
		detail := readErrorBody(resp.Body)
		return services.Wrap(services.ErrTransient, "overseerr", "request",
			fmt.Sprintf("server returned %d (latency=%v): %s", resp.StatusCode, latency, detail), nil)
	}
}

// Status checks server reachability through the public status endpoint and
// returns the reported version.
func (c *Client) Status(ctx context.Context) (string, error) {
	endpoint := c.baseURL + "/api/v1/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "overseerr", "status", "build request", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "overseerr", "status", "execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransient, "overseerr", "status",
			fmt.Sprintf("server returned %d", resp.StatusCode), nil)
	}
	var payload struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", services.Wrap(services.ErrTransient, "overseerr", "status", "decode response", err)
	}
	return payload.Version, nil
}

func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	return strings.TrimSpace(string(data))
}
