package riven

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"digitarr/internal/config"
	"digitarr/internal/logging"
	"digitarr/internal/release"
	"digitarr/internal/services"
)

// HTTPDoer describes the HTTP client used by the Riven client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResultDetail records the outcome of one batch add attempt.
type ResultDetail struct {
	TMDBIDs []int64
	Status  int
	Message string
	Err     error
}

// Summary aggregates a batch add. Success and Failed count releases, not
// HTTP calls.
type Summary struct {
	Success int
	Failed  int
	Results []ResultDetail
}

// Client talks to the Riven items API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
	logger     *slog.Logger
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

// New creates a Riven client from configuration.
func New(cfg config.Riven, logger *slog.Logger, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "riven", "new", "api url required", nil)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "riven", "new", "api key required", nil)
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "riven"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// AddMedia reconciles Unknown items and submits the batch. It never returns
// an error; every failure class is folded into the Summary so the caller can
// report without unwinding the cycle.
func (c *Client) AddMedia(ctx context.Context, mediaType release.MediaType, releases []release.Release) Summary {
	if len(releases) == 0 {
		return Summary{}
	}

	tmdbIDs := make([]int64, 0, len(releases))
	for _, rel := range releases {
		tmdbIDs = append(tmdbIDs, rel.TMDBID)
	}

	// Items stuck in the Unknown state block re-requests; remove them so the
	// add below registers fresh entries.
	unknown, err := c.unknownItems(ctx, mediaType)
	if err != nil {
		c.logger.Warn("could not list unknown items, skipping reconciliation", logging.Error(err))
	} else if len(unknown) > 0 {
		var stale []int64
		for _, id := range tmdbIDs {
			if itemID, ok := unknown[id]; ok {
				stale = append(stale, itemID)
			}
		}
		if len(stale) > 0 {
			if err := c.removeItems(ctx, stale); err != nil {
				c.logger.Warn("could not remove unknown items", logging.Error(err))
			} else {
				c.logger.Info("removed stale unknown items", logging.Int("items", len(stale)))
			}
		}
	}

	detail := c.add(ctx, mediaType, tmdbIDs)
	summary := Summary{Results: []ResultDetail{detail}}
	if detail.Err == nil {
		summary.Success = len(releases)
	} else {
		summary.Failed = len(releases)
	}
	return summary
}

// Health probes the server health endpoint with a short deadline.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "riven", "health", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "riven", "health", "execute request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, "riven", "health",
			fmt.Sprintf("server returned %d", resp.StatusCode), nil)
	}
	return nil
}

type itemsPage struct {
	Items []struct {
		ID int64 `json:"id"`
		// Riven serializes tmdb_id as a string on some versions and as a
		// number on others.
		TMDBID json.RawMessage `json:"tmdb_id"`
	} `json:"items"`
}

// unknownItems lists items in the Unknown state, keyed by TMDB id.
func (c *Client) unknownItems(ctx context.Context, mediaType release.MediaType) (map[int64]int64, error) {
	params := url.Values{}
	params.Set("limit", "500")
	params.Set("page", "1")
	params.Set("type", string(mediaType))
	params.Set("states", "Unknown")
	params.Set("extended", "false")
	params.Set("count_only", "false")

	endpoint := c.baseURL + "/api/v1/items?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list items returned %d", resp.StatusCode)
	}

	var page itemsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	unknown := make(map[int64]int64, len(page.Items))
	for _, item := range page.Items {
		raw := strings.Trim(strings.TrimSpace(string(item.TMDBID)), `"`)
		tmdbID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		unknown[tmdbID] = item.ID
	}
	return unknown, nil
}

// removeItems deletes the given internal item ids.
func (c *Client) removeItems(ctx context.Context, ids []int64) error {
	body, err := json.Marshal(map[string][]int64{"ids": ids})
	if err != nil {
		return fmt.Errorf("encode ids: %w", err)
	}
	endpoint := c.baseURL + "/api/v1/items/remove"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remove items: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remove items returned %d", resp.StatusCode)
	}
	return nil
}

type addPayload struct {
	MediaType string  `json:"media_type"`
	TMDBIDs   []int64 `json:"tmdb_ids"`
}

// add posts the batch and classifies the response.
func (c *Client) add(ctx context.Context, mediaType release.MediaType, tmdbIDs []int64) ResultDetail {
	detail := ResultDetail{TMDBIDs: tmdbIDs}
	body, err := json.Marshal(addPayload{MediaType: string(mediaType), TMDBIDs: tmdbIDs})
	if err != nil {
		detail.Err = services.Wrap(services.ErrTransient, "riven", "add items", "encode payload", err)
		return detail
	}

	endpoint := c.baseURL + "/api/v1/items/add"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		detail.Err = services.Wrap(services.ErrTransient, "riven", "add items", "build request", err)
		return detail
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		detail.Err = services.Wrap(services.ErrTransient, "riven", "add items",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
		return detail
	}
	defer resp.Body.Close()
	detail.Status = resp.StatusCode

	switch resp.StatusCode {
	case http.StatusOK:
		detail.Message = "accepted"
	case http.StatusNotFound:
		detail.Err = services.Wrap(services.ErrNotFound, "riven", "add items", "endpoint missing", nil)
	case http.StatusUnprocessableEntity:
		detail.Err = services.Wrap(services.ErrValidation, "riven", "add items",
			fmt.Sprintf("payload rejected: %s", readErrorBody(resp.Body)), nil)
	default:
		detail.Err = services.Wrap(services.ErrTransient, "riven", "add items",
			fmt.Sprintf("server returned %d (latency=%v): %s", resp.StatusCode, latency, readErrorBody(resp.Body)), nil)
	}
	return detail
}

func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	return strings.TrimSpace(string(data))
}
