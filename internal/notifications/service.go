package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"digitarr/internal/config"
	"digitarr/internal/logging"
	"digitarr/internal/release"
)

const userAgent = "Digitarr/0.1.0"

const maxDescriptionLength = 300

// Outcome records which sinks accepted a release during a cycle.
type Outcome struct {
	Overseerr bool
	Riven     bool
}

// Requested reports whether any sink accepted the release.
func (o Outcome) Requested() bool {
	return o.Overseerr || o.Riven
}

// Service defines the notification surface exposed to the checker and CLI.
type Service interface {
	Enabled() bool
	SendReleaseNotifications(ctx context.Context, releases []release.Release, outcomes map[string]Outcome) error
	TestNotification(ctx context.Context) error
}

// NewService builds a Discord-backed notification service when a webhook URL
// is configured, and a noop otherwise.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	webhookURL := strings.TrimSpace(cfg.Discord.WebhookURL)
	if webhookURL == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Discord.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &discordService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "notifications"),
	}
}

type noopService struct{}

func (noopService) Enabled() bool { return false }

func (noopService) SendReleaseNotifications(context.Context, []release.Release, map[string]Outcome) error {
	return nil
}

func (noopService) TestNotification(context.Context) error { return nil }

type discordService struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

func (d *discordService) Enabled() bool { return true }

// SendReleaseNotifications posts one embed per release that at least one
// sink accepted. Individual send failures are logged and do not stop the
// remaining notifications; the last failure is returned for the caller's
// log line.
func (d *discordService) SendReleaseNotifications(ctx context.Context, releases []release.Release, outcomes map[string]Outcome) error {
	var lastErr error
	sent := 0
	for _, rel := range releases {
		outcome, ok := outcomes[rel.Key()]
		if !ok || !outcome.Requested() {
			continue
		}
		if err := d.send(ctx, webhookPayload{Embeds: []embed{buildEmbed(rel, outcome)}}); err != nil {
			d.logger.Error("send release notification failed",
				logging.String("title", rel.Title),
				logging.Error(err),
			)
			lastErr = err
			continue
		}
		sent++
	}
	if sent > 0 {
		d.logger.Info("release notifications sent", logging.Int("sent", sent))
	}
	return lastErr
}

func (d *discordService) TestNotification(ctx context.Context) error {
	payload := webhookPayload{Embeds: []embed{{
		Title:       "Digitarr - Test",
		Description: "Notification system test",
	}}}
	return d.send(ctx, payload)
}

func buildEmbed(rel release.Release, outcome Outcome) embed {
	description := strings.TrimSpace(rel.Overview)
	if len(description) > maxDescriptionLength {
		description = description[:maxDescriptionLength] + "..."
	}

	var via []string
	if outcome.Overseerr {
		via = append(via, "Overseerr")
	}
	if outcome.Riven {
		via = append(via, "Riven")
	}

	fields := []embedField{
		{Name: "Rating", Value: fmt.Sprintf("%.1f", rel.VoteAverage), Inline: true},
		{Name: "Requested via", Value: strings.Join(via, ", "), Inline: true},
	}
	if rel.ReleaseDate != "" {
		fields = append(fields, embedField{Name: "Release date", Value: rel.ReleaseDate, Inline: true})
	}
	return embed{
		Title:       fmt.Sprintf("New digital release: %s", rel.Title),
		Description: description,
		Fields:      fields,
	}
}

func (d *discordService) send(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
