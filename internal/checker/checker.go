package checker

import (
	"context"
	"log/slog"

	"digitarr/internal/filter"
	"digitarr/internal/logging"
	"digitarr/internal/notifications"
	"digitarr/internal/release"
	"digitarr/internal/services/riven"
	"digitarr/internal/source"
)

// OverseerrSink submits a single release request.
type OverseerrSink interface {
	Request(ctx context.Context, rel release.Release) error
}

// RivenSink submits a batch of releases.
type RivenSink interface {
	AddMedia(ctx context.Context, mediaType release.MediaType, releases []release.Release) riven.Summary
}

// Report aggregates one cycle's results for logging and the CLI.
type Report struct {
	Found            int
	Qualified        int
	Releases         []release.Release
	Outcomes         map[string]notifications.Outcome
	OverseerrSuccess int
	OverseerrFailed  int
	Riven            riven.Summary
}

// Checker orchestrates a single check cycle across source, filter, sinks,
// and notifier. Either sink may be nil when unconfigured.
type Checker struct {
	source    source.Source
	filters   *filter.Engine
	overseerr OverseerrSink
	riven     RivenSink
	notifier  notifications.Service
	logger    *slog.Logger
}

// New constructs a Checker.
func New(src source.Source, filters *filter.Engine, overseerr OverseerrSink, rivenSink RivenSink, notifier notifications.Service, logger *slog.Logger) *Checker {
	return &Checker{
		source:    src,
		filters:   filters,
		overseerr: overseerr,
		riven:     rivenSink,
		notifier:  notifier,
		logger:    logging.NewComponentLogger(logger, "checker"),
	}
}

// Run executes one cycle and returns its report. Sink failures are recorded
// in the report and logged; they never abort the cycle.
func (c *Checker) Run(ctx context.Context) Report {
	report := Report{Outcomes: make(map[string]notifications.Outcome)}

	releases := c.source.TodayReleases(ctx)
	report.Found = len(releases)
	c.logger.Info("fetched today's releases", logging.Int("found", report.Found))

	filtered := c.filters.Apply(releases)
	report.Qualified = len(filtered)
	report.Releases = filtered
	c.logger.Info("filters applied", logging.Int("qualified", report.Qualified))

	if len(filtered) == 0 {
		c.logSummary(report)
		return report
	}

	for _, rel := range filtered {
		report.Outcomes[rel.Key()] = notifications.Outcome{}
	}

	if c.overseerr != nil {
		for _, rel := range filtered {
			if err := c.overseerr.Request(ctx, rel); err != nil {
				report.OverseerrFailed++
				c.logger.Warn("overseerr request failed",
					logging.String("title", rel.Title),
					logging.Int64("tmdb_id", rel.TMDBID),
					logging.Error(err),
				)
				continue
			}
			report.OverseerrSuccess++
			outcome := report.Outcomes[rel.Key()]
			outcome.Overseerr = true
			report.Outcomes[rel.Key()] = outcome
		}
	}

	if c.riven != nil {
		report.Riven = c.riven.AddMedia(ctx, release.MediaTypeMovie, filtered)
		for _, detail := range report.Riven.Results {
			if detail.Err != nil {
				c.logger.Warn("riven batch add failed", logging.Error(detail.Err))
			}
		}
		// The batch endpoint reports per-call, not per-title; any accepted
		// batch marks every release as requested through Riven.
		if report.Riven.Success > 0 {
			for key, outcome := range report.Outcomes {
				outcome.Riven = true
				report.Outcomes[key] = outcome
			}
		}
	}

	c.logSummary(report)

	if c.notifier != nil && c.notifier.Enabled() && len(report.Outcomes) > 0 {
		if err := c.notifier.SendReleaseNotifications(ctx, filtered, report.Outcomes); err != nil {
			c.logger.Warn("release notifications incomplete", logging.Error(err))
		}
	}
	return report
}

func (c *Checker) logSummary(report Report) {
	c.logger.Info("cycle complete",
		logging.Int("found", report.Found),
		logging.Int("qualified", report.Qualified),
		logging.Int("overseerr_success", report.OverseerrSuccess),
		logging.Int("overseerr_failed", report.OverseerrFailed),
		logging.Int("riven_success", report.Riven.Success),
		logging.Int("riven_failed", report.Riven.Failed),
	)
}
