package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"digitarr/internal/checker"
	"digitarr/internal/config"
	"digitarr/internal/logging"
	"digitarr/internal/services"
)

// Scheduler drives the checker according to the schedule configuration.
type Scheduler struct {
	cfg      *config.Config
	checker  *checker.Checker
	logger   *slog.Logger
	lockPath string
	lock     *flock.Flock
	now      func() time.Time
	newRunID func() string
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the scheduler clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRunIDGenerator overrides run ID generation.
func WithRunIDGenerator(gen func() string) Option {
	return func(s *Scheduler) {
		if gen != nil {
			s.newRunID = gen
		}
	}
}

// New constructs a scheduler.
func New(cfg *config.Config, chk *checker.Checker, logger *slog.Logger, opts ...Option) *Scheduler {
	lockPath := filepath.Join(cfg.Paths.LogDir, "digitarr.lock")
	s := &Scheduler{
		cfg:      cfg,
		checker:  chk,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the configured schedule. In run-once mode it performs a
// single cycle and returns its outcome; in daily mode it loops until ctx is
// cancelled and only returns the cancellation cause or a lock failure.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.cfg.RunOnce() {
		if err := s.delay(ctx); err != nil {
			return err
		}
		s.runCycle(ctx)
		return nil
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "daemon", "start",
			fmt.Sprintf("acquire lock %s", s.lockPath), err)
	}
	if !ok {
		return services.Wrap(services.ErrConfiguration, "daemon", "start",
			"another digitarr instance is already running", nil)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release scheduler lock", logging.Error(err))
		}
	}()
	s.logger.Info("scheduler started",
		logging.String("run_time", s.cfg.Schedule.RunTime),
		logging.String("lock", s.lockPath),
	)

	for {
		next := nextRun(s.now(), s.cfg.Schedule.RunTime)
		s.logger.Info("next check scheduled", logging.String("at", next.Format(time.RFC3339)))
		if err := s.sleepUntil(ctx, next); err != nil {
			s.logger.Info("scheduler stopping", logging.Error(err))
			return nil
		}
		if err := s.delay(ctx); err != nil {
			s.logger.Info("scheduler stopping", logging.Error(err))
			return nil
		}
		s.runCycle(ctx)
	}
}

// runCycle executes one check under a fresh run ID. The cycle itself never
// returns an error; anything fatal inside it has already been logged with
// the run ID attached.
func (s *Scheduler) runCycle(ctx context.Context) {
	runID := s.newRunID()
	ctx = services.WithRunID(ctx, runID)
	logger := s.logger.With(logging.String(logging.FieldRunID, runID))

	logger.Info("check cycle starting")
	started := s.now()
	report := s.checker.Run(ctx)
	logger.Info("check cycle finished",
		logging.Int("qualified", report.Qualified),
		logging.Duration("elapsed", time.Since(started)),
	)
}

// delay sleeps for the configured request delay, if any.
func (s *Scheduler) delay(ctx context.Context) error {
	minutes := s.cfg.Schedule.RequestDelayMinutes
	if minutes <= 0 {
		return nil
	}
	s.logger.Info("delaying before check", logging.Int("minutes", minutes))
	return s.sleepUntil(ctx, s.now().Add(time.Duration(minutes)*time.Minute))
}

func (s *Scheduler) sleepUntil(ctx context.Context, deadline time.Time) error {
	wait := time.Until(deadline)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// nextRun returns the next wall-clock occurrence of runTime ("HH:MM") after
// now. time.Date normalizes day+1 across month and year boundaries.
func nextRun(now time.Time, runTime string) time.Time {
	parsed, err := time.Parse("15:04", runTime)
	if err != nil {
		// Validation catches this at load time; fall back to one day out.
		return now.Add(24 * time.Hour)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	}
	return next
}
