package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"digitarr/internal/checker"
	"digitarr/internal/config"
	"digitarr/internal/filter"
	"digitarr/internal/logging"
	"digitarr/internal/notifications"
	"digitarr/internal/services/overseerr"
	"digitarr/internal/services/riven"
	"digitarr/internal/source"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// buildChecker assembles the cycle components from configuration. Sinks
// without credentials stay nil and are skipped by the checker.
func (c *commandContext) buildChecker() (*checker.Checker, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	src, err := source.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	filters := filter.New(cfg.Filters, logger)

	var overseerrSink checker.OverseerrSink
	if cfg.OverseerrEnabled() {
		client, err := overseerr.New(cfg.Overseerr)
		if err != nil {
			return nil, nil, err
		}
		overseerrSink = client
	}

	var rivenSink checker.RivenSink
	if cfg.RivenEnabled() {
		client, err := riven.New(cfg.Riven, logger)
		if err != nil {
			return nil, nil, err
		}
		rivenSink = client
	}

	notifier := notifications.NewService(cfg, logger)
	return checker.New(src, filters, overseerrSink, rivenSink, notifier, logger), cfg, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
