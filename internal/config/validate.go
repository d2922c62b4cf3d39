package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Validate ensures the configuration is usable. Failures here are fatal at
// startup; no check cycle runs with an invalid configuration.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateSinks(); err != nil {
		return err
	}
	if err := c.validateFilters(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/digitarr/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'digitarr config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateSource() error {
	switch c.Source.Provider {
	case "tmdb", "dvdsreleasedates":
		return nil
	default:
		return fmt.Errorf("source.provider must be \"tmdb\" or \"dvdsreleasedates\", got %q", c.Source.Provider)
	}
}

func (c *Config) validateSinks() error {
	if !c.OverseerrEnabled() && !c.RivenEnabled() {
		return errors.New("at least one requester (overseerr or riven) must be configured with an API key")
	}
	if c.OverseerrEnabled() {
		if err := validateBaseURL("overseerr.api_url", c.Overseerr.APIURL); err != nil {
			return err
		}
	}
	if c.RivenEnabled() {
		if err := validateBaseURL("riven.api_url", c.Riven.APIURL); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateFilters() error {
	if c.Filters.MinTMDBRating < 0 || c.Filters.MinTMDBRating > 10 {
		return errors.New("filters.min_tmdb_rating must be between 0 and 10")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.RunTime == "" {
		return nil
	}
	if _, err := time.Parse("15:04", c.Schedule.RunTime); err != nil {
		return fmt.Errorf("schedule.run_time must be HH:MM (24-hour), got %q", c.Schedule.RunTime)
	}
	return nil
}

func validateBaseURL(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s must be set when the API key is configured", field)
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must start with http:// or https://", field)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host", field)
	}
	return nil
}
