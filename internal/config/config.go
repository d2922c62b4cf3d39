package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir string `toml:"log_dir"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// Source selects which upstream provider produces candidate releases.
type Source struct {
	Provider string `toml:"provider"` // "tmdb" or "dvdsreleasedates"
	Region   string `toml:"region"`   // release region for TMDB discover
}

// Overseerr contains connection settings for the Overseerr request sink.
// The sink is enabled when an API key is present.
type Overseerr struct {
	APIURL         string `toml:"api_url"`
	APIKey         string `toml:"api_key"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Riven contains connection settings for the Riven request sink.
// The sink is enabled when an API key is present.
type Riven struct {
	APIURL         string `toml:"api_url"`
	APIKey         string `toml:"api_key"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Filters contains the release admission rules.
type Filters struct {
	MinTMDBRating          float64  `toml:"min_tmdb_rating"`
	ExcludeAdult           bool     `toml:"exclude_adult"`
	AllowedLanguages       []string `toml:"allowed_languages"`
	ExcludedGenres         []string `toml:"excluded_genres"`
	ExcludedCertifications []string `toml:"excluded_certifications"`
}

// Schedule controls when checks run. An empty run_time means run once and
// exit; "HH:MM" means run daily at that local time.
type Schedule struct {
	RunTime             string `toml:"run_time"`
	RequestDelayMinutes int    `toml:"request_delay_minutes"`
}

// Discord contains webhook notification settings. Notifications are enabled
// when a webhook URL is present.
type Discord struct {
	WebhookURL     string `toml:"webhook_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Digitarr.
type Config struct {
	Paths     Paths     `toml:"paths"`
	TMDB      TMDB      `toml:"tmdb"`
	Source    Source    `toml:"source"`
	Overseerr Overseerr `toml:"overseerr"`
	Riven     Riven     `toml:"riven"`
	Filters   Filters   `toml:"filters"`
	Schedule  Schedule  `toml:"schedule"`
	Discord   Discord   `toml:"discord"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/digitarr/config.toml")
}

// Load locates, parses, and validates a configuration file. Environment
// overrides are applied after decoding so they take precedence over file
// values. The boolean reports whether a file existed at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("digitarr.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for operation.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// OverseerrEnabled reports whether the Overseerr sink is configured.
func (c *Config) OverseerrEnabled() bool {
	return strings.TrimSpace(c.Overseerr.APIKey) != ""
}

// RivenEnabled reports whether the Riven sink is configured.
func (c *Config) RivenEnabled() bool {
	return strings.TrimSpace(c.Riven.APIKey) != ""
}

// DiscordEnabled reports whether Discord notifications are configured.
func (c *Config) DiscordEnabled() bool {
	return strings.TrimSpace(c.Discord.WebhookURL) != ""
}

// RunOnce reports whether the checker should run a single cycle and exit.
func (c *Config) RunOnce() bool {
	return strings.TrimSpace(c.Schedule.RunTime) == ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
