package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Environment overrides. Values are applied after the file is decoded, so a
// set variable always wins over the file. List-valued variables are
// comma-separated.
func (c *Config) applyEnvOverrides() error {
	stringVars := map[string]*string{
		"TMDB_API_KEY":        &c.TMDB.APIKey,
		"OVERSEERR_API_URL":   &c.Overseerr.APIURL,
		"OVERSEERR_API_KEY":   &c.Overseerr.APIKey,
		"RIVEN_API_URL":       &c.Riven.APIURL,
		"RIVEN_API_KEY":       &c.Riven.APIKey,
		"DISCORD_WEBHOOK_URL": &c.Discord.WebhookURL,
		"RELEASE_SOURCE":      &c.Source.Provider,
		"RUN_TIME":            &c.Schedule.RunTime,
		"LOGGING_LEVEL":       &c.Logging.Level,
	}
	for name, target := range stringVars {
		if value, ok := lookupEnv(name); ok {
			*target = value
		}
	}

	listVars := map[string]*[]string{
		"FILTERS_ALLOWED_LANGUAGES":       &c.Filters.AllowedLanguages,
		"FILTERS_EXCLUDED_GENRES":         &c.Filters.ExcludedGenres,
		"FILTERS_EXCLUDED_CERTIFICATIONS": &c.Filters.ExcludedCertifications,
	}
	for name, target := range listVars {
		if value, ok := lookupEnv(name); ok {
			*target = splitList(value)
		}
	}

	if value, ok := lookupEnv("FILTERS_MIN_TMDB_RATING"); ok {
		rating, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("FILTERS_MIN_TMDB_RATING: parse %q: %w", value, err)
		}
		c.Filters.MinTMDBRating = rating
	}
	if value, ok := lookupEnv("FILTERS_EXCLUDE_ADULT"); ok {
		c.Filters.ExcludeAdult = parseBool(value)
	}
	if value, ok := lookupEnv("REQUEST_DELAY_MINUTES"); ok {
		minutes, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("REQUEST_DELAY_MINUTES: parse %q: %w", value, err)
		}
		c.Schedule.RequestDelayMinutes = minutes
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeSource()
	c.normalizeSinks()
	if err := c.normalizeFilters(); err != nil {
		return err
	}
	c.normalizeSchedule()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeSource() {
	c.Source.Provider = strings.ToLower(strings.TrimSpace(c.Source.Provider))
	if c.Source.Provider == "" {
		c.Source.Provider = defaultSourceProvider
	}
	c.Source.Region = strings.ToUpper(strings.TrimSpace(c.Source.Region))
	if c.Source.Region == "" {
		c.Source.Region = defaultSourceRegion
	}
}

func (c *Config) normalizeSinks() {
	c.Overseerr.APIURL = strings.TrimRight(strings.TrimSpace(c.Overseerr.APIURL), "/")
	c.Overseerr.APIKey = strings.TrimSpace(c.Overseerr.APIKey)
	if c.Overseerr.RequestTimeout <= 0 {
		c.Overseerr.RequestTimeout = defaultRequestTimeout
	}
	c.Riven.APIURL = strings.TrimRight(strings.TrimSpace(c.Riven.APIURL), "/")
	c.Riven.APIKey = strings.TrimSpace(c.Riven.APIKey)
	if c.Riven.RequestTimeout <= 0 {
		c.Riven.RequestTimeout = defaultRequestTimeout
	}
	c.Discord.WebhookURL = strings.TrimSpace(c.Discord.WebhookURL)
	if c.Discord.RequestTimeout <= 0 {
		c.Discord.RequestTimeout = defaultRequestTimeout
	}
}

// normalizeFilters lowers exclusion lists and canonicalizes language codes
// through BCP 47 parsing, so "EN" and "en-US" both reduce to "en".
func (c *Config) normalizeFilters() error {
	langs := make([]string, 0, len(c.Filters.AllowedLanguages))
	seen := make(map[string]struct{}, len(c.Filters.AllowedLanguages))
	for _, raw := range c.Filters.AllowedLanguages {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		tag, err := language.Parse(trimmed)
		if err != nil {
			return fmt.Errorf("filters.allowed_languages: unrecognized language code %q", raw)
		}
		base, _ := tag.Base()
		code := base.String()
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		langs = append(langs, code)
	}
	c.Filters.AllowedLanguages = langs

	c.Filters.ExcludedGenres = dedupeTrimmed(c.Filters.ExcludedGenres)
	c.Filters.ExcludedCertifications = dedupeTrimmed(c.Filters.ExcludedCertifications)
	return nil
}

func dedupeTrimmed(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func (c *Config) normalizeSchedule() {
	c.Schedule.RunTime = strings.TrimSpace(c.Schedule.RunTime)
	if c.Schedule.RequestDelayMinutes < 0 {
		c.Schedule.RequestDelayMinutes = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
