package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"digitarr/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
[tmdb]
api_key = "tmdb-key"

[riven]
api_url = "http://localhost:8083"
api_key = "riven-key"
`

func TestLoadMinimalConfig(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if !cfg.RivenEnabled() {
		t.Fatal("expected riven to be enabled")
	}
	if cfg.OverseerrEnabled() {
		t.Fatal("expected overseerr to be disabled")
	}
	if cfg.Source.Provider != "tmdb" {
		t.Fatalf("expected default source provider tmdb, got %q", cfg.Source.Provider)
	}
	if !cfg.Filters.ExcludeAdult {
		t.Fatal("expected exclude_adult default true")
	}
	if !cfg.RunOnce() {
		t.Fatal("expected empty run_time to mean run once")
	}
}

func TestLoadRequiresTMDBKey(t *testing.T) {
	path := writeConfig(t, `
[riven]
api_url = "http://localhost:8083"
api_key = "riven-key"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error when tmdb.api_key missing")
	}
}

func TestLoadRequiresAtLeastOneSink(t *testing.T) {
	path := writeConfig(t, `
[tmdb]
api_key = "tmdb-key"
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error when no sink configured")
	}
	if !strings.Contains(err.Error(), "at least one requester") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnvOverridesTakePrecedence(t *testing.T) {
	path := writeConfig(t, minimalConfig + `
[filters]
min_tmdb_rating = 5.0
`)
	t.Setenv("FILTERS_MIN_TMDB_RATING", "7.5")
	t.Setenv("OVERSEERR_API_URL", "https://overseerr.example")
	t.Setenv("OVERSEERR_API_KEY", "env-key")
	t.Setenv("RUN_TIME", "19:00")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Filters.MinTMDBRating != 7.5 {
		t.Fatalf("expected env rating 7.5, got %v", cfg.Filters.MinTMDBRating)
	}
	if !cfg.OverseerrEnabled() {
		t.Fatal("expected env-configured overseerr to be enabled")
	}
	if cfg.Overseerr.APIKey != "env-key" {
		t.Fatalf("expected env api key, got %q", cfg.Overseerr.APIKey)
	}
	if cfg.RunOnce() {
		t.Fatal("expected RUN_TIME override to disable run-once mode")
	}
}

func TestEnvListOverride(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	t.Setenv("FILTERS_EXCLUDED_GENRES", "Horror, Documentary ,")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Filters.ExcludedGenres) != 2 {
		t.Fatalf("expected 2 excluded genres, got %v", cfg.Filters.ExcludedGenres)
	}
	if cfg.Filters.ExcludedGenres[0] != "Horror" || cfg.Filters.ExcludedGenres[1] != "Documentary" {
		t.Fatalf("unexpected excluded genres: %v", cfg.Filters.ExcludedGenres)
	}
}

func TestAllowedLanguagesNormalized(t *testing.T) {
	path := writeConfig(t, minimalConfig + `
[filters]
allowed_languages = ["EN", "en-US", "Es"]
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []string{"en", "es"}
	if len(cfg.Filters.AllowedLanguages) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Filters.AllowedLanguages)
	}
	for i, code := range want {
		if cfg.Filters.AllowedLanguages[i] != code {
			t.Fatalf("expected %v, got %v", want, cfg.Filters.AllowedLanguages)
		}
	}
}

func TestAllowedLanguagesRejectsGarbage(t *testing.T) {
	path := writeConfig(t, minimalConfig + `
[filters]
allowed_languages = ["not a language"]
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unparseable language code")
	}
}

func TestValidateRatingRange(t *testing.T) {
	for _, rating := range []string{"-0.5", "10.5"} {
		path := writeConfig(t, minimalConfig)
		t.Setenv("FILTERS_MIN_TMDB_RATING", rating)
		if _, _, _, err := config.Load(path); err == nil {
			t.Fatalf("expected error for rating %s", rating)
		}
	}
}

func TestValidateURLScheme(t *testing.T) {
	path := writeConfig(t, `
[tmdb]
api_key = "tmdb-key"

[riven]
api_url = "localhost:8083"
api_key = "riven-key"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for URL without http scheme")
	}
}

func TestValidateRunTimeFormat(t *testing.T) {
	path := writeConfig(t, minimalConfig + `
[schedule]
run_time = "25:99"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for malformed run_time")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[tmdb]") {
		t.Fatal("sample config missing [tmdb] section")
	}
}
