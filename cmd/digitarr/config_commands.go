package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"digitarr/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set tmdb.api_key (or export TMDB_API_KEY) before running digitarr.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s (exists: %s)\n\n", path, yesNo(exists))
			fmt.Fprintf(out, "source.provider: %s\n", cfg.Source.Provider)
			fmt.Fprintf(out, "source.region: %s\n", cfg.Source.Region)
			fmt.Fprintf(out, "tmdb.api_key: %s\n", redact(cfg.TMDB.APIKey))
			fmt.Fprintf(out, "overseerr.api_url: %s\n", cfg.Overseerr.APIURL)
			fmt.Fprintf(out, "overseerr.api_key: %s\n", redact(cfg.Overseerr.APIKey))
			fmt.Fprintf(out, "riven.api_url: %s\n", cfg.Riven.APIURL)
			fmt.Fprintf(out, "riven.api_key: %s\n", redact(cfg.Riven.APIKey))
			fmt.Fprintf(out, "discord.webhook_url: %s\n", redact(cfg.Discord.WebhookURL))
			fmt.Fprintf(out, "filters.min_tmdb_rating: %.1f\n", cfg.Filters.MinTMDBRating)
			fmt.Fprintf(out, "filters.exclude_adult: %s\n", yesNo(cfg.Filters.ExcludeAdult))
			fmt.Fprintf(out, "filters.allowed_languages: %s\n", strings.Join(cfg.Filters.AllowedLanguages, ", "))
			fmt.Fprintf(out, "filters.excluded_genres: %s\n", strings.Join(cfg.Filters.ExcludedGenres, ", "))
			fmt.Fprintf(out, "filters.excluded_certifications: %s\n", strings.Join(cfg.Filters.ExcludedCertifications, ", "))
			fmt.Fprintf(out, "schedule.run_time: %s\n", cfg.Schedule.RunTime)
			fmt.Fprintf(out, "schedule.request_delay_minutes: %d\n", cfg.Schedule.RequestDelayMinutes)
			fmt.Fprintf(out, "logging.format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "logging.level: %s\n", cfg.Logging.Level)
			return nil
		},
	}
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func redact(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(unset)"
	}
	return "********"
}
