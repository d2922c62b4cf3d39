package source

import (
	"context"
	"fmt"
	"log/slog"

	"digitarr/internal/config"
	"digitarr/internal/release"
	"digitarr/internal/source/dvdreleases"
	"digitarr/internal/source/tmdb"
)

// Source produces the candidate releases for today. Implementations log and
// swallow internal failures, returning an empty slice instead of an error.
type Source interface {
	TodayReleases(ctx context.Context) []release.Release
}

// New builds the configured release source.
func New(cfg *config.Config, logger *slog.Logger) (Source, error) {
	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		return nil, fmt.Errorf("build tmdb client: %w", err)
	}
	switch cfg.Source.Provider {
	case "dvdsreleasedates":
		return dvdreleases.New(client, cfg.Source.Region, logger), nil
	default:
		return NewTMDB(client, cfg.Source.Region, logger), nil
	}
}
