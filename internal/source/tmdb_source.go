package source

import (
	"context"
	"log/slog"
	"time"

	"digitarr/internal/logging"
	"digitarr/internal/release"
	"digitarr/internal/source/tmdb"
)

// TMDBSource discovers today's digital releases directly through the TMDB
// discover endpoint.
type TMDBSource struct {
	client *tmdb.Client
	region string
	now    func() time.Time
	logger *slog.Logger
}

// TMDBOption configures a TMDBSource.
type TMDBOption func(*TMDBSource)

// WithTMDBClock overrides the clock used to determine "today".
func WithTMDBClock(now func() time.Time) TMDBOption {
	return func(s *TMDBSource) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTMDB constructs a TMDB-backed release source.
func NewTMDB(client *tmdb.Client, region string, logger *slog.Logger, opts ...TMDBOption) *TMDBSource {
	s := &TMDBSource{
		client: client,
		region: region,
		now:    time.Now,
		logger: logging.NewComponentLogger(logger, "source.tmdb"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TodayReleases lists movies with a digital release today. Discovery or
// lookup failures degrade rather than abort: a failed discover returns an
// empty slice, a failed details lookup keeps the release without genres and
// certification.
func (s *TMDBSource) TodayReleases(ctx context.Context) []release.Release {
	today := s.now()
	resp, err := s.client.DiscoverDigital(ctx, today, s.region)
	if err != nil {
		s.logger.Error("discover digital releases failed", logging.Error(err))
		return nil
	}

	releases := make([]release.Release, 0, len(resp.Results))
	for _, result := range resp.Results {
		rel := release.Release{
			TMDBID:           result.ID,
			Title:            result.Title,
			Overview:         result.Overview,
			VoteAverage:      result.VoteAverage,
			ReleaseDate:      result.ReleaseDate,
			OriginalLanguage: result.OriginalLanguage,
			Adult:            result.Adult,
			MediaType:        release.MediaTypeMovie,
		}
		details, err := s.client.MovieDetails(ctx, result.ID)
		if err != nil {
			s.logger.Warn("movie details lookup failed, keeping release without genres",
				logging.Int64("tmdb_id", result.ID),
				logging.String("title", result.Title),
				logging.Error(err),
			)
		} else {
			rel.GenreNames = details.GenreNames()
			rel.Certification = details.Certification(s.region)
		}
		releases = append(releases, rel)
	}
	s.logger.Info("tmdb discover complete", logging.Int("releases", len(releases)))
	return releases
}
