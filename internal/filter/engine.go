package filter

import (
	"log/slog"
	"strings"

	"digitarr/internal/config"
	"digitarr/internal/logging"
	"digitarr/internal/release"
)

// Engine evaluates releases against the configured admission rules. A
// release must pass every rule to qualify; rejected releases are dropped
// from the output and logged at debug with the failing rule.
type Engine struct {
	minRating        float64
	excludeAdult     bool
	allowedLanguages map[string]struct{}
	excludedGenres   map[string]struct{}
	excludedCerts    map[string]struct{}
	logger           *slog.Logger
}

// New builds an Engine from filter configuration. Exclusion sets are matched
// case-insensitively; language codes are matched exactly (codes are
// canonically lowercase after config normalization).
func New(cfg config.Filters, logger *slog.Logger) *Engine {
	return &Engine{
		minRating:        cfg.MinTMDBRating,
		excludeAdult:     cfg.ExcludeAdult,
		allowedLanguages: toSet(cfg.AllowedLanguages, false),
		excludedGenres:   toSet(cfg.ExcludedGenres, true),
		excludedCerts:    toSet(cfg.ExcludedCertifications, true),
		logger:           logging.NewComponentLogger(logger, "filter"),
	}
}

// Apply returns the subsequence of releases that pass every admission rule,
// in input order.
func (e *Engine) Apply(releases []release.Release) []release.Release {
	qualified := make([]release.Release, 0, len(releases))
	for _, rel := range releases {
		if rule, ok := e.admit(rel); ok {
			qualified = append(qualified, rel)
		} else {
			e.logger.Debug("release rejected",
				logging.String("title", rel.Title),
				logging.Int64("tmdb_id", rel.TMDBID),
				logging.String("rule", rule),
			)
		}
	}
	return qualified
}

// admit reports whether the release passes all rules; when it does not, the
// name of the first failing rule is returned.
func (e *Engine) admit(rel release.Release) (string, bool) {
	// A missing vote average decodes as 0 and only passes a zero threshold.
	if rel.VoteAverage < e.minRating {
		return "min_tmdb_rating", false
	}
	if e.excludeAdult && rel.Adult {
		return "exclude_adult", false
	}
	if len(e.allowedLanguages) > 0 {
		if _, ok := e.allowedLanguages[rel.OriginalLanguage]; !ok {
			return "allowed_languages", false
		}
	}
	if len(e.excludedGenres) > 0 {
		for _, genre := range rel.GenreNames {
			if _, ok := e.excludedGenres[strings.ToLower(genre)]; ok {
				return "excluded_genres", false
			}
		}
	}
	// An empty or unknown certification never triggers exclusion.
	if len(e.excludedCerts) > 0 && rel.Certification != "" {
		if _, ok := e.excludedCerts[strings.ToLower(rel.Certification)]; ok {
			return "excluded_certifications", false
		}
	}
	return "", true
}

func toSet(values []string, lower bool) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if lower {
			trimmed = strings.ToLower(trimmed)
		}
		set[trimmed] = struct{}{}
	}
	return set
}
