package dvdreleases

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"digitarr/internal/logging"
	"digitarr/internal/release"
	"digitarr/internal/source/tmdb"
)

const (
	defaultPageURL = "https://www.dvdsreleasedates.com/digital-releases/"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// The page intermixes date headers like "Tuesday January 14, 2025" with
// movie rows; headers set the date context for the rows that follow.
var dateHeaderPattern = regexp.MustCompile(
	`(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\s+` +
		`(January|February|March|April|May|June|July|August|September|October|November|December)\s+` +
		`(\d{1,2}),\s+(\d{4})`)

// Navigation anchors also point at /movies/ paths; filter them by label.
var navigationTitles = map[string]struct{}{
	"digital releases":  {},
	"new dvd releases":  {},
	"release date news": {},
}

// Source scrapes the digital releases page and resolves titles through TMDB.
type Source struct {
	metadata   *tmdb.Client
	region     string
	pageURL    string
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithPageURL overrides the scraped page location.
func WithPageURL(pageURL string) Option {
	return func(s *Source) {
		if pageURL != "" {
			s.pageURL = pageURL
		}
	}
}

// WithHTTPClient overrides the HTTP client used to fetch the page.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithClock overrides the clock used to determine "today".
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a scraping release source backed by the given TMDB client.
func New(metadata *tmdb.Client, region string, logger *slog.Logger, opts ...Option) *Source {
	s := &Source{
		metadata:   metadata,
		region:     region,
		pageURL:    defaultPageURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
		logger:     logging.NewComponentLogger(logger, "source.dvdreleases"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type scrapedTitle struct {
	title string
	year  int
}

// TodayReleases scrapes today's digital releases and resolves each title on
// TMDB. Fetch, parse, and lookup failures are logged and recovered; the
// worst case is an empty result.
func (s *Source) TodayReleases(ctx context.Context) []release.Release {
	today := s.now()
	titles, err := s.scrape(ctx, today)
	if err != nil {
		s.logger.Error("scrape digital releases failed", logging.Error(err))
		return nil
	}
	if len(titles) == 0 {
		s.logger.Info("no digital releases listed for today")
		return nil
	}
	s.logger.Info("scraped release titles", logging.Int("titles", len(titles)))

	releases := make([]release.Release, 0, len(titles))
	for _, scraped := range titles {
		rel, ok := s.resolve(ctx, scraped)
		if !ok {
			s.logger.Warn("could not match title on tmdb", logging.String("title", scraped.title))
			continue
		}
		releases = append(releases, rel)
	}
	s.logger.Info("matched releases on tmdb", logging.Int("releases", len(releases)))
	return releases
}

func (s *Source) scrape(ctx context.Context, target time.Time) ([]scrapedTitle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return parseReleases(doc, target), nil
}

// parseReleases walks the page elements tracking the most recent date
// header, and collects movie links that appear under today's header.
func parseReleases(doc *goquery.Document, target time.Time) []scrapedTitle {
	targetDay := target.Format("2006-01-02")
	var currentDay string
	var titles []scrapedTitle
	seen := make(map[string]struct{})

	doc.Find("td, div, tr").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if match := dateHeaderPattern.FindStringSubmatch(text); match != nil {
			day, dayErr := strconv.Atoi(match[3])
			year, yearErr := strconv.Atoi(match[4])
			if dayErr == nil && yearErr == nil {
				parsed, err := time.Parse("January 2 2006", fmt.Sprintf("%s %d %d", match[2], day, year))
				if err == nil {
					currentDay = parsed.Format("2006-01-02")
				}
			}
		}

		if currentDay != targetDay {
			return
		}
		sel.Find("a").Each(func(_ int, link *goquery.Selection) {
			href, _ := link.Attr("href")
			title := strings.TrimSpace(link.Text())
			if !strings.Contains(href, "/movies/") || len(title) <= 1 {
				return
			}
			if _, nav := navigationTitles[strings.ToLower(title)]; nav {
				return
			}
			if _, dup := seen[title]; dup {
				return
			}
			seen[title] = struct{}{}
			titles = append(titles, scrapedTitle{title: title, year: target.Year()})
		})
	})
	return titles
}

// resolve searches TMDB for the scraped title (retrying once without the
// year) and enriches the best match with genres and certification. A failed
// details lookup keeps the search payload.
func (s *Source) resolve(ctx context.Context, scraped scrapedTitle) (release.Release, bool) {
	resp, err := s.metadata.SearchMovie(ctx, scraped.title, scraped.year)
	if err != nil {
		s.logger.Error("tmdb search failed", logging.String("title", scraped.title), logging.Error(err))
		return release.Release{}, false
	}
	if len(resp.Results) == 0 && scraped.year > 0 {
		resp, err = s.metadata.SearchMovie(ctx, scraped.title, 0)
		if err != nil {
			s.logger.Error("tmdb search failed", logging.String("title", scraped.title), logging.Error(err))
			return release.Release{}, false
		}
	}
	if len(resp.Results) == 0 {
		return release.Release{}, false
	}

	best := resp.Results[0]
	rel := release.Release{
		TMDBID:           best.ID,
		Title:            best.Title,
		Overview:         best.Overview,
		VoteAverage:      best.VoteAverage,
		ReleaseDate:      best.ReleaseDate,
		OriginalLanguage: best.OriginalLanguage,
		Adult:            best.Adult,
		MediaType:        release.MediaTypeMovie,
	}
	details, err := s.metadata.MovieDetails(ctx, best.ID)
	if err != nil {
		s.logger.Warn("movie details lookup failed, keeping release without genres",
			logging.Int64("tmdb_id", best.ID),
			logging.Error(err),
		)
		return rel, true
	}
	rel.GenreNames = details.GenreNames()
	rel.Certification = details.Certification(s.region)
	return rel, true
}
