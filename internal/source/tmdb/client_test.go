package tmdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"digitarr/internal/source/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestDiscoverDigitalParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") != "key" {
			t.Fatalf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if q.Get("with_release_type") != "4" {
			t.Fatalf("expected digital release type filter, got %q", r.URL.RawQuery)
		}
		if q.Get("release_date.gte") != "2026-08-23" || q.Get("release_date.lte") != "2026-08-23" {
			t.Fatalf("expected single-day release window, got %q", r.URL.RawQuery)
		}
		if q.Get("region") != "US" {
			t.Fatalf("expected region US, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":42,"title":"Example","vote_average":7.1,"original_language":"en"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	day := time.Date(2026, time.August, 23, 12, 0, 0, 0, time.UTC)
	resp, err := client.DiscoverDigital(context.Background(), day, "US")
	if err != nil {
		t.Fatalf("DiscoverDigital returned error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != 42 {
		t.Fatalf("unexpected response: %#v", resp)
	}
}

func TestMovieDetailsCertificationAndGenres(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/42" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("append_to_response") != "release_dates" {
			t.Fatalf("expected release_dates append, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 42,
			"title": "Example",
			"genres": [{"id":27,"name":"Horror"},{"id":35,"name":"Comedy"}],
			"release_dates": {"results": [
				{"iso_3166_1":"DE","release_dates":[{"certification":"16"}]},
				{"iso_3166_1":"US","release_dates":[{"certification":""},{"certification":"R"}]}
			]}
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	details, err := client.MovieDetails(context.Background(), 42)
	if err != nil {
		t.Fatalf("MovieDetails returned error: %v", err)
	}
	if got := details.Certification("US"); got != "R" {
		t.Fatalf("expected US certification R, got %q", got)
	}
	if got := details.Certification("FR"); got != "" {
		t.Fatalf("expected empty certification for FR, got %q", got)
	}
	names := details.GenreNames()
	if len(names) != 2 || names[0] != "Horror" || names[1] != "Comedy" {
		t.Fatalf("unexpected genre names: %v", names)
	}
}

func TestSearchMovieHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status_code":500}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.SearchMovie(context.Background(), "fail", 0); err == nil {
		t.Fatal("expected error when TMDB returns non-200")
	}
}

func TestSearchMovieEmptyQuery(t *testing.T) {
	client, err := tmdb.New("key", "https://example.com", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.SearchMovie(context.Background(), "  ", 0); err == nil {
		t.Fatal("expected error for empty query")
	}
}
