package riven_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"digitarr/internal/config"
	"digitarr/internal/logging"
	"digitarr/internal/release"
	"digitarr/internal/services"
	"digitarr/internal/services/riven"
)

func testConfig(url string) config.Riven {
	return config.Riven{APIURL: url, APIKey: "secret", RequestTimeout: 5}
}

func testReleases(ids ...int64) []release.Release {
	releases := make([]release.Release, 0, len(ids))
	for _, id := range ids {
		releases = append(releases, release.Release{
			TMDBID:    id,
			Title:     fmt.Sprintf("Movie %d", id),
			MediaType: release.MediaTypeMovie,
		})
	}
	return releases
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := riven.New(config.Riven{APIKey: "secret"}, logging.NewNop()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing url, got %v", err)
	}
	if _, err := riven.New(config.Riven{APIURL: "http://localhost"}, logging.NewNop()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing key, got %v", err)
	}
}

func TestAddMediaReconcilesUnknownItems(t *testing.T) {
	var removedIDs []int64
	var addedTMDBIDs []int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "secret" {
			t.Errorf("expected api key header, got %q", got)
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/items":
			query := r.URL.Query()
			if query.Get("states") != "Unknown" || query.Get("limit") != "500" {
				t.Errorf("unexpected items query: %v", query)
			}
			// One stale item matches the batch, one does not, and one has a
			// numeric tmdb_id.
			fmt.Fprint(w, `{"items": [
				{"id": 900, "tmdb_id": "42"},
				{"id": 901, "tmdb_id": "555"},
				{"id": 902, "tmdb_id": 77}
			]}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/items/remove":
			var payload struct {
				IDs []int64 `json:"ids"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode remove payload: %v", err)
			}
			removedIDs = payload.IDs
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/items/add":
			var payload struct {
				MediaType string  `json:"media_type"`
				TMDBIDs   []int64 `json:"tmdb_ids"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode add payload: %v", err)
			}
			if payload.MediaType != "movie" {
				t.Errorf("expected media_type movie, got %q", payload.MediaType)
			}
			addedTMDBIDs = payload.TMDBIDs
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := riven.New(testConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("riven.New: %v", err)
	}
	summary := client.AddMedia(context.Background(), release.MediaTypeMovie, testReleases(42, 77, 108))

	if summary.Success != 3 || summary.Failed != 0 {
		t.Fatalf("expected 3 successes, got %+v", summary)
	}
	if len(removedIDs) != 2 {
		t.Fatalf("expected 2 stale items removed, got %v", removedIDs)
	}
	if len(addedTMDBIDs) != 3 {
		t.Fatalf("expected full batch added, got %v", addedTMDBIDs)
	}
}

func TestAddMediaProceedsWhenReconciliationFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/items":
			http.Error(w, "boom", http.StatusInternalServerError)
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/items/add":
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client, err := riven.New(testConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("riven.New: %v", err)
	}
	summary := client.AddMedia(context.Background(), release.MediaTypeMovie, testReleases(42))
	if summary.Success != 1 {
		t.Fatalf("expected add to proceed despite reconciliation failure, got %+v", summary)
	}
}

func TestAddMediaClassifiesResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantMarker error
	}{
		{name: "endpoint missing", status: http.StatusNotFound, wantMarker: services.ErrNotFound},
		{name: "payload rejected", status: http.StatusUnprocessableEntity, wantMarker: services.ErrValidation},
		{name: "server error", status: http.StatusInternalServerError, wantMarker: services.ErrTransient},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch {
				case r.Method == http.MethodGet && r.URL.Path == "/api/v1/items":
					fmt.Fprint(w, `{"items": []}`)
				case r.Method == http.MethodPost && r.URL.Path == "/api/v1/items/add":
					http.Error(w, tc.name, tc.status)
				default:
					http.NotFound(w, r)
				}
			}))
			defer server.Close()

			client, err := riven.New(testConfig(server.URL), logging.NewNop())
			if err != nil {
				t.Fatalf("riven.New: %v", err)
			}
			summary := client.AddMedia(context.Background(), release.MediaTypeMovie, testReleases(42, 43))
			if summary.Failed != 2 || summary.Success != 0 {
				t.Fatalf("expected all releases failed, got %+v", summary)
			}
			if len(summary.Results) != 1 {
				t.Fatalf("expected one result detail, got %d", len(summary.Results))
			}
			detail := summary.Results[0]
			if detail.Status != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, detail.Status)
			}
			if !errors.Is(detail.Err, tc.wantMarker) {
				t.Errorf("expected marker %v, got %v", tc.wantMarker, detail.Err)
			}
		})
	}
}

func TestAddMediaNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := riven.New(testConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("riven.New: %v", err)
	}
	summary := client.AddMedia(context.Background(), release.MediaTypeMovie, testReleases(42))
	if summary.Failed != 1 {
		t.Fatalf("expected failure on network error, got %+v", summary)
	}
	if !errors.Is(summary.Results[0].Err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", summary.Results[0].Err)
	}
}

func TestAddMediaEmptyBatch(t *testing.T) {
	client, err := riven.New(testConfig("http://localhost:9"), logging.NewNop())
	if err != nil {
		t.Fatalf("riven.New: %v", err)
	}
	summary := client.AddMedia(context.Background(), release.MediaTypeMovie, nil)
	if summary.Success != 0 || summary.Failed != 0 || len(summary.Results) != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := riven.New(testConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("riven.New: %v", err)
	}
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
}
