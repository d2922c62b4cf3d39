package overseerr_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"digitarr/internal/config"
	"digitarr/internal/release"
	"digitarr/internal/services"
	"digitarr/internal/services/overseerr"
)

func testConfig(url string) config.Overseerr {
	return config.Overseerr{APIURL: url, APIKey: "secret", RequestTimeout: 5}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := overseerr.New(config.Overseerr{APIKey: "secret"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing url, got %v", err)
	}
	if _, err := overseerr.New(config.Overseerr{APIURL: "http://localhost"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing key, got %v", err)
	}
}

func TestRequestSendsMediaPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/request" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("expected api key header, got %q", got)
		}
		var payload struct {
			MediaType string `json:"mediaType"`
			MediaID   int64  `json:"mediaId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.MediaType != "movie" || payload.MediaID != 42 {
			t.Errorf("unexpected payload: %+v", payload)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := overseerr.New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("overseerr.New: %v", err)
	}
	rel := release.Release{TMDBID: 42, Title: "Night Shift", MediaType: release.MediaTypeMovie}
	if err := client.Request(context.Background(), rel); err != nil {
		t.Fatalf("Request returned error: %v", err)
	}
}

func TestRequestConflictIsValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "already requested", http.StatusConflict)
	}))
	defer server.Close()

	client, err := overseerr.New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("overseerr.New: %v", err)
	}
	err = client.Request(context.Background(), release.Release{TMDBID: 42, MediaType: release.MediaTypeMovie})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for 409, got %v", err)
	}
}

func TestRequestServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := overseerr.New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("overseerr.New: %v", err)
	}
	err = client.Request(context.Background(), release.Release{TMDBID: 42, MediaType: release.MediaTypeMovie})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error for 500, got %v", err)
	}
}

func TestStatusReturnsVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"version": "1.33.2"}`)
	}))
	defer server.Close()

	client, err := overseerr.New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("overseerr.New: %v", err)
	}
	version, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if version != "1.33.2" {
		t.Fatalf("expected version 1.33.2, got %q", version)
	}
}
