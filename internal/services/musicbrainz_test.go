package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/lidify/internal/ratelimit"
)

func testMusicBrainz(t *testing.T, baseURL string) *MusicBrainzService {
	t.Helper()

	srv, err := NewMusicBrainzService("lidify-test/0.0 (test@example.com)", &MusicBrainzOpts{
		BaseURL: baseURL,
		Limiter: ratelimit.New(1000, 10),
	})
	if err != nil {
		t.Fatalf("failed to create musicbrainz service: %v", err)
	}
	return srv
}

func TestMusicBrainzService(t *testing.T) {
	t.Run("requires user agent", func(t *testing.T) {
		if _, err := NewMusicBrainzService("", nil); err == nil {
			t.Error("expected error for missing user agent")
		}
	})

	t.Run("SearchArtist", func(t *testing.T) {
		t.Run("sends identifying user agent", func(t *testing.T) {
			var gotAgent, gotQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAgent = r.Header.Get("User-Agent")
				gotQuery = r.URL.Query().Get("query")
				w.Write([]byte(`{"count":2,"artists":[
					{"id":"mbid-1","name":"Radiohead","score":100,"type":"Group","country":"GB"},
					{"id":"mbid-2","name":"Radiohead Tribute Band","score":62}
				]}`))
			}))
			defer server.Close()

			artists, err := testMusicBrainz(t, server.URL).SearchArtist(context.Background(), "Radiohead")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotAgent != "lidify-test/0.0 (test@example.com)" {
				t.Errorf("expected identifying user agent, got %q", gotAgent)
			}
			if !strings.Contains(gotQuery, "Radiohead") {
				t.Errorf("expected artist name in query, got %q", gotQuery)
			}

			if len(artists) != 2 {
				t.Fatalf("expected 2 results, got %d", len(artists))
			}
			if artists[0].ID != "mbid-1" || artists[0].Score != 100 {
				t.Errorf("unexpected first result: %+v", artists[0])
			}
		})

		t.Run("does not retry failures", func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer server.Close()

			_, err := testMusicBrainz(t, server.URL).SearchArtist(context.Background(), "Radiohead")
			if err == nil {
				t.Fatal("expected error for 503 response")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %T: %v", err, err)
			}
			if apiErr.Status != http.StatusServiceUnavailable {
				t.Errorf("expected status 503, got %d", apiErr.Status)
			}
			if got := attempts.Load(); got != 1 {
				t.Errorf("expected a single attempt, got %d", got)
			}
		})

		t.Run("empty result set", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"count":0,"artists":[]}`))
			}))
			defer server.Close()

			artists, err := testMusicBrainz(t, server.URL).SearchArtist(context.Background(), "zxqvw nonexistent")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(artists) != 0 {
				t.Errorf("expected no results, got %v", artists)
			}
		})
	})

	t.Run("Candidates", func(t *testing.T) {
		artists := []MusicBrainzArtist{
			{ID: "mbid-1", Name: "Radiohead", Score: 100},
			{ID: "mbid-2", Name: "Radiohead Tribute Band", Score: 62},
		}

		candidates := Candidates(artists)
		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}
		if candidates[0].ID != "mbid-1" || candidates[0].Name != "Radiohead" || candidates[0].Score != 100 {
			t.Errorf("unexpected candidate mapping: %+v", candidates[0])
		}
	})
}
