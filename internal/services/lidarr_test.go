package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/lidify/internal/ratelimit"
)

func testLidarr(t *testing.T, baseURL string) *LidarrService {
	t.Helper()

	srv, err := NewLidarrService(baseURL, "test_api_key", &LidarrOpts{
		Limiter: ratelimit.New(1000, 10),
		Backoff: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("failed to create lidarr service: %v", err)
	}
	return srv
}

func TestLidarrService(t *testing.T) {
	t.Run("NewLidarrService", func(t *testing.T) {
		t.Run("requires URL", func(t *testing.T) {
			if _, err := NewLidarrService("", "key", nil); err == nil {
				t.Error("expected error for missing URL")
			}
		})

		t.Run("requires API key", func(t *testing.T) {
			if _, err := NewLidarrService("http://localhost:8686", "", nil); err == nil {
				t.Error("expected error for missing API key")
			}
		})
	})

	t.Run("TestConnection", func(t *testing.T) {
		var gotKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/system/status" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			gotKey = r.Header.Get("X-Api-Key")
			json.NewEncoder(w).Encode(LidarrSystemStatus{Version: "2.0.7", AppName: "Lidarr"})
		}))
		defer server.Close()

		status, err := testLidarr(t, server.URL).TestConnection(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if status.Version != "2.0.7" {
			t.Errorf("expected version 2.0.7, got %s", status.Version)
		}
		if gotKey != "test_api_key" {
			t.Errorf("expected API key header, got %q", gotKey)
		}
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode([]LidarrQualityProfile{{ID: 1, Name: "Lossless"}})
		}))
		defer server.Close()

		profiles, err := testLidarr(t, server.URL).GetQualityProfiles(context.Background())
		if err != nil {
			t.Fatalf("expected success after retries, got %v", err)
		}

		if got := attempts.Load(); got != 3 {
			t.Errorf("expected exactly 3 attempts, got %d", got)
		}
		if len(profiles) != 1 || profiles[0].Name != "Lossless" {
			t.Errorf("unexpected profiles: %v", profiles)
		}
	})

	t.Run("surfaces APIError after retry exhaustion", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"message":"database is locked"}`))
		}))
		defer server.Close()

		_, err := testLidarr(t, server.URL).GetRootFolders(context.Background())
		if err == nil {
			t.Fatal("expected error after exhausting retries")
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %T: %v", err, err)
		}
		if apiErr.Status != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", apiErr.Status)
		}
		if apiErr.Detail != "database is locked" {
			t.Errorf("expected decoded detail, got %q", apiErr.Detail)
		}
		if got := attempts.Load(); got != 4 {
			t.Errorf("expected 4 attempts (initial plus 3 retries), got %d", got)
		}
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`[{"propertyName":"RootFolderPath","errorMessage":"Path is invalid"}]`))
		}))
		defer server.Close()

		_, err := testLidarr(t, server.URL).GetArtists(context.Background())
		if err == nil {
			t.Fatal("expected error for 400 response")
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %T: %v", err, err)
		}
		if apiErr.Status != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", apiErr.Status)
		}
		if apiErr.Endpoint != "/artist" {
			t.Errorf("expected endpoint /artist, got %s", apiErr.Endpoint)
		}
		if apiErr.Method != http.MethodGet {
			t.Errorf("expected method GET, got %s", apiErr.Method)
		}
		if apiErr.Detail != "Path is invalid" {
			t.Errorf("expected field error detail, got %q", apiErr.Detail)
		}
		if got := attempts.Load(); got != 1 {
			t.Errorf("expected a single attempt for 400, got %d", got)
		}
	})

	t.Run("AddArtist", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/v1/artist" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}

			var body LidarrArtist
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode request body: %v", err)
			}
			if body.ArtistName != "Boards of Canada" {
				t.Errorf("expected artist name in body, got %q", body.ArtistName)
			}
			if body.ForeignArtistID != "mbid-123" {
				t.Errorf("expected foreign artist ID in body, got %q", body.ForeignArtistID)
			}
			if !body.Monitored {
				t.Error("expected monitored to be set")
			}

			body.ID = 42
			json.NewEncoder(w).Encode(body)
		}))
		defer server.Close()

		added, err := testLidarr(t, server.URL).AddArtist(context.Background(), "Boards of Canada", "mbid-123", LidarrAddArtistInput{
			QualityProfileID:  1,
			MetadataProfileID: 1,
			RootFolderPath:    "/music",
			Monitored:         true,
			AddOptions:        LidarrAddOptions{Monitor: "all", SearchForMissingAlbums: true},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if added.ID != 42 {
			t.Errorf("expected assigned ID 42, got %d", added.ID)
		}
	})

	t.Run("MonitorAlbums", func(t *testing.T) {
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/api/v1/album/monitor" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		err := testLidarr(t, server.URL).MonitorAlbums(context.Background(), []int64{3, 5}, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		ids, ok := gotBody["albumIds"].([]any)
		if !ok || len(ids) != 2 {
			t.Errorf("expected two album IDs in body, got %v", gotBody)
		}
		if monitored, _ := gotBody["monitored"].(bool); !monitored {
			t.Errorf("expected monitored true in body, got %v", gotBody)
		}
	})

	t.Run("GetArtistAlbums", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/album" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("artistId") != "7" {
				t.Errorf("expected artistId=7, got %s", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode([]LidarrAlbum{{ID: 1, Title: "Geogaddi", ArtistID: 7}})
		}))
		defer server.Close()

		albums, err := testLidarr(t, server.URL).GetArtistAlbums(context.Background(), 7)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(albums) != 1 || albums[0].Title != "Geogaddi" {
			t.Errorf("unexpected albums: %v", albums)
		}
	})
}

func TestExtractDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "message field",
			body: `{"message":"Artist already exists"}`,
			want: "Artist already exists",
		},
		{
			name: "bare string",
			body: `"something went wrong"`,
			want: "something went wrong",
		},
		{
			name: "field errors with messages",
			body: `[{"propertyName":"Path","errorMessage":"Path is invalid"},{"propertyName":"QualityProfileId","errorMessage":"Profile not found"}]`,
			want: "Path is invalid, Profile not found",
		},
		{
			name: "field errors without messages fall back to property names",
			body: `[{"propertyName":"Path"},{"propertyName":"RootFolder"}]`,
			want: "Path, RootFolder",
		},
		{
			name: "raw body fallback",
			body: "  <html>Bad Gateway</html>\n",
			want: "<html>Bad Gateway</html>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractDetail([]byte(tt.body)); got != tt.want {
				t.Errorf("extractDetail(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}
