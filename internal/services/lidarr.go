// Lidarr API client
//
// Response types based on https://lidarr.audio/docs/api/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/lidify/internal/ratelimit"
	"github.com/sethvargo/go-retry"
)

const (
	lidarrAPIPrefix = "/api/v1"

	// lidarrMaxRetries bounds transient-failure retries per call, so a
	// call is attempted at most lidarrMaxRetries+1 times.
	lidarrMaxRetries = 3

	defaultLidarrBackoff = 500 * time.Millisecond
)

// LidarrSystemStatus represents the /system/status response.
type LidarrSystemStatus struct {
	Version   string `json:"version"`
	AppName   string `json:"appName"`
	OSName    string `json:"osName"`
	StartTime string `json:"startTime"`
}

// LidarrQualityProfile represents a quality profile.
type LidarrQualityProfile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LidarrMetadataProfile represents a metadata profile.
type LidarrMetadataProfile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LidarrRootFolder represents a configured root folder.
type LidarrRootFolder struct {
	ID         int64  `json:"id"`
	Path       string `json:"path"`
	Accessible bool   `json:"accessible"`
	FreeSpace  int64  `json:"freeSpace"`
}

// LidarrImage represents an image attached to an artist or album.
type LidarrImage struct {
	CoverType string `json:"coverType"`
	URL       string `json:"url"`
}

// LidarrAddOptions controls what Lidarr does immediately after an
// artist is created.
type LidarrAddOptions struct {
	Monitor                string `json:"monitor"`
	Monitored              bool   `json:"monitored"`
	SearchForMissingAlbums bool   `json:"searchForMissingAlbums"`
}

// LidarrArtist represents an artist record. ForeignArtistID is the
// MusicBrainz identifier Lidarr uses as its canonical key.
type LidarrArtist struct {
	ID                int64             `json:"id,omitempty"`
	ArtistName        string            `json:"artistName"`
	ForeignArtistID   string            `json:"foreignArtistId"`
	Overview          string            `json:"overview,omitempty"`
	QualityProfileID  int64             `json:"qualityProfileId,omitempty"`
	MetadataProfileID int64             `json:"metadataProfileId,omitempty"`
	RootFolderPath    string            `json:"rootFolderPath,omitempty"`
	Monitored         bool              `json:"monitored"`
	AddOptions        *LidarrAddOptions `json:"addOptions,omitempty"`
	Images            []LidarrImage     `json:"images"`
	Tags              []int64           `json:"tags"`
}

// LidarrAlbum represents an album record belonging to an artist.
type LidarrAlbum struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ArtistID    int64  `json:"artistId"`
	Monitored   bool   `json:"monitored"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	AlbumType   string `json:"albumType,omitempty"`
}

// LidarrAddArtistInput is the caller-supplied configuration for an add.
type LidarrAddArtistInput struct {
	QualityProfileID  int64
	MetadataProfileID int64
	RootFolderPath    string
	Monitored         bool
	AddOptions        LidarrAddOptions
}

// LidarrService is an authenticated client for a Lidarr instance. Every
// request passes through the service's rate limiter, and transient
// failures (transport errors and 5xx responses) are retried with
// exponential backoff before surfacing an [APIError].
type LidarrService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	backoff    time.Duration
}

// LidarrOpts overrides the service's defaults, mainly for tests.
type LidarrOpts struct {
	HTTPClient *http.Client
	Limiter    *ratelimit.Limiter
	Backoff    time.Duration
}

// NewLidarrService creates a client for the Lidarr instance at baseURL,
// authenticating with apiKey.
func NewLidarrService(baseURL, apiKey string, opts *LidarrOpts) (*LidarrService, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("missing lidarr URL")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("missing lidarr API key")
	}

	s := &LidarrService{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		limiter:    ratelimit.Lidarr(),
		backoff:    defaultLidarrBackoff,
	}
	if opts != nil {
		if opts.HTTPClient != nil {
			s.httpClient = opts.HTTPClient
		}
		if opts.Limiter != nil {
			s.limiter = opts.Limiter
		}
		if opts.Backoff > 0 {
			s.backoff = opts.Backoff
		}
	}
	return s, nil
}

func (s *LidarrService) Name() string {
	return "Lidarr"
}

// doRequest performs one logical API call: rate-limited, retried on
// transient failure, JSON in and out.
func (s *LidarrService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	return s.limiter.Wait(func() error {
		b := retry.WithMaxRetries(lidarrMaxRetries, retry.NewExponential(s.backoff))
		return retry.Do(ctx, b, func(ctx context.Context) error {
			return s.roundTrip(ctx, method, endpoint, body, result)
		})
	})
}

// roundTrip is a single attempt. Network failures and 5xx responses
// come back wrapped retryable; everything else is terminal.
func (s *LidarrService) roundTrip(ctx context.Context, method, endpoint string, body, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+lidarrAPIPrefix+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return retry.RetryableError(fmt.Errorf("network error calling %s %s: %w", method, endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{
			Service:  "lidarr",
			Status:   resp.StatusCode,
			Method:   method,
			Endpoint: endpoint,
			Detail:   extractDetail(raw),
		}
		if resp.StatusCode >= 500 {
			return retry.RetryableError(apiErr)
		}
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// TestConnection verifies the URL and API key by fetching system status.
func (s *LidarrService) TestConnection(ctx context.Context) (*LidarrSystemStatus, error) {
	var status LidarrSystemStatus
	if err := s.doRequest(ctx, http.MethodGet, "/system/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetQualityProfiles lists the configured quality profiles.
func (s *LidarrService) GetQualityProfiles(ctx context.Context) ([]LidarrQualityProfile, error) {
	var profiles []LidarrQualityProfile
	if err := s.doRequest(ctx, http.MethodGet, "/qualityprofile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetMetadataProfiles lists the configured metadata profiles.
func (s *LidarrService) GetMetadataProfiles(ctx context.Context) ([]LidarrMetadataProfile, error) {
	var profiles []LidarrMetadataProfile
	if err := s.doRequest(ctx, http.MethodGet, "/metadataprofile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetRootFolders lists the configured root folders.
func (s *LidarrService) GetRootFolders(ctx context.Context) ([]LidarrRootFolder, error) {
	var folders []LidarrRootFolder
	if err := s.doRequest(ctx, http.MethodGet, "/rootfolder", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// GetArtists lists every artist already in the library.
func (s *LidarrService) GetArtists(ctx context.Context) ([]LidarrArtist, error) {
	var artists []LidarrArtist
	if err := s.doRequest(ctx, http.MethodGet, "/artist", nil, &artists); err != nil {
		return nil, err
	}
	return artists, nil
}

// GetAlbums lists every album in the library.
func (s *LidarrService) GetAlbums(ctx context.Context) ([]LidarrAlbum, error) {
	var albums []LidarrAlbum
	if err := s.doRequest(ctx, http.MethodGet, "/album", nil, &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

// LookupArtist searches Lidarr's own metadata lookup by name.
func (s *LidarrService) LookupArtist(ctx context.Context, term string) ([]LidarrArtist, error) {
	var results []LidarrArtist
	endpoint := fmt.Sprintf("/artist/lookup?term=%s", url.QueryEscape(term))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// AddArtist registers an artist by name and MusicBrainz ID with the
// caller's profile, root folder, and monitoring configuration.
func (s *LidarrService) AddArtist(ctx context.Context, name, foreignID string, input LidarrAddArtistInput) (*LidarrArtist, error) {
	body := LidarrArtist{
		ArtistName:        name,
		ForeignArtistID:   foreignID,
		QualityProfileID:  input.QualityProfileID,
		MetadataProfileID: input.MetadataProfileID,
		RootFolderPath:    input.RootFolderPath,
		Monitored:         input.Monitored,
		AddOptions:        &input.AddOptions,
		Images:            []LidarrImage{},
		Tags:              []int64{},
	}

	var added LidarrArtist
	if err := s.doRequest(ctx, http.MethodPost, "/artist", body, &added); err != nil {
		return nil, err
	}
	return &added, nil
}

// GetArtistAlbums fetches the albums Lidarr has materialized for one
// artist. Empty until Lidarr's background metadata refresh completes.
func (s *LidarrService) GetArtistAlbums(ctx context.Context, artistID int64) ([]LidarrAlbum, error) {
	var albums []LidarrAlbum
	endpoint := fmt.Sprintf("/album?artistId=%d", artistID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

// MonitorAlbums flips the monitored flag on a set of albums in one call.
func (s *LidarrService) MonitorAlbums(ctx context.Context, albumIDs []int64, monitored bool) error {
	body := struct {
		AlbumIDs  []int64 `json:"albumIds"`
		Monitored bool    `json:"monitored"`
	}{AlbumIDs: albumIDs, Monitored: monitored}

	return s.doRequest(ctx, http.MethodPut, "/album/monitor", body, nil)
}

// UpdateArtist writes an artist record back, used to re-monitor an
// artist added with monitor none.
func (s *LidarrService) UpdateArtist(ctx context.Context, artist *LidarrArtist) (*LidarrArtist, error) {
	var updated LidarrArtist
	endpoint := fmt.Sprintf("/artist/%d", artist.ID)
	if err := s.doRequest(ctx, http.MethodPut, endpoint, artist, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
