// MusicBrainz API client
//
// https://musicbrainz.org/doc/MusicBrainz_API/Search
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/lidify/internal/match"
	"github.com/desertthunder/lidify/internal/ratelimit"
)

const musicBrainzBaseURL = "https://musicbrainz.org/ws/2"

// musicBrainzSearchLimit caps how many candidates one search returns.
const musicBrainzSearchLimit = 10

// MusicBrainzArtist is one ranked result from an artist search.
type MusicBrainzArtist struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	Disambiguation string `json:"disambiguation"`
	Type           string `json:"type"`
	Country        string `json:"country"`
}

type musicBrainzSearchResponse struct {
	Count   int                 `json:"count"`
	Artists []MusicBrainzArtist `json:"artists"`
}

// MusicBrainzService searches the MusicBrainz registry. Requests are
// rate-limited to one per second and carry the identifying User-Agent
// the MusicBrainz usage policy requires. Searches are never retried:
// resolution runs once per migrated artist and a deterministic query
// does not get better by asking again.
type MusicBrainzService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
}

// MusicBrainzOpts overrides the service's defaults, mainly for tests.
type MusicBrainzOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *ratelimit.Limiter
}

// NewMusicBrainzService creates a search client identifying itself with
// userAgent, e.g. "lidify/0.1.0 (https://github.com/desertthunder/lidify)".
func NewMusicBrainzService(userAgent string, opts *MusicBrainzOpts) (*MusicBrainzService, error) {
	if userAgent == "" {
		return nil, fmt.Errorf("missing musicbrainz user agent")
	}

	s := &MusicBrainzService{
		baseURL:    musicBrainzBaseURL,
		userAgent:  userAgent,
		httpClient: http.DefaultClient,
		limiter:    ratelimit.MusicBrainz(),
	}
	if opts != nil {
		if opts.BaseURL != "" {
			s.baseURL = opts.BaseURL
		}
		if opts.HTTPClient != nil {
			s.httpClient = opts.HTTPClient
		}
		if opts.Limiter != nil {
			s.limiter = opts.Limiter
		}
	}
	return s, nil
}

func (s *MusicBrainzService) Name() string {
	return "MusicBrainz"
}

// SearchArtist runs a name search and returns candidates in the
// registry's ranking order.
func (s *MusicBrainzService) SearchArtist(ctx context.Context, name string) ([]MusicBrainzArtist, error) {
	query := url.Values{}
	query.Set("query", fmt.Sprintf("artist:%q", name))
	query.Set("fmt", "json")
	query.Set("limit", fmt.Sprintf("%d", musicBrainzSearchLimit))
	endpoint := fmt.Sprintf("/artist?%s", query.Encode())

	var response musicBrainzSearchResponse
	err := s.limiter.Wait(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", s.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("network error calling GET /artist: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(resp.Body)
			return &APIError{
				Service:  "musicbrainz",
				Status:   resp.StatusCode,
				Method:   http.MethodGet,
				Endpoint: "/artist",
				Detail:   extractDetail(raw),
			}
		}

		return json.NewDecoder(resp.Body).Decode(&response)
	})
	if err != nil {
		return nil, err
	}
	return response.Artists, nil
}

// Candidates converts search results into the matcher's input shape.
func Candidates(artists []MusicBrainzArtist) []match.Candidate {
	out := make([]match.Candidate, 0, len(artists))
	for _, a := range artists {
		out = append(out, match.Candidate{ID: a.ID, Name: a.Name, Score: a.Score})
	}
	return out
}
