// Spotify API implementation of [Source]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/lidify/internal/ratelimit"
	"github.com/desertthunder/lidify/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	spotifyPageLimit = 50
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Genres    []string       `json:"genres"`
	Followers followers      `json:"followers"`
	Images    []SpotifyImage `json:"images"`
	URI       string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

// SpotifySavedAlbum represents an album saved in the user's library.
type SpotifySavedAlbum struct {
	AddedAt string       `json:"added_at"`
	Album   SpotifyAlbum `json:"album"`
}

type cursors struct {
	After string `json:"after"`
}

// SpotifyFollowedArtists represents one cursor-paginated page of the
// user's followed artists.
type SpotifyFollowedArtists struct {
	Artists struct {
		Items   []SpotifyArtist `json:"items"`
		Total   int             `json:"total"`
		Limit   int             `json:"limit"`
		Cursors cursors         `json:"cursors"`
		Next    *string         `json:"next"`
	} `json:"artists"`
}

// SpotifyPaginatedAlbums represents one offset-paginated page of saved
// albums.
type SpotifyPaginatedAlbums struct {
	Items    []SpotifySavedAlbum `json:"items"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
}

// SpotifyService implements the Source interface for Spotify API interactions.
// Uses [oauth2] for authentication; requests pass through the Spotify
// rate limiter.
type SpotifyService struct {
	config      *oauth2.Config
	token       *oauth2.Token
	httpClient  *http.Client
	limiter     *ratelimit.Limiter
	credentials map[string]string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials")
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials")
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-email",
			"user-follow-read",
			"user-library-read",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:      config,
		httpClient:  http.DefaultClient,
		limiter:     ratelimit.Spotify(),
		credentials: credentials,
	}, nil
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("failed to exchange auth code: %w", err)
		}
		s.token = token
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	return fmt.Errorf("missing access_token or auth_code in credentials")
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 config for the callback handler.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// OAuthenticate installs an already-issued token, wiring up automatic
// refresh through the config's token source.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return shared.ErrInvalidCredentials
	}
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
	return nil
}

// Token returns the current OAuth2 token, nil before Authenticate.
func (s *SpotifyService) Token() *oauth2.Token {
	return s.token
}

// doRequest performs an authenticated, rate-limited HTTP request to the
// Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	if s.token == nil {
		return shared.ErrNotAuthenticated
	}

	return s.limiter.Wait(func() error {
		req, err := http.NewRequestWithContext(ctx, method, spotifyBaseURL+endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: spotify rejected the access token", shared.ErrTokenExpired)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{
				Service:  "spotify",
				Status:   resp.StatusCode,
				Method:   method,
				Endpoint: endpoint,
				Detail:   http.StatusText(resp.StatusCode),
			}
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}

		return nil
	})
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FollowedArtistsPage retrieves one page of followed artists, starting
// after the given cursor (empty for the first page).
func (s *SpotifyService) FollowedArtistsPage(ctx context.Context, after string) (*SpotifyFollowedArtists, error) {
	query := url.Values{}
	query.Set("type", "artist")
	query.Set("limit", fmt.Sprintf("%d", spotifyPageLimit))
	if after != "" {
		query.Set("after", after)
	}
	endpoint := fmt.Sprintf("/me/following?%s", query.Encode())

	var response SpotifyFollowedArtists
	if err := s.doRequest(ctx, http.MethodGet, endpoint, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// SavedAlbumsPage retrieves one page of the user's saved albums.
func (s *SpotifyService) SavedAlbumsPage(ctx context.Context, offset int) (*SpotifyPaginatedAlbums, error) {
	endpoint := fmt.Sprintf("/me/albums?limit=%d&offset=%d", spotifyPageLimit, offset)

	var response SpotifyPaginatedAlbums
	if err := s.doRequest(ctx, http.MethodGet, endpoint, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Source interface implementation

// FollowedArtists walks the cursor pagination and returns every
// followed artist.
func (s *SpotifyService) FollowedArtists(ctx context.Context) ([]SourceArtist, error) {
	var all []SourceArtist
	after := ""

	for {
		page, err := s.FollowedArtistsPage(ctx, after)
		if err != nil {
			return nil, err
		}

		for _, a := range page.Artists.Items {
			all = append(all, SourceArtist{
				ID:     a.ID,
				Name:   a.Name,
				Genres: a.Genres,
			})
		}

		if page.Artists.Next == nil || page.Artists.Cursors.After == "" {
			break
		}
		after = page.Artists.Cursors.After
	}

	return all, nil
}

// SavedAlbums walks the offset pagination and returns every saved album.
func (s *SpotifyService) SavedAlbums(ctx context.Context) ([]SourceAlbum, error) {
	var all []SourceAlbum
	offset := 0

	for {
		page, err := s.SavedAlbumsPage(ctx, offset)
		if err != nil {
			return nil, err
		}

		for _, saved := range page.Items {
			album := SourceAlbum{
				ID:          saved.Album.ID,
				Name:        saved.Album.Name,
				ReleaseDate: saved.Album.ReleaseDate,
			}
			for _, artist := range saved.Album.Artists {
				album.ArtistIDs = append(album.ArtistIDs, artist.ID)
			}
			all = append(all, album)
		}

		if page.Next == nil {
			break
		}
		offset += spotifyPageLimit
	}

	return all, nil
}
