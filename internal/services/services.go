// package services defines interface Source for catalog services and
// clients for the external APIs the migration talks to
//
// Spotify, MusicBrainz, Lidarr
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// Source defines the interface for catalog services a library can be
// extracted from (currently Spotify).
type Source interface {
	// Authenticate performs OAuth or API key authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// FollowedArtists retrieves every artist the authenticated user follows.
	FollowedArtists(ctx context.Context) ([]SourceArtist, error)

	// SavedAlbums retrieves every album saved in the user's library.
	SavedAlbums(ctx context.Context) ([]SourceAlbum, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends Source for providers using the OAuth2
// authorization code flow, exposing what the CLI's callback server
// needs to complete it.
type OAuthService interface {
	Source

	// GetAuthURL returns the authorization URL for the given CSRF state.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the provider's OAuth2 configuration.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate installs an already-issued token.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

// SourceArtist represents an artist extracted from a catalog service.
// Inputs to the migration are never mutated.
type SourceArtist struct {
	ID     string
	Name   string
	Genres []string
}

// SourceAlbum represents a saved album extracted from a catalog service.
// ArtistIDs carries the source IDs of every credited artist.
type SourceAlbum struct {
	ID          string
	Name        string
	ReleaseDate string
	ArtistIDs   []string
}

// APIError is a non-2xx response or an exhausted retry budget from one
// of the HTTP clients, carrying enough context to show the operator
// which call failed and why.
type APIError struct {
	Service  string
	Status   int
	Method   string
	Endpoint string
	Detail   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %d on %s %s: %s", e.Service, e.Status, e.Method, e.Endpoint, e.Detail)
}

// fieldError is one entry of a validation-failure array in an error
// response body.
type fieldError struct {
	PropertyName string `json:"propertyName"`
	ErrorMessage string `json:"errorMessage"`
}

// extractDetail pulls a human-readable message out of an error response
// body: a structured message field first, then a joined list of field
// errors, then the raw body.
func extractDetail(body []byte) string {
	var withMessage struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &withMessage); err == nil && withMessage.Message != "" {
		return withMessage.Message
	}

	var asString string
	if err := json.Unmarshal(body, &asString); err == nil && asString != "" {
		return asString
	}

	var fieldErrors []fieldError
	if err := json.Unmarshal(body, &fieldErrors); err == nil && len(fieldErrors) > 0 {
		parts := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			if fe.ErrorMessage != "" {
				parts = append(parts, fe.ErrorMessage)
			} else {
				parts = append(parts, fe.PropertyName)
			}
		}
		return strings.Join(parts, ", ")
	}

	return strings.TrimSpace(string(body))
}
