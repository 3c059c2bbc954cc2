// Package services defines the [Source] interface for music catalog providers and clients for the external APIs a migration talks to.
//
// # Source Interface
//
// Catalog providers implement a common abstraction so the extraction step works uniformly across providers.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
//
// The [oauth2.Config] client automatically refreshes expired tokens using the refresh token.
// Requests pass through a shared rate limiter tuned to Spotify's published limits.
//
// # Lidarr Implementation
//
// [LidarrService] talks to a Lidarr server's v1 API using the X-Api-Key header.
// Requests are rate limited to one per second and retried with exponential
// backoff on network failures and 5xx responses. Client errors (4xx) fail
// immediately. Failures surface as [APIError] with the decoded error detail
// from the response body.
//
// # MusicBrainz Implementation
//
// [MusicBrainzService] queries the MusicBrainz search API to resolve artist
// names to MBIDs. MusicBrainz requires a distinct User-Agent and allows one
// request per second; requests are rate limited accordingly and never retried.
//
// # OAuth Service Extension
//
// The [OAuthService] interface extends Source for OAuth providers.
//
// [SpotifyService] implements this for the server-side OAuth flow used by the CLI.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrAPIRequest] : HTTP request failed
package services
