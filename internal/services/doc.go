// Package services defines the [Service] interface for music catalogs and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] is an explicit client object: the CLI constructs it once and passes it to the
// playlist engine. There is no package-level client.
//
// Authentication accepts, in order of preference:
//   - refresh_token : exchanged through an [oauth2.TokenSource] that keeps refreshing as needed
//   - auth_code : exchanged once after the interactive authorization flow
//   - access_token : used as-is
//
// A callback registered with [SpotifyService.SetTokenRefreshCallback] observes every new token,
// so the CLI can print or save a rotated refresh token.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : the API answered 401
//   - [shared.ErrRefreshFailed] : the refresh token was rejected
//   - [shared.ErrAPIRequest] : any other non-2xx response
//
// An album search without hits is not an error; it yields an [models.AlbumResult] with no tracks.
package services
