// package services defines interface Service for interacting with music catalog HTTP APIs
package services

import (
	"context"

	"github.com/desertthunder/scrapify/internal/models"
	"golang.org/x/oauth2"
)

// MaxTracksPerAdd is the most track URIs the catalog accepts in one add-to-playlist request.
const MaxTracksPerAdd = 100

// Service defines the catalog operations used to build a playlist from search terms.
type Service interface {
	// Authenticate exchanges credentials for an access token.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// SearchAlbum finds the best album for term and lists its track URIs.
	// A term with no match returns a result with no tracks and a nil error.
	SearchAlbum(ctx context.Context, term string) (*models.AlbumResult, error)

	// CreatePlaylist creates a private playlist for the current user.
	CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error)

	// AddTracksToPlaylist appends at most [MaxTracksPerAdd] track URIs to a playlist.
	AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends [Service] for providers that use the authorization code flow.
type OAuthService interface {
	Service
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
	Token() *oauth2.Token
}
