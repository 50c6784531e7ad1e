// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/scrapify/internal/models"
	"github.com/desertthunder/scrapify/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultRedirectURI = "http://localhost:3000/callback"
	albumTracksPage    = 50
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Product     string `json:"product"` // premium, free, etc.
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a simplified Spotify album as returned by search.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	URI         string          `json:"uri"`
}

func (a SpotifyAlbum) model() *models.Album {
	artists := make([]string, len(a.Artists))
	for i, artist := range a.Artists {
		artists[i] = artist.Name
	}
	return &models.Album{
		ID:          a.ID,
		Name:        a.Name,
		Artists:     artists,
		ReleaseDate: a.ReleaseDate,
		TotalTracks: a.TotalTracks,
		URI:         a.URI,
	}
}

// SpotifySimpleTrack represents a track within an album listing.
type SpotifySimpleTrack struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TrackNumber int    `json:"track_number"`
	URI         string `json:"uri"`
}

// SpotifyPaginatedTracks represents a page of album tracks.
type SpotifyPaginatedTracks struct {
	Items  []SpotifySimpleTrack `json:"items"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
	Next   *string              `json:"next"`
}

// SpotifyAlbumSearch represents the albums section of a search response.
type SpotifyAlbumSearch struct {
	Albums struct {
		Items []SpotifyAlbum `json:"items"`
		Total int            `json:"total"`
	} `json:"albums"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       Owner  `json:"owner"`
	Public      bool   `json:"public"`
	URI         string `json:"uri"`
}

type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] for authentication and provides methods for search and playlist operations.
type SpotifyService struct {
	config         *oauth2.Config
	baseURL        string
	httpClient     *http.Client
	userID         string
	onTokenRefresh func(*oauth2.Token)

	mu    sync.Mutex
	token *oauth2.Token
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
//
// "username" is optional; without it the user is looked up through /me when a playlist is created.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:  config,
		baseURL: spotifyBaseURL,
		userID:  credentials["username"],
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the underlying [oauth2.Config].
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers fn to observe every new token, including the first one.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

// Token returns the most recent token, or nil before authentication.
func (s *SpotifyService) Token() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticate performs OAuth2 authentication with Spotify.
//
// Expects a "refresh_token", "auth_code" or "access_token" in credentials, checked in that order.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if refreshToken := credentials["refresh_token"]; refreshToken != "" {
		return s.useToken(ctx, &oauth2.Token{RefreshToken: refreshToken}, true)
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.useToken(ctx, token, false)
	}

	if accessToken := credentials["access_token"]; accessToken != "" {
		return s.useToken(ctx, &oauth2.Token{AccessToken: accessToken}, false)
	}

	return fmt.Errorf("%w: missing refresh_token, auth_code or access_token", shared.ErrMissingCredentials)
}

// useToken installs an HTTP client backed by token. With fetch set the token source is asked for a token
// immediately, which exchanges a bare refresh token for an access token.
func (s *SpotifyService) useToken(ctx context.Context, token *oauth2.Token, fetch bool) error {
	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		callback: s.observeToken,
	}

	if fetch {
		if _, err := source.Token(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
		}
	} else {
		s.observeToken(token)
	}

	s.httpClient = oauth2.NewClient(ctx, source)
	return nil
}

func (s *SpotifyService) observeToken(token *oauth2.Token) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.onTokenRefresh != nil {
		s.onTokenRefresh(token)
	}
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, retrieveErr)
		}
		return fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		var apiErr spotifyError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", shared.ErrTokenExpired, msg)
		}
		return fmt.Errorf("%w: %s %s: status %d: %s", shared.ErrAPIRequest, method, endpoint, resp.StatusCode, msg)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// currentUserID returns the configured username, or looks it up once.
func (s *SpotifyService) currentUserID(ctx context.Context) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}

	user, err := s.UserProfile(ctx)
	if err != nil {
		return "", err
	}
	s.userID = user.ID
	return s.userID, nil
}

// FindAlbum returns the first album hit for term, or nil when there is none.
func (s *SpotifyService) FindAlbum(ctx context.Context, term string) (*models.Album, error) {
	q := url.Values{}
	q.Set("q", term)
	q.Set("type", "album")
	q.Set("limit", "1")

	var response SpotifyAlbumSearch
	if err := s.doRequest(ctx, http.MethodGet, "/search?"+q.Encode(), nil, &response); err != nil {
		return nil, err
	}

	if len(response.Albums.Items) == 0 {
		return nil, nil
	}
	return response.Albums.Items[0].model(), nil
}

// AlbumTracks returns the URIs of every track on an album, following pagination.
func (s *SpotifyService) AlbumTracks(ctx context.Context, albumID string) ([]string, error) {
	uris := []string{}
	offset := 0

	for {
		endpoint := fmt.Sprintf("/albums/%s/tracks?limit=%d&offset=%d", url.PathEscape(albumID), albumTracksPage, offset)

		var page SpotifyPaginatedTracks
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, track := range page.Items {
			uris = append(uris, track.URI)
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	return uris, nil
}

// SearchAlbum searches for an album by term and returns its tracks.
func (s *SpotifyService) SearchAlbum(ctx context.Context, term string) (*models.AlbumResult, error) {
	result := &models.AlbumResult{Term: term, Tracks: []string{}}

	album, err := s.FindAlbum(ctx, term)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return result, nil
	}

	tracks, err := s.AlbumTracks(ctx, album.ID)
	if err != nil {
		return nil, err
	}

	result.Album = album
	result.Tracks = tracks
	return result, nil
}

// CreatePlaylist creates a private playlist for the current user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"name":        name,
		"public":      false,
		"description": "Created by scrapify",
	}

	var playlist SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:     playlist.ID,
		Name:   playlist.Name,
		Owner:  playlist.Owner.ID,
		Public: playlist.Public,
	}, nil
}

// AddTracksToPlaylist adds up to [MaxTracksPerAdd] track URIs to a playlist.
func (s *SpotifyService) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	if len(uris) > MaxTracksPerAdd {
		return fmt.Errorf("%w: %d tracks exceeds the limit of %d per request", shared.ErrInvalidArgument, len(uris), MaxTracksPerAdd)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, map[string]any{"uris": uris}, nil)
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports each new access token to callback.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}
