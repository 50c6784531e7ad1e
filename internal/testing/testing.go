// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/scrapify/internal/models"
	"golang.org/x/oauth2"
)

// MockService is a test double for [services.OAuthService].
//
// Albums maps a search term to its track URIs; terms without an entry are not found.
// SearchErrs fails the search for a term. AddErrOn fails the n-th (1-based) add request.
// RefreshErr fails only refresh token logins, AuthErr every login.
type MockService struct {
	Albums     map[string][]string
	SearchErrs map[string]error
	CreateErr  error
	AddErrOn   int
	AddErr     error
	AuthErr    error
	RefreshErr error
	AuthURL    string

	mu          sync.Mutex
	Searches    []string
	Created     []string
	Adds        [][]string
	Credentials map[string]string
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Credentials = credentials
	if credentials["refresh_token"] != "" && m.RefreshErr != nil {
		return m.RefreshErr
	}
	return m.AuthErr
}

func (m *MockService) SearchAlbum(ctx context.Context, term string) (*models.AlbumResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Searches = append(m.Searches, term)

	if err, ok := m.SearchErrs[term]; ok {
		return nil, err
	}

	result := &models.AlbumResult{Term: term, Tracks: []string{}}
	if tracks, ok := m.Albums[term]; ok {
		result.Album = &models.Album{ID: "album-" + term, Name: term}
		result.Tracks = tracks
	}
	return result, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, name)

	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return &models.Playlist{ID: "created-playlist", Name: name, Owner: "mock-user"}, nil
}

func (m *MockService) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Adds = append(m.Adds, uris)

	if m.AddErrOn > 0 && len(m.Adds) == m.AddErrOn {
		if m.AddErr != nil {
			return m.AddErr
		}
		return errors.New("add failed")
	}
	return nil
}

func (m *MockService) GetAuthURL(state string) string {
	return m.AuthURL + "?state=" + state
}

func (m *MockService) GetOAuthConfig() *oauth2.Config {
	return &oauth2.Config{ClientID: "mock", RedirectURL: "http://localhost:3000/callback"}
}

func (m *MockService) Token() *oauth2.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Credentials == nil {
		return nil
	}
	refresh := m.Credentials["refresh_token"]
	if refresh == "" {
		refresh = "mock-refresh-token"
	}
	return &oauth2.Token{AccessToken: "mock-access-token", RefreshToken: refresh}
}

// Tracks returns n distinct track URIs prefixed with prefix.
func Tracks(prefix string, n int) []string {
	uris := make([]string, n)
	for i := range uris {
		uris[i] = "spotify:track:" + prefix + "-" + strconv.Itoa(i)
	}
	return uris
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
