package models

import "fmt"

// Album is a catalog album.
type Album struct {
	ID          string
	Name        string
	Artists     []string
	ReleaseDate string
	TotalTracks int
	URI         string
}

// AlbumResult is the outcome of searching the catalog for one term.
//
// An empty Tracks slice means nothing was found; that is not an error.
type AlbumResult struct {
	Term   string
	Album  *Album
	Tracks []string // Track URIs in album order
}

// Found reports whether the search produced any tracks.
func (r AlbumResult) Found() bool {
	return len(r.Tracks) > 0
}

// Playlist is a catalog playlist.
type Playlist struct {
	ID     string
	Name   string
	Owner  string
	Public bool
}

// URI returns the spotify: URI for the playlist.
func (p Playlist) URI() string {
	if p.Owner == "" {
		return fmt.Sprintf("spotify:playlist:%s", p.ID)
	}
	return fmt.Sprintf("spotify:user:%s:playlist:%s", p.Owner, p.ID)
}

// URL returns the web player link for the playlist.
func (p Playlist) URL() string {
	return fmt.Sprintf("https://open.spotify.com/playlist/%s", p.ID)
}
