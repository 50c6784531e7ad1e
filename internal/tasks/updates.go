package tasks

import (
	"fmt"

	"github.com/desertthunder/scrapify/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Scrape Phase = iota
	CreatePlaylist
	SearchAlbums
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case Scrape:
		return "scrape"
	case CreatePlaylist:
		return "create_playlist"
	case SearchAlbums:
		return "search_albums"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

func scrapeUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Scrape,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Scraping %s...", url),
	}
}

func scrapedUpdate(terms []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Scrape,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d search terms", len(terms)),
		Data:    terms,
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %s...", name),
	}
}

func createdPlaylistUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func searchAlbumUpdate(step, total int, term string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching for album %s...", term),
	}
}

func searchedAlbumUpdate(step, total int, res TermResult) ProgressUpdate {
	msg := "Found!"
	switch {
	case res.Err != nil:
		msg = fmt.Sprintf("Failed: %v", res.Err)
	case !res.Found():
		msg = "Not Found"
	}
	return ProgressUpdate{
		Phase:   SearchAlbums,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}

func addTracksUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding %d tracks...", step, total, count),
	}
}
