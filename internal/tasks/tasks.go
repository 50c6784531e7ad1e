// package tasks builds playlists from scraped search terms.
//
// The core abstraction is PlaylistEngine, which drives the scraper and the catalog one request at a time.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI.
package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/scrapify/internal/models"
	"github.com/desertthunder/scrapify/internal/seq"
	"github.com/desertthunder/scrapify/internal/services"
	"github.com/desertthunder/scrapify/internal/shared"
)

// Catalog is the part of a music service the engine needs.
type Catalog interface {
	SearchAlbum(ctx context.Context, term string) (*models.AlbumResult, error)
	CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error
}

// TermSource produces search terms from a page.
type TermSource interface {
	SearchTerms(ctx context.Context, url string, selectors []string) ([]string, error)
}

// PlaylistTarget names the playlist to fill. ID wins over Name; Name creates a new playlist.
type PlaylistTarget struct {
	ID   string
	Name string
}

// TermResult is the outcome of one album search.
type TermResult struct {
	Term   string
	Result *models.AlbumResult // nil when the search failed
	Err    error
}

// Found reports whether the search produced tracks.
func (r TermResult) Found() bool {
	return r.Result != nil && r.Result.Found()
}

// BuildResult contains all data from a playlist build.
type BuildResult struct {
	Playlist    *models.Playlist // Target playlist; only the ID is known for an existing one
	Created     bool             // Whether the playlist was created by this build
	Terms       []TermResult     // Per-term search outcomes, in term order
	TracksFound int              // Tracks across every found album
	TracksAdded int              // Tracks confirmed added to the playlist
	ChunksAdded int              // Add requests that succeeded
	ChunksTotal int              // Add requests planned
}

// Searched is the number of terms searched.
func (r *BuildResult) Searched() int {
	return len(r.Terms)
}

// Found is the number of terms that matched an album with tracks.
func (r *BuildResult) Found() int {
	n := 0
	for _, t := range r.Terms {
		if t.Found() {
			n++
		}
	}
	return n
}

// Missing is the number of terms with no album, including failed searches.
func (r *BuildResult) Missing() int {
	return r.Searched() - r.Found()
}

// Failed is the number of searches that returned an error.
func (r *BuildResult) Failed() int {
	n := 0
	for _, t := range r.Terms {
		if t.Err != nil {
			n++
		}
	}
	return n
}

// URI returns the playlist's spotify: URI.
func (r *BuildResult) URI() string {
	return r.Playlist.URI()
}

// URL returns the playlist's web player link.
func (r *BuildResult) URL() string {
	return r.Playlist.URL()
}

// PlaylistEngine drives scraping and playlist building.
type PlaylistEngine struct {
	catalog Catalog
	source  TermSource
}

// NewPlaylistEngine creates a new PlaylistEngine. Either collaborator may be nil when its operation is unused.
func NewPlaylistEngine(catalog Catalog, source TermSource) *PlaylistEngine {
	return &PlaylistEngine{catalog: catalog, source: source}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Scrape fetches url and returns the cleaned search terms found by selectors.
func (e *PlaylistEngine) Scrape(ctx context.Context, progress chan<- ProgressUpdate, url string, selectors []string) ([]string, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: scraper not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, scrapeUpdate(url))

	terms, err := e.source.SearchTerms(ctx, url, selectors)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoSearchTerms, url)
	}

	e.sendProgress(progress, scrapedUpdate(terms))
	return terms, nil
}

// Build searches the catalog for every term and adds the tracks it finds to target.
//
// A failed search is recorded in [BuildResult.Terms] and does not stop the build.
// Adding stops at the first failed chunk; the partial result is returned with the error.
func (e *PlaylistEngine) Build(ctx context.Context, progress chan<- ProgressUpdate, terms []string, target PlaylistTarget) (*BuildResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	result := &BuildResult{}

	playlist, err := e.resolvePlaylist(ctx, progress, target)
	if err != nil {
		return nil, err
	}
	result.Playlist = playlist
	result.Created = target.ID == ""

	result.Terms = e.searchAll(ctx, progress, terms)

	var tracks [][]string
	for _, t := range result.Terms {
		if t.Result != nil {
			tracks = append(tracks, t.Result.Tracks)
		}
	}
	uris := seq.Flatten(tracks)
	result.TracksFound = len(uris)

	if len(uris) == 0 {
		return result, nil
	}

	if err := e.addAll(ctx, progress, playlist.ID, uris, result); err != nil {
		return result, err
	}
	return result, nil
}

func (e *PlaylistEngine) resolvePlaylist(ctx context.Context, progress chan<- ProgressUpdate, target PlaylistTarget) (*models.Playlist, error) {
	if target.ID != "" {
		return &models.Playlist{ID: target.ID, Name: target.Name}, nil
	}
	if target.Name == "" {
		return nil, fmt.Errorf("%w: playlist id or name", shared.ErrMissingArgument)
	}

	e.sendProgress(progress, createPlaylistUpdate(target.Name))

	playlist, err := e.catalog.CreatePlaylist(ctx, target.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist %q: %w", target.Name, err)
	}

	e.sendProgress(progress, createdPlaylistUpdate(playlist))
	return playlist, nil
}

func (e *PlaylistEngine) searchAll(ctx context.Context, progress chan<- ProgressUpdate, terms []string) []TermResult {
	total := len(terms)
	outcomes := make([]TermResult, total)
	found := make([]*models.AlbumResult, total)

	jobs := make([]seq.Job[*models.AlbumResult], total)
	for i, term := range terms {
		jobs[i] = func(ctx context.Context) (*models.AlbumResult, error) {
			e.sendProgress(progress, searchAlbumUpdate(i+1, total, term))
			res, err := e.catalog.SearchAlbum(ctx, term)
			found[i] = res
			return res, err
		}
	}

	// Each result is reported as soon as its search settles, before the next one starts.
	settled := seq.OnSettled(func(i int, err error) {
		outcomes[i] = TermResult{Term: terms[i], Err: err}
		if err == nil {
			outcomes[i].Result = found[i]
		}
		e.sendProgress(progress, searchedAlbumUpdate(i+1, total, outcomes[i]))
	})

	seq.RunSequential(ctx, jobs, settled)
	return outcomes
}

func (e *PlaylistEngine) addAll(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, uris []string, result *BuildResult) error {
	chunks := seq.Chunk(uris, services.MaxTracksPerAdd)
	result.ChunksTotal = len(chunks)

	jobs := make([]seq.Job[int], len(chunks))
	for i, chunk := range chunks {
		jobs[i] = func(ctx context.Context) (int, error) {
			e.sendProgress(progress, addTracksUpdate(i+1, len(chunks), len(chunk)))
			if err := e.catalog.AddTracksToPlaylist(ctx, playlistID, chunk); err != nil {
				return 0, err
			}
			return len(chunk), nil
		}
	}

	var addErr error
	settled := seq.OnSettled(func(i int, err error) {
		if err != nil {
			addErr = err
		}
	})

	added := seq.Values(seq.RunSequential(ctx, jobs, seq.StopOnFailure(), settled))
	result.ChunksAdded = len(added)
	for _, n := range added {
		result.TracksAdded += n
	}

	if addErr != nil {
		return fmt.Errorf("failed to add tracks after %d of %d requests: %w", result.ChunksAdded, result.ChunksTotal, addErr)
	}
	return nil
}
