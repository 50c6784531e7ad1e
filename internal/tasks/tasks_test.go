package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/desertthunder/scrapify/internal/shared"
	tu "github.com/desertthunder/scrapify/internal/testing"
)

type stubSource struct {
	terms []string
	err   error
}

func (s *stubSource) SearchTerms(ctx context.Context, url string, selectors []string) ([]string, error) {
	return s.terms, s.err
}

func drain(progress chan ProgressUpdate) []ProgressUpdate {
	close(progress)
	var updates []ProgressUpdate
	for u := range progress {
		updates = append(updates, u)
	}
	return updates
}

func TestPlaylistEngineScrape(t *testing.T) {
	t.Run("returns terms", func(t *testing.T) {
		engine := NewPlaylistEngine(nil, &stubSource{terms: []string{"a", "b"}})
		progress := make(chan ProgressUpdate, 10)

		terms, err := engine.Scrape(context.Background(), progress, "https://example.com", []string{"td"})
		if err != nil {
			t.Fatalf("Scrape() error = %v", err)
		}
		if len(terms) != 2 {
			t.Errorf("expected 2 terms, got %v", terms)
		}

		updates := drain(progress)
		if last := updates[len(updates)-1]; last.Message != "Found 2 search terms" {
			t.Errorf("unexpected final update %q", last.Message)
		}
	})

	t.Run("no terms", func(t *testing.T) {
		engine := NewPlaylistEngine(nil, &stubSource{terms: []string{}})
		_, err := engine.Scrape(context.Background(), nil, "https://example.com", []string{"td"})
		if !errors.Is(err, shared.ErrNoSearchTerms) {
			t.Errorf("expected ErrNoSearchTerms, got %v", err)
		}
	})

	t.Run("source errors propagate", func(t *testing.T) {
		engine := NewPlaylistEngine(nil, &stubSource{err: shared.ErrSelectorMismatch})
		_, err := engine.Scrape(context.Background(), nil, "https://example.com", []string{"td", "li"})
		if !errors.Is(err, shared.ErrSelectorMismatch) {
			t.Errorf("expected ErrSelectorMismatch, got %v", err)
		}
	})

	t.Run("no source", func(t *testing.T) {
		_, err := NewPlaylistEngine(nil, nil).Scrape(context.Background(), nil, "https://example.com", nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestPlaylistEngineBuild(t *testing.T) {
	t.Run("creates playlist and skips failed searches", func(t *testing.T) {
		catalog := &tu.MockService{
			Albums: map[string][]string{
				"Slint Spiderland": tu.Tracks("spiderland", 6),
				"Low Secret Name":  tu.Tracks("secret", 12),
			},
			SearchErrs: map[string]error{"Broken Term": errors.New("boom")},
		}
		engine := NewPlaylistEngine(catalog, nil)
		progress := make(chan ProgressUpdate, 100)

		terms := []string{"Slint Spiderland", "Broken Term", "Nothing Here", "Low Secret Name"}
		result, err := engine.Build(context.Background(), progress, terms, PlaylistTarget{Name: "Best of"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		if !result.Created || result.Playlist.ID != "created-playlist" {
			t.Errorf("expected a created playlist, got %+v", result.Playlist)
		}
		if strings.Join(catalog.Searches, "|") != strings.Join(terms, "|") {
			t.Errorf("expected every term searched in order, got %v", catalog.Searches)
		}
		if result.Searched() != 4 || result.Found() != 2 || result.Missing() != 2 || result.Failed() != 1 {
			t.Errorf("unexpected counts searched=%d found=%d missing=%d failed=%d",
				result.Searched(), result.Found(), result.Missing(), result.Failed())
		}
		if result.Terms[1].Result != nil || result.Terms[1].Err == nil {
			t.Errorf("expected failed search slot, got %+v", result.Terms[1])
		}
		if result.TracksFound != 18 || result.TracksAdded != 18 {
			t.Errorf("expected 18 tracks found and added, got %d/%d", result.TracksFound, result.TracksAdded)
		}

		if len(catalog.Adds) != 1 || catalog.Adds[0][0] != "spotify:track:spiderland-0" || catalog.Adds[0][6] != "spotify:track:secret-0" {
			t.Errorf("expected tracks added in term order, got %v", catalog.Adds)
		}

		var phases []Phase
		for _, u := range drain(progress) {
			if len(phases) == 0 || phases[len(phases)-1] != u.Phase {
				phases = append(phases, u.Phase)
			}
		}
		want := []Phase{CreatePlaylist, SearchAlbums, AddTracks}
		if len(phases) != len(want) {
			t.Fatalf("unexpected phases %v", phases)
		}
		for i := range want {
			if phases[i] != want[i] {
				t.Errorf("phase %d = %s, want %s", i, phases[i], want[i])
			}
		}
	})

	t.Run("each search result follows its own start", func(t *testing.T) {
		catalog := &tu.MockService{
			Albums:     map[string][]string{"Slint Spiderland": tu.Tracks("spiderland", 6)},
			SearchErrs: map[string]error{"Broken Term": errors.New("boom")},
		}
		progress := make(chan ProgressUpdate, 100)

		terms := []string{"Slint Spiderland", "Broken Term", "Nothing Here"}
		if _, err := NewPlaylistEngine(catalog, nil).Build(context.Background(), progress, terms, PlaylistTarget{ID: "pl"}); err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		var got []string
		for _, u := range drain(progress) {
			if u.Phase != SearchAlbums {
				continue
			}
			if res, ok := u.Data.(TermResult); ok {
				got = append(got, fmt.Sprintf("%d:%s", u.Step, u.Message))
				if res.Term != terms[u.Step-1] {
					t.Errorf("result %d carries term %q", u.Step, res.Term)
				}
				continue
			}
			got = append(got, fmt.Sprintf("%d:start", u.Step))
		}

		want := []string{"1:start", "1:Found!", "2:start", "2:Failed: boom", "3:start", "3:Not Found"}
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("search updates = %v, want %v", got, want)
		}
	})

	t.Run("existing playlist id is not created", func(t *testing.T) {
		catalog := &tu.MockService{Albums: map[string][]string{"a": tu.Tracks("a", 1)}}
		result, err := NewPlaylistEngine(catalog, nil).Build(context.Background(), nil, []string{"a"}, PlaylistTarget{ID: "existing", Name: "ignored"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(catalog.Created) != 0 || result.Created {
			t.Error("expected no playlist to be created")
		}
		if result.URL() != "https://open.spotify.com/playlist/existing" {
			t.Errorf("unexpected URL %s", result.URL())
		}
	})

	t.Run("250 tracks are added in chunks of 100", func(t *testing.T) {
		catalog := &tu.MockService{Albums: map[string][]string{
			"one":   tu.Tracks("one", 120),
			"two":   tu.Tracks("two", 80),
			"three": tu.Tracks("three", 50),
		}}

		result, err := NewPlaylistEngine(catalog, nil).Build(context.Background(), nil, []string{"one", "two", "three"}, PlaylistTarget{ID: "pl"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		sizes := make([]int, len(catalog.Adds))
		for i, add := range catalog.Adds {
			sizes[i] = len(add)
		}
		if len(sizes) != 3 || sizes[0] != 100 || sizes[1] != 100 || sizes[2] != 50 {
			t.Errorf("expected chunks [100 100 50], got %v", sizes)
		}
		if result.ChunksAdded != 3 || result.ChunksTotal != 3 || result.TracksAdded != 250 {
			t.Errorf("unexpected add counts %+v", result)
		}
	})

	t.Run("add stops at the first failed chunk", func(t *testing.T) {
		addErr := errors.New("playlist is full")
		catalog := &tu.MockService{
			Albums:   map[string][]string{"big": tu.Tracks("big", 250)},
			AddErrOn: 2,
			AddErr:   addErr,
		}

		result, err := NewPlaylistEngine(catalog, nil).Build(context.Background(), nil, []string{"big"}, PlaylistTarget{ID: "pl"})
		if !errors.Is(err, addErr) {
			t.Fatalf("expected add error, got %v", err)
		}
		if len(catalog.Adds) != 2 {
			t.Errorf("expected third chunk not to be sent, got %d requests", len(catalog.Adds))
		}
		if result == nil || result.TracksAdded != 100 || result.ChunksAdded != 1 {
			t.Errorf("expected partial result with 100 tracks, got %+v", result)
		}
	})

	t.Run("nothing found adds nothing", func(t *testing.T) {
		catalog := &tu.MockService{}
		result, err := NewPlaylistEngine(catalog, nil).Build(context.Background(), nil, []string{"x", "y"}, PlaylistTarget{ID: "pl"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(catalog.Adds) != 0 || result.TracksAdded != 0 || result.Missing() != 2 {
			t.Errorf("expected no add requests, got %d", len(catalog.Adds))
		}
	})

	t.Run("create failure aborts", func(t *testing.T) {
		catalog := &tu.MockService{CreateErr: shared.ErrAPIRequest}
		_, err := NewPlaylistEngine(catalog, nil).Build(context.Background(), nil, []string{"x"}, PlaylistTarget{Name: "New"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if len(catalog.Searches) != 0 {
			t.Error("expected no searches after a failed create")
		}
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := NewPlaylistEngine(&tu.MockService{}, nil).Build(context.Background(), nil, []string{"x"}, PlaylistTarget{})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("full progress channel does not block", func(t *testing.T) {
		catalog := &tu.MockService{Albums: map[string][]string{"a": tu.Tracks("a", 3)}}
		progress := make(chan ProgressUpdate)

		if _, err := NewPlaylistEngine(catalog, nil).Build(context.Background(), progress, []string{"a"}, PlaylistTarget{ID: "pl"}); err != nil {
			t.Fatalf("Build() error = %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{Scrape, "scrape"},
		{CreatePlaylist, "create_playlist"},
		{SearchAlbums, "search_albums"},
		{AddTracks, "add_tracks"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
