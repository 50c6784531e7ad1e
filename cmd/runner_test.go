package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scrapify/internal/services"
	"github.com/desertthunder/scrapify/internal/shared"
	tu "github.com/desertthunder/scrapify/internal/testing"
	"github.com/desertthunder/scrapify/internal/ui"
)

const chartPage = `<table>
<tr><td class="artist">Slint</td><td class="album">Spiderland</td></tr>
<tr><td class="artist">Low</td><td class="album">Secret Name</td></tr>
<tr><td class="artist">Simon and Garfunkel</td><td class="album">Bookends</td></tr>
</table>`

func mapLookup(values map[string]string) shared.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func pageServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type testRunner struct {
	*Runner
	out     *bytes.Buffer
	spotify *tu.MockService
}

func newTestRunner(t *testing.T, env map[string]string, input string) *testRunner {
	t.Helper()
	out := &bytes.Buffer{}
	spotify := &tu.MockService{Albums: map[string][]string{
		"Slint Spiderland":         tu.Tracks("spiderland", 6),
		"Simon Garfunkel Bookends": tu.Tracks("bookends", 12),
	}}

	r := NewRunner(RunnerOpts{
		Config:   shared.DefaultConfig(),
		Spotify:  spotify,
		Prompter: ui.NewLinePrompter(strings.NewReader(input), out),
		Lookup:   mapLookup(env),
		Logger:   log.New(&bytes.Buffer{}),
		Output:   out,
	})
	return &testRunner{Runner: r, out: out, spotify: spotify}
}

func (tr *testRunner) run(args ...string) error {
	return newApp(tr.Runner).Run(context.Background(), append([]string{"scrapify", "--env", ""}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			spotify := &tu.MockService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Spotify:    spotify,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.spotify != spotify {
				t.Error("expected spotify to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.prompter == nil {
				t.Error("expected a default prompter")
			}
		})
	})

	t.Run("Setup", func(t *testing.T) {
		t.Run("builds spotify from config and .env", func(t *testing.T) {
			dir := t.TempDir()
			configPath := filepath.Join(dir, "config.toml")
			envPath := filepath.Join(dir, ".env")

			config := shared.DefaultConfig()
			config.Credentials.Spotify.ClientID = "from-config"
			if err := shared.SaveConfig(configPath, config); err != nil {
				t.Fatalf("SaveConfig() error = %v", err)
			}
			if err := os.WriteFile(envPath, []byte("CLIENT_SECRET=from-dotenv\n"), 0600); err != nil {
				t.Fatalf("failed to write .env: %v", err)
			}

			r := NewRunner(RunnerOpts{Lookup: mapLookup(nil), Output: &bytes.Buffer{}, Logger: log.New(&bytes.Buffer{})})
			app := newApp(r)
			err := app.Run(context.Background(), []string{"scrapify", "--config", configPath, "--env", envPath, "config", "init"})
			if err == nil {
				t.Fatal("expected config init to refuse overwriting")
			}

			svc, ok := r.spotify.(*services.SpotifyService)
			if !ok {
				t.Fatalf("expected a SpotifyService, got %T", r.spotify)
			}
			if cfg := svc.GetOAuthConfig(); cfg.ClientID != "from-config" || cfg.ClientSecret != "from-dotenv" {
				t.Errorf("unexpected oauth config %+v", cfg)
			}
			if r.engine == nil || r.scraper == nil {
				t.Error("expected engine and scraper to be wired")
			}
		})

		t.Run("without credentials commands needing spotify fail", func(t *testing.T) {
			r := NewRunner(RunnerOpts{Lookup: mapLookup(nil), Output: &bytes.Buffer{}, Logger: log.New(&bytes.Buffer{})})
			err := newApp(r).Run(context.Background(), []string{"scrapify", "--config", filepath.Join(t.TempDir(), "none.toml"), "--env", "", "auth"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := runner.writeJSON([]string{"a"}, false); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestRun(t *testing.T) {
	t.Run("scrapes, confirms and builds", func(t *testing.T) {
		page := pageServer(t, chartPage)
		tr := newTestRunner(t, map[string]string{
			shared.EnvPageURL:       page.URL,
			shared.EnvQuerySelector: "td.artist, td.album",
			shared.EnvPlaylistID:    "",
			shared.EnvPlaylistName:  "Best of",
			shared.EnvRefreshToken:  "stored-refresh",
		}, "\n")

		if err := tr.run("run"); err != nil {
			t.Fatalf("run error = %v", err)
		}

		out := tr.out.String()
		for _, want := range []string{
			"Using PAGE_URL from environment",
			"Found 3 search terms",
			"Simon Garfunkel Bookends",
			"Look OK? Hit enter to continue [Y/n]",
			"Searching for album Low Secret Name... Not Found",
			"Searched for 3 albums; 2 found, 1 missing",
			"Added 18 tracks",
			"spotify:user:mock-user:playlist:created-playlist",
			"https://open.spotify.com/playlist/created-playlist",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q\n%s", want, out)
			}
		}

		if tr.spotify.Credentials["refresh_token"] != "stored-refresh" {
			t.Errorf("expected refresh token login, got %v", tr.spotify.Credentials)
		}
		if len(tr.spotify.Created) != 1 || tr.spotify.Created[0] != "Best of" {
			t.Errorf("expected playlist to be created, got %v", tr.spotify.Created)
		}
	})

	t.Run("flags win and --yes skips the prompt", func(t *testing.T) {
		page := pageServer(t, chartPage)
		tr := newTestRunner(t, map[string]string{shared.EnvRefreshToken: "r"}, "")

		err := tr.run("run", "--url", page.URL, "--selector", "td.artist", "--selector", "td.album", "--playlist-id", "existing", "--yes")
		if err != nil {
			t.Fatalf("run error = %v", err)
		}
		if len(tr.spotify.Created) != 0 {
			t.Error("expected existing playlist to be used")
		}
		if len(tr.spotify.Adds) != 1 || len(tr.spotify.Adds[0]) != 18 {
			t.Errorf("unexpected add requests %v", tr.spotify.Adds)
		}
	})

	t.Run("--report writes the build report", func(t *testing.T) {
		page := pageServer(t, chartPage)
		tr := newTestRunner(t, map[string]string{shared.EnvRefreshToken: "r"}, "")
		report := filepath.Join(t.TempDir(), "report.csv")

		err := tr.run("run", "--url", page.URL, "--selector", "td.artist,td.album", "--playlist-id", "existing", "--yes", "--report", report)
		if err != nil {
			t.Fatalf("run error = %v", err)
		}

		data := tu.MustReadFile(t, report)
		if !strings.Contains(data, "Slint Spiderland,found") || !strings.Contains(data, "Low Secret Name,missing") {
			t.Errorf("unexpected report:\n%s", data)
		}
		if !strings.Contains(tr.out.String(), "Report written to") {
			t.Errorf("expected report notice, got %q", tr.out.String())
		}
	})

	t.Run("declining aborts before any search", func(t *testing.T) {
		page := pageServer(t, chartPage)
		tr := newTestRunner(t, map[string]string{
			shared.EnvPageURL:       page.URL,
			shared.EnvQuerySelector: "td.album",
			shared.EnvPlaylistID:    "pl",
		}, "n\n")

		if err := tr.run("run"); !errors.Is(err, shared.ErrAborted) {
			t.Fatalf("expected ErrAborted, got %v", err)
		}
		if len(tr.spotify.Searches) != 0 {
			t.Error("expected no searches after abort")
		}
	})

	t.Run("missing values are asked for", func(t *testing.T) {
		page := pageServer(t, chartPage)
		tr := newTestRunner(t, map[string]string{shared.EnvNoConfirm: "1", shared.EnvRefreshToken: "r"},
			page.URL+"\ntd.album\n\nFresh Playlist\n")

		if err := tr.run("run"); err != nil {
			t.Fatalf("run error = %v", err)
		}
		for _, want := range []string{"Full URL to scrape: ", "Query selectors, separated by commas: ", "Name for the new playlist: "} {
			if !strings.Contains(tr.out.String(), want) {
				t.Errorf("expected prompt %q", want)
			}
		}
		if len(tr.spotify.Created) != 1 || tr.spotify.Created[0] != "Fresh Playlist" {
			t.Errorf("expected playlist from prompt, got %v", tr.spotify.Created)
		}
	})

	t.Run("zero search terms", func(t *testing.T) {
		page := pageServer(t, "<p>nothing</p>")
		tr := newTestRunner(t, map[string]string{
			shared.EnvPageURL:       page.URL,
			shared.EnvQuerySelector: "td.album",
			shared.EnvPlaylistID:    "pl",
		}, "")

		if err := tr.run("run"); !errors.Is(err, shared.ErrNoSearchTerms) {
			t.Errorf("expected ErrNoSearchTerms, got %v", err)
		}
	})

	t.Run("selector mismatch", func(t *testing.T) {
		page := pageServer(t, chartPage+`<ul><li>x</li></ul>`)
		tr := newTestRunner(t, map[string]string{
			shared.EnvPageURL:       page.URL,
			shared.EnvQuerySelector: "td.album,li",
			shared.EnvPlaylistID:    "pl",
		}, "")

		if err := tr.run("run"); !errors.Is(err, shared.ErrSelectorMismatch) {
			t.Errorf("expected ErrSelectorMismatch, got %v", err)
		}
	})

	t.Run("rejected refresh token falls back to the browser flow", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to reserve port: %v", err)
		}
		port := ln.Addr().(*net.TCPAddr).Port
		ln.Close()

		page := pageServer(t, chartPage)
		tr := newTestRunner(t, map[string]string{
			shared.EnvPageURL:       page.URL,
			shared.EnvQuerySelector: "td.album",
			shared.EnvPlaylistID:    "pl",
			shared.EnvNoConfirm:     "true",
			shared.EnvRefreshToken:  "revoked",
		}, "")
		tr.spotify.RefreshErr = shared.ErrRefreshFailed
		tr.spotify.AuthURL = "https://accounts.example/authorize"
		tr.config.Server.Host = "127.0.0.1"
		tr.config.Server.Port = port
		tr.authTimeout = 5 * time.Second

		tr.openBrowser = func(authURL string) error {
			u, err := url.Parse(authURL)
			if err != nil {
				return err
			}
			callback := "http://" + tr.config.Server.Addr() + "/callback?code=granted&state=" + u.Query().Get("state")
			go func() {
				for range 50 {
					resp, err := http.Get(callback)
					if err == nil {
						resp.Body.Close()
						return
					}
					time.Sleep(20 * time.Millisecond)
				}
			}()
			return nil
		}

		if err := tr.run("run"); err != nil {
			t.Fatalf("run error = %v", err)
		}
		if tr.spotify.Credentials["auth_code"] != "granted" {
			t.Errorf("expected auth code login, got %v", tr.spotify.Credentials)
		}
		if !strings.Contains(tr.out.String(), "Waiting for authorization") {
			t.Errorf("expected authorization output, got\n%s", tr.out.String())
		}
	})
}

func TestScrape(t *testing.T) {
	t.Run("json output", func(t *testing.T) {
		page := pageServer(t, chartPage)
		tr := newTestRunner(t, nil, "")

		if err := tr.run("scrape", "--url", page.URL, "--selector", "td.artist,td.album", "--json"); err != nil {
			t.Fatalf("scrape error = %v", err)
		}

		var terms []string
		if err := json.Unmarshal(tr.out.Bytes(), &terms); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", tr.out.String(), err)
		}
		if len(terms) != 3 || terms[0] != "Slint Spiderland" {
			t.Errorf("unexpected terms %v", terms)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		tr := newTestRunner(t, nil, "")
		err := tr.run("scrape", "--url", "not a url", "--selector", "td")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	tr := newTestRunner(t, nil, "")

	if err := tr.run("--config", path, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	tu.AssertFileExists(t, path)

	if content := tu.MustReadFile(t, path); !strings.Contains(content, "[credentials.spotify]") {
		t.Errorf("expected example config, got %q", content)
	}
}
