package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scrapify/internal/scraper"
	"github.com/desertthunder/scrapify/internal/services"
	"github.com/desertthunder/scrapify/internal/shared"
	"github.com/desertthunder/scrapify/internal/tasks"
	"github.com/desertthunder/scrapify/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultAuthTimeout = 2 * time.Minute

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	spotify     services.OAuthService
	scraper     *scraper.Scraper
	prompter    ui.Prompter
	lookup      shared.LookupFunc
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	engine      *tasks.PlaylistEngine
	openBrowser func(url string) error
	authTimeout time.Duration
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config flag when a command runs; a nil Spotify is built from it.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.OAuthService
	Scraper    *scraper.Scraper
	Prompter   ui.Prompter
	Lookup     shared.LookupFunc
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}
	if opts.Prompter == nil {
		opts.Prompter = ui.NewLinePrompter(os.Stdin, opts.Output)
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		spotify:     opts.Spotify,
		scraper:     opts.Scraper,
		prompter:    opts.Prompter,
		lookup:      opts.Lookup,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: shared.OpenBrowser,
		authTimeout: defaultAuthTimeout,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, scrapeCommand, authCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Setup loads configuration and the .env file, then wires the services. Runs before every command.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	env, err := shared.NewEnvSource(cmd.String("env"), r.lookup)
	if err != nil {
		return ctx, err
	}
	r.lookup = env.Lookup

	if r.config == nil {
		r.configPath = cmd.String("config")
		config, err := shared.LoadConfigOrDefault(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	if err := r.config.ApplyEnv(r.lookup); err != nil {
		return ctx, err
	}

	if r.scraper == nil {
		r.scraper = scraper.New(scraper.NewFetcher(r.httpClient, r.config.Scrape.UserAgent))
	}

	if r.spotify == nil {
		creds := r.config.Credentials.Spotify
		if creds.ClientID != "" && creds.ClientSecret != "" {
			params := creds.Map()
			params["username"] = creds.Username

			svc, err := services.NewSpotifyService(params)
			if err != nil {
				return ctx, err
			}
			svc.SetTokenRefreshCallback(func(t *oauth2.Token) {
				r.logger.Debug("spotify token refreshed", "expiry", t.Expiry)
			})
			r.spotify = svc
		} else {
			r.logger.Debug("spotify credentials not configured")
		}
	}

	var catalog tasks.Catalog
	if r.spotify != nil {
		catalog = r.spotify
	}
	r.engine = tasks.NewPlaylistEngine(catalog, r.scraper)

	return ctx, nil
}

func (r *Runner) requireSpotify() error {
	if r.spotify == nil {
		return fmt.Errorf("%w: set %s and %s, or client_id and client_secret in %s",
			shared.ErrMissingCredentials, shared.EnvClientID, shared.EnvClientSecret, r.configPath)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
