package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/scrapify/internal/formatter"
	"github.com/desertthunder/scrapify/internal/scraper"
	"github.com/desertthunder/scrapify/internal/shared"
	"github.com/desertthunder/scrapify/internal/tasks"
	"github.com/desertthunder/scrapify/internal/ui"
	"github.com/urfave/cli/v3"
)

// Run scrapes the page, confirms the search terms, and builds the playlist.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	opts, err := r.resolveOptions(cmd, true)
	if err != nil {
		return err
	}

	if err := r.requireSpotify(); err != nil {
		return err
	}

	log := shared.WithLogger(r.logger, "url", opts.PageURL)
	log.Debug("scraping", "selectors", opts.Selectors)

	terms, err := r.engine.Scrape(ctx, nil, opts.PageURL, opts.Selectors)
	if err != nil {
		return err
	}
	r.writeTerms(terms)

	if !opts.NoConfirm {
		ok, err := r.prompter.Confirm("Look OK? Hit enter to continue")
		if err != nil {
			return err
		}
		if !ok {
			return shared.ErrAborted
		}
	}

	if err := r.authenticate(ctx, opts.RefreshToken); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 2*len(terms)+16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.renderProgress(update)
		}
	}()

	target := tasks.PlaylistTarget{ID: opts.PlaylistID, Name: opts.PlaylistName}
	result, err := r.engine.Build(ctx, progress, terms, target)
	close(progress)
	<-done

	if result != nil {
		r.writeSummary(result)
		if path := cmd.String("report"); path != "" {
			if werr := formatter.WriteReport(result, path); werr != nil {
				r.logger.Warn("failed to write report", "path", path, "error", werr)
			} else {
				r.writePlain("✓ Report written to %s\n", path)
			}
		}
	}
	return err
}

// Scrape prints the search terms found on the page.
func (r *Runner) Scrape(ctx context.Context, cmd *cli.Command) error {
	opts, err := r.resolveOptions(cmd, false)
	if err != nil {
		return err
	}

	terms, err := r.engine.Scrape(ctx, nil, opts.PageURL, opts.Selectors)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(terms, true)
	}
	r.writeTerms(terms)
	return nil
}

// ConfigInit writes the example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\n", path)
}

// resolveOptions fills the run options from flags, then the environment, then config.toml, then the prompter.
// The playlist is only resolved when withPlaylist is set.
func (r *Runner) resolveOptions(cmd *cli.Command, withPlaylist bool) (shared.Options, error) {
	resolver := &shared.Resolver{
		Lookup: r.lookup,
		Asker:  r.prompter,
		Notify: func(key, value string) {
			r.writePlain("Using %s from environment: %s\n", key, value)
		},
	}

	var opts shared.Options
	var err error

	opts.PageURL = cmd.String("url")
	if opts.PageURL == "" {
		opts.PageURL, err = resolver.EnvOrAsk(shared.EnvPageURL, r.config.Scrape.PageURL, "Full URL to scrape", false)
		if err != nil {
			return opts, err
		}
	}

	for _, sel := range cmd.StringSlice("selector") {
		opts.Selectors = append(opts.Selectors, scraper.ParseSelectors(sel)...)
	}
	if len(opts.Selectors) == 0 {
		raw, err := resolver.EnvOrAsk(shared.EnvQuerySelector, strings.Join(r.config.Scrape.Selectors, ","),
			"Query selectors, separated by commas", false)
		if err != nil {
			return opts, err
		}
		opts.Selectors = scraper.ParseSelectors(raw)
	}

	if !withPlaylist {
		return opts, opts.ValidateSource()
	}

	opts.PlaylistID = cmd.String("playlist-id")
	opts.PlaylistName = cmd.String("playlist-name")
	if opts.PlaylistID == "" && opts.PlaylistName == "" {
		opts.PlaylistID, err = resolver.EnvOrAsk(shared.EnvPlaylistID, r.config.Playlist.ID,
			"Playlist ID (leave blank to create a new playlist)", true)
		if err != nil {
			return opts, err
		}
		opts.PlaylistID = strings.TrimSpace(opts.PlaylistID)
	}
	if opts.PlaylistID == "" && opts.PlaylistName == "" {
		opts.PlaylistName, err = resolver.EnvOrAsk(shared.EnvPlaylistName, r.config.Playlist.Name, "Name for the new playlist", false)
		if err != nil {
			return opts, err
		}
	}

	if v, ok := r.lookup(shared.EnvRefreshToken); ok && v != "" {
		opts.RefreshToken = v
	} else {
		opts.RefreshToken = r.config.Credentials.Spotify.RefreshToken
	}

	opts.NoConfirm = cmd.Bool("yes") || resolver.IsSet(shared.EnvNoConfirm)

	return opts, opts.Validate()
}

func (r *Runner) writeTerms(terms []string) {
	styles := ui.Styles()
	r.writePlain("%s\n", styles.Underline(fmt.Sprintf("Found %d search terms", len(terms))))
	for _, term := range terms {
		r.writePlain("  %s\n", term)
	}
	r.writePlain("\n")
}

func (r *Runner) renderProgress(update tasks.ProgressUpdate) {
	styles := ui.Styles()

	switch update.Phase {
	case tasks.SearchAlbums:
		res, ok := update.Data.(tasks.TermResult)
		if !ok {
			r.writePlain("%s ", update.Message)
			return
		}
		switch {
		case res.Err != nil:
			r.logger.Debug("album search failed", "term", res.Term, "error", res.Err)
			r.writePlain("%s\n", styles.Err(update.Message))
		case res.Found():
			r.writePlain("%s\n", styles.OK(update.Message))
		default:
			r.writePlain("%s\n", styles.Warn(update.Message))
		}
	default:
		r.writePlain("%s\n", update.Message)
	}
}

func (r *Runner) writeSummary(result *tasks.BuildResult) {
	styles := ui.Styles()

	r.writePlainln("Searched for %d albums; %d found, %d missing", result.Searched(), result.Found(), result.Missing())
	r.writePlain("%s\n", styles.OK(fmt.Sprintf("Added %d tracks", result.TracksAdded)))

	if result.Playlist != nil {
		r.writePlain("%s\n", styles.Help(result.URI()))
		r.writePlain("%s\n", styles.Help(result.URL()))
	}
}
