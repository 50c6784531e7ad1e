// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:           "scrapify",
		Usage:          "Build a Spotify playlist from albums scraped off a web page",
		Version:        "0.1.0",
		DefaultCommand: "run",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to .env file",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Setup,
		Commands: r.register(),
	}
}

func scrapeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "Full URL of the page to scrape (PAGE_URL)",
		},
		&cli.StringSliceFlag{
			Name:    "selector",
			Aliases: []string{"s"},
			Usage:   "CSS selector, repeat to merge several (QUERY_SELECTOR, comma separated)",
		},
	}
}

// runCommand scrapes a page and fills a playlist
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Scrape a page, search for each album and add the tracks to a playlist",
		Flags: append(scrapeFlags(),
			&cli.StringFlag{
				Name:  "playlist-id",
				Usage: "Existing playlist to add tracks to (PLAYLIST_ID)",
			},
			&cli.StringFlag{
				Name:  "playlist-name",
				Usage: "Name of a new playlist to create (PLAYLIST_NAME)",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt (NO_CONFIRM)",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a build report (.csv, .md or .txt)",
			},
		),
		Action: r.Run,
	}
}

// scrapeCommand previews search terms without touching Spotify
func scrapeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scrape",
		Usage: "Print the search terms found on a page",
		Flags: append(scrapeFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		),
		Action: r.Scrape,
	}
}

// authCommand runs the OAuth2 flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authorize with Spotify and print a refresh token",
		Action: r.Auth,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file commands",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example config.toml",
				Action: r.ConfigInit,
			},
		},
	}
}
