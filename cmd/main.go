package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/scrapify/internal/shared"
	"github.com/desertthunder/scrapify/internal/ui"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Logger:   logger,
		Output:   os.Stdout,
		Prompter: ui.NewPrompter(os.Stdin, os.Stdout),
		Lookup:   os.LookupEnv,
	})

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrAborted) {
			logger.Info("aborted")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
