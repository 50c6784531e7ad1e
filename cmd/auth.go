package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/scrapify/internal/server"
	"github.com/desertthunder/scrapify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Auth performs the OAuth2 authorization flow and prints the refresh token.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges the auth code for tokens.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	if err := r.authorize(ctx); err != nil {
		return err
	}

	token := r.spotify.Token()
	if token == nil || token.RefreshToken == "" {
		return fmt.Errorf("%w: no refresh token received", shared.ErrAuthFailed)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("Add this to your .env to skip the browser next time:\n\n")
	r.writePlain("%s=%s\n", shared.EnvRefreshToken, token.RefreshToken)
	return nil
}

// authenticate logs in with refreshToken when given and falls back to the browser flow when it is
// missing or rejected.
func (r *Runner) authenticate(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		err := r.spotify.Authenticate(ctx, map[string]string{"refresh_token": refreshToken})
		if err == nil {
			r.logger.Debug("authenticated with refresh token")
			return nil
		}
		if !errors.Is(err, shared.ErrRefreshFailed) {
			return err
		}
		r.logger.Warn("refresh token rejected, starting authorization", "error", err)
	}

	if err := r.authorize(ctx); err != nil {
		return err
	}
	r.saveRefreshToken()
	return nil
}

// authorize runs the browser flow and authenticates with the returned code.
func (r *Runner) authorize(ctx context.Context) error {
	code, err := r.doOAuth(ctx)
	if err != nil {
		return err
	}

	if err := r.spotify.Authenticate(ctx, map[string]string{"auth_code": code}); err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return nil
}

// doOAuth waits for the authorization code on a local HTTP server
func (r *Runner) doOAuth(ctx context.Context) (string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	handler, err := server.NewCallbackHandler(r.spotify.GetOAuthConfig().RedirectURL, state)
	if err != nil {
		return "", err
	}

	authURL := r.spotify.GetAuthURL(state)
	addr := r.config.Server.Addr()
	r.logger.Infof("starting OAuth server at %v", addr)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", r.authTimeout)

	code, err := server.WaitForCode(ctx, addr, handler, r.authTimeout, server.LoggingMiddleware(r.logger))
	if err != nil {
		return "", fmt.Errorf("authorization failed: %w", err)
	}
	return code, nil
}

// saveRefreshToken stores the new refresh token in the config file when there is one.
func (r *Runner) saveRefreshToken() {
	token := r.spotify.Token()
	if token == nil || token.RefreshToken == "" || r.configPath == "" {
		return
	}
	if _, err := os.Stat(r.configPath); err != nil {
		r.writePlain("Set %s in your .env to skip the browser next time.\n", shared.EnvRefreshToken)
		return
	}

	r.config.Credentials.Spotify.RefreshToken = token.RefreshToken
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refresh token", "error", err)
		return
	}
	r.writePlain("✓ Refresh token saved to %s\n", r.configPath)
}
