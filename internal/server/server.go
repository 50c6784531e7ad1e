// package server contains middleware & handlers for the OAuth callback listener
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/desertthunder/scrapify/internal/shared"
)

const shutdownTimeout = 5 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which routes it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// WaitForCode listens on addr and blocks until handler receives the OAuth callback.
//
// Returns the authorization code, a [*CallbackError] when the provider reported a failure,
// [shared.ErrTimeout] after timeout, or the context error when ctx is done first.
func WaitForCode(ctx context.Context, addr string, handler *CallbackHandler, timeout time.Duration, middleware ...Middleware) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln, handler, timeout, middleware...)
}

// Serve is [WaitForCode] on an existing listener. The listener is closed on return.
func Serve(ctx context.Context, ln net.Listener, handler *CallbackHandler, timeout time.Duration, middleware ...Middleware) (string, error) {
	router := NewBasicRouter()
	router.Use(middleware...)
	router.Handler(handler)

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-handler.Result():
		if result.Err != nil {
			return "", result.Err
		}
		return result.Code, nil
	case err := <-serveErr:
		return "", fmt.Errorf("callback server failed: %w", err)
	case <-timer.C:
		return "", fmt.Errorf("%w: no OAuth callback after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
