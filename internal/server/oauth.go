package server

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/scrapify/internal/shared"
)

const defaultCallbackPath = "/callback"

// CallbackError is delivered when the redirect carries an error or a bad state.
type CallbackError struct {
	Reason      string // OAuth error code, e.g. access_denied
	Description string
}

func (e *CallbackError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization failed: %s", e.Reason)
	}
	return fmt.Sprintf("authorization failed: %s - %s", e.Reason, e.Description)
}

// Is matches [shared.ErrAuthFailed].
func (e *CallbackError) Is(target error) bool {
	return target == shared.ErrAuthFailed
}

// CallbackResult is the outcome of the authorization redirect.
type CallbackResult struct {
	Code string
	Err  error
}

// CallbackHandler handles the OAuth2 authorization code redirect.
// Implements the [Handler] interface for registration with a [BasicRouter].
type CallbackHandler struct {
	path       string
	state      string
	resultChan chan CallbackResult
	once       sync.Once

	mu  sync.Mutex
	hit bool
}

// NewCallbackHandler creates a handler for the path of redirectURI that expects state.
// The state token should be cryptographically random, see [shared.GenerateState].
func NewCallbackHandler(redirectURI, state string) (*CallbackHandler, error) {
	path := defaultCallbackPath
	if redirectURI != "" {
		u, err := url.Parse(redirectURI)
		if err != nil {
			return nil, fmt.Errorf("%w: redirect URI %q: %v", shared.ErrInvalidConfig, redirectURI, err)
		}
		if u.Path != "" {
			path = u.Path
		}
	}

	return &CallbackHandler{
		path:       path,
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}, nil
}

// Routes returns the redirect URI path.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP validates the callback and sends the code or a [*CallbackError] through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != h.path {
		http.NotFound(w, r)
		return
	}

	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.Send(CallbackResult{Err: &CallbackError{Reason: "state_mismatch", Description: "state parameter does not match"}})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		reason := query.Get("error")
		if reason == "" {
			reason = "missing_code"
		}
		h.Send(CallbackResult{Err: &CallbackError{Reason: reason, Description: query.Get("error_description")}})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Code: code})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send delivers result to the channel. Only the first call has any effect.
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns a channel that receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>scrapify</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Logged in to Spotify</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
