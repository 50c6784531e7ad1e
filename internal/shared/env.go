package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment keys read by the CLI.
const (
	EnvPageURL       = "PAGE_URL"
	EnvQuerySelector = "QUERY_SELECTOR"
	EnvPlaylistID    = "PLAYLIST_ID"
	EnvPlaylistName  = "PLAYLIST_NAME"
	EnvRefreshToken  = "REFRESH_TOKEN"
	EnvNoConfirm     = "NO_CONFIRM"
	EnvClientID      = "CLIENT_ID"
	EnvClientSecret  = "CLIENT_SECRET"
	EnvRedirectURI   = "AUTH_REDIRECT_URI"
	EnvListenPort    = "AUTH_LISTEN_PORT"
	EnvUsername      = "SPOTIFY_USERNAME"
)

// LookupFunc has the shape of [os.LookupEnv].
type LookupFunc func(key string) (string, bool)

// EnvSource layers a .env file under the process environment.
// Process variables win, matching godotenv.Load without mutating the process.
type EnvSource struct {
	dotenv map[string]string
	lookup LookupFunc
}

// NewEnvSource reads the optional .env file at path. A missing file is not an error.
func NewEnvSource(path string, lookup LookupFunc) (*EnvSource, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	src := &EnvSource{dotenv: map[string]string{}, lookup: lookup}
	if path == "" {
		return src, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return src, nil
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrInvalidConfig, path, err)
	}
	src.dotenv = values
	return src, nil
}

// Lookup implements [LookupFunc].
func (e *EnvSource) Lookup(key string) (string, bool) {
	if v, ok := e.lookup(key); ok {
		return v, true
	}
	v, ok := e.dotenv[key]
	return v, ok
}

// Asker asks the user a one-line question.
type Asker interface {
	Ask(question string) (string, error)
}

// Resolver resolves a setting from the environment, then a configured fallback, then the user.
type Resolver struct {
	Lookup LookupFunc
	Asker  Asker
	// Notify is called with the key and value whenever a setting is taken from the environment.
	Notify func(key, value string)
}

// EnvOrAsk returns the value of key from the environment when set.
// allowEmpty accepts a variable explicitly set to "".
// Otherwise fallback is used, and when that is empty too the user is asked.
func (r *Resolver) EnvOrAsk(key, fallback, question string, allowEmpty bool) (string, error) {
	if r.Lookup != nil {
		if v, ok := r.Lookup(key); ok && (v != "" || allowEmpty) {
			if r.Notify != nil {
				r.Notify(key, v)
			}
			return v, nil
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	if r.Asker == nil {
		return "", fmt.Errorf("%w: %s is not set", ErrMissingArgument, key)
	}
	return r.Asker.Ask(question + ": ")
}

// IsSet reports whether key has a non-empty value.
func (r *Resolver) IsSet(key string) bool {
	if r.Lookup == nil {
		return false
	}
	v, ok := r.Lookup(key)
	return ok && v != ""
}
