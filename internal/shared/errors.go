package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Scraping errors
	ErrFetch            = fmt.Errorf("fetch failed")
	ErrSelectorMismatch = fmt.Errorf("unable to merge selectors; results length mismatch")
	ErrNoSearchTerms    = fmt.Errorf("found zero search terms")
	ErrPageTooLarge     = fmt.Errorf("page exceeds size limit")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// ErrAborted is returned when the user declines to continue at a prompt.
	ErrAborted = fmt.Errorf("aborted by user")
)
