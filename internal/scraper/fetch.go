package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/scrapify/internal/shared"
	"golang.org/x/net/html/charset"
)

// maxPageBytes caps the size of a page body; larger pages are rejected.
const maxPageBytes = 10 << 20

// FetchError is returned for a non-2xx page response.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("bad response fetching page %s: %d", e.URL, e.Status)
}

// Is matches [shared.ErrFetch].
func (e *FetchError) Is(target error) bool {
	return target == shared.ErrFetch
}

// Fetcher downloads pages over HTTP.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewFetcher creates a [Fetcher]. A nil client uses [http.DefaultClient].
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, userAgent: userAgent, maxBytes: maxPageBytes}
}

// FetchDocument GETs url and returns its body converted to UTF-8.
//
// The page encoding is taken from the Content-Type header or sniffed from the markup.
func (f *Fetcher) FetchDocument(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrInvalidArgument, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrFetch, err)
	}
	if int64(len(raw)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", shared.ErrPageTooLarge, url, f.maxBytes)
	}

	body, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: unable to decode page: %v", shared.ErrFetch, err)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode page: %v", shared.ErrFetch, err)
	}
	return data, nil
}
