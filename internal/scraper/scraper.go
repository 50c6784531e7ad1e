// Package scraper turns a web page into album search terms.
//
// Each selector yields one row of trimmed match texts. Rows are merged
// positionally, so the i-th match of every selector ends up in the same
// search term, joined with a space in selector order:
//
//	selectors: "td.artist", "td.album"
//	rows:      [Slint, Low]  [Spiderland, Things We Lost in the Fire]
//	terms:     "Slint Spiderland", "Low Things We Lost in the Fire"
//
// Selectors that match a different number of nodes cannot be merged and
// produce a [SelectorMismatchError].
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/desertthunder/scrapify/internal/seq"
	"github.com/desertthunder/scrapify/internal/shared"
)

// SelectorMismatchError reports the match count of each selector when they differ.
type SelectorMismatchError struct {
	Selectors []string
	Counts    []int
}

func (e *SelectorMismatchError) Error() string {
	parts := make([]string, len(e.Selectors))
	for i, sel := range e.Selectors {
		parts[i] = fmt.Sprintf("%q=%d", sel, e.Counts[i])
	}
	return fmt.Sprintf("%v (%s)", shared.ErrSelectorMismatch, strings.Join(parts, ", "))
}

// Is matches [shared.ErrSelectorMismatch].
func (e *SelectorMismatchError) Is(target error) bool {
	return target == shared.ErrSelectorMismatch
}

// ParseDocument parses UTF-8 markup.
func ParseDocument(raw []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

// ParseSelectors splits a comma-separated selector list. Blank entries are dropped.
func ParseSelectors(s string) []string {
	var selectors []string
	for _, sel := range strings.Split(s, ",") {
		if sel = strings.TrimSpace(sel); sel != "" {
			selectors = append(selectors, sel)
		}
	}
	return selectors
}

// SelectAndExtractText returns the trimmed text of every node matching selector, in document order.
func SelectAndExtractText(doc *goquery.Document, selector string) ([]string, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: selector %q: %v", shared.ErrInvalidArgument, selector, err)
	}

	texts := doc.FindMatcher(matcher).Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	})
	if texts == nil {
		texts = []string{}
	}
	return texts, nil
}

// ScrapeSearchTerms applies every selector to doc and merges the results positionally.
//
// Terms that are blank after trimming are dropped. Terms are not cleaned; see [CleanSearchString].
func ScrapeSearchTerms(doc *goquery.Document, selectors []string) ([]string, error) {
	rows := make([][]string, len(selectors))
	for i, sel := range selectors {
		texts, err := SelectAndExtractText(doc, sel)
		if err != nil {
			return nil, err
		}
		rows[i] = texts
	}

	if !seq.AllEqualLength(rows) {
		counts := make([]int, len(rows))
		for i, row := range rows {
			counts[i] = len(row)
		}
		return nil, &SelectorMismatchError{Selectors: selectors, Counts: counts}
	}

	terms := []string{}
	for _, group := range seq.Unzip(rows) {
		term := strings.Join(group, " ")
		if strings.TrimSpace(term) == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms, nil
}

var conjunction = regexp.MustCompile(`(?i) and `)

// CleanSearchString removes " and " (any case, surrounded by single spaces).
//
// The catalog search reads "X and Y" as a conjunction, which hurts matches for albums by two artists.
func CleanSearchString(s string) string {
	return conjunction.ReplaceAllString(s, " ")
}

// Scraper fetches a page and produces cleaned search terms.
type Scraper struct {
	fetcher *Fetcher
}

// New creates a [Scraper] backed by fetcher.
func New(fetcher *Fetcher) *Scraper {
	return &Scraper{fetcher: fetcher}
}

// SearchTerms fetches url, scrapes it with selectors, and cleans every term.
func (s *Scraper) SearchTerms(ctx context.Context, url string, selectors []string) ([]string, error) {
	raw, err := s.fetcher.FetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}

	terms, err := ScrapeSearchTerms(doc, selectors)
	if err != nil {
		return nil, err
	}

	for i, term := range terms {
		terms[i] = CleanSearchString(term)
	}
	return terms, nil
}
