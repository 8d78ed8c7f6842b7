// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package accession finds BioProject accession numbers (PRJNA123456 and
// similar) on the rendered pages of search results.
package accession

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/pdiddy/paper-miner/pkg/types"
)

// Pattern matches BioProject accessions: "PRJ", a two-letter archive code
// and six digits.
var Pattern = regexp.MustCompile(`PRJ[A-Z]{2}[0-9]{6}`)

// ContentRenderer returns the fully rendered HTML of a page.
type ContentRenderer interface {
	Content(ctx context.Context, pageURL string) (string, error)
}

// Extractor renders result pages and pulls accession numbers from them.
// Accessions are often injected by page scripts, so Renderer should be a
// full browser rather than a plain HTTP fetcher.
type Extractor struct {
	Renderer ContentRenderer
	Logger   *slog.Logger
}

// Match returns every accession in content in order of appearance, or nil
// when there is none.
func Match(content string) []string {
	return Pattern.FindAllString(content, -1)
}

// Extract renders the result's URL and returns the accessions found, or
// nil when there are none. Render errors are returned wrapped.
func (e *Extractor) Extract(ctx context.Context, r types.SearchResult) ([]string, error) {
	if r.URL == "" {
		return nil, nil
	}
	html, err := e.Renderer.Content(ctx, r.URL)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", r.URL, err)
	}
	found := Match(html)
	e.logger().Debug("accessions scanned", "url", r.URL, "found", len(found))
	return found, nil
}

// Transform adapts Extract to search.Collect: results without accessions
// are filtered out.
func (e *Extractor) Transform(ctx context.Context, r types.SearchResult) (types.PaperWithAccessions, bool, error) {
	found, err := e.Extract(ctx, r)
	if err != nil || len(found) == 0 {
		return types.PaperWithAccessions{}, false, err
	}
	return types.PaperWithAccessions{PaperEntity: r, AccessionNumbers: found}, true, nil
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}
