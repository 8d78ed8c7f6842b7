// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search drives paginated result cursors over academic search
// sources and collects a bounded number of transformed results.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-miner/pkg/types"
)

var (
	// ErrExhausted is returned by Page.Next on a terminal page.
	ErrExhausted = errors.New("result cursor exhausted")

	// ErrBlocked is returned when a source answers with a captcha or
	// unusual-traffic page instead of results.
	ErrBlocked = errors.New("search source blocked the request")
)

// Searcher opens a result cursor for a query. Each backend (Scholar,
// OpenAlex, arXiv, Semantic Scholar) implements this interface.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) (*Page, error)
}

// NextFunc fetches the page following the one it is attached to.
type NextFunc func(ctx context.Context) (*Page, error)

// Page is one batch of results plus an optional capability to fetch the
// next batch. A page without that capability is terminal. Pages only move
// forward: there is no way back to an earlier page.
type Page struct {
	Results []types.SearchResult
	next    NextFunc
}

// NewPage returns a page with the given results. A nil next marks the page
// as terminal.
func NewPage(results []types.SearchResult, next NextFunc) *Page {
	return &Page{Results: results, next: next}
}

// HasNext reports whether another page can be requested.
func (p *Page) HasNext() bool {
	return p != nil && p.next != nil
}

// Next fetches the following page. It returns ErrExhausted on a terminal page.
func (p *Page) Next(ctx context.Context) (*Page, error) {
	if !p.HasNext() {
		return nil, ErrExhausted
	}
	return p.next(ctx)
}

// Backend names accepted by NewBackend.
const (
	BackendScholar  = "scholar"
	BackendOpenAlex = "openalex"
	BackendArxiv    = "arxiv"
	BackendSemantic = "semantic"
)

// NewBackend returns the searcher registered under name.
func NewBackend(name string, client *http.Client, cfg types.SearchConfig) (Searcher, error) {
	switch strings.ToLower(name) {
	case BackendScholar, "":
		return NewScholarBackend(client, cfg), nil
	case BackendOpenAlex:
		return &OpenAlexBackend{Client: client, Config: cfg}, nil
	case BackendArxiv:
		return &ArxivBackend{Client: client, Config: cfg}, nil
	case BackendSemantic:
		return &SemanticScholarBackend{Client: client, Config: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown search backend %q: use scholar, openalex, arxiv, or semantic", name)
	}
}

func pageSize(cfg types.SearchConfig, max int) int {
	n := cfg.PageSize
	if n <= 0 {
		n = 25
	}
	if n > max {
		n = max
	}
	return n
}
