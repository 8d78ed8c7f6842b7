// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/paper-miner/internal/httputil"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivBackend pages through the arXiv Atom API.
type ArxivBackend struct {
	Client *http.Client
	Config types.SearchConfig
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return BackendArxiv }

// Search fetches the first page of entries matching query.
func (b *ArxivBackend) Search(ctx context.Context, query string) (*Page, error) {
	q := buildArxivQuery(query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	return b.fetchPage(ctx, q, 0)
}

func (b *ArxivBackend) fetchPage(ctx context.Context, q string, start int) (*Page, error) {
	size := pageSize(b.Config, 100)
	reqURL := fmt.Sprintf("%s?search_query=%s&start=%d&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, start, size)

	body, err := httputil.Fetch(ctx, b.Client, httputil.Request{
		URL:       reqURL,
		UserAgent: b.Config.UserAgent,
		Accept:    "application/atom+xml",
	})
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		results = append(results, entry.toResult())
	}

	var next NextFunc
	if consumed := start + len(feed.Entries); len(feed.Entries) > 0 && consumed < feed.TotalResults {
		next = func(ctx context.Context) (*Page, error) {
			return b.fetchPage(ctx, q, consumed)
		}
	}
	return NewPage(results, next), nil
}

func (e arxivEntry) toResult() types.SearchResult {
	r := types.SearchResult{
		Title:       cleanText(e.Title),
		URL:         strings.TrimSpace(e.ID),
		Description: cleanText(e.Summary),
		Source:      BackendArxiv,
	}
	for _, a := range e.Authors {
		r.Authors = append(r.Authors, strings.TrimSpace(a.Name))
	}
	for _, l := range e.Links {
		switch {
		case l.Title == "pdf" || l.Type == "application/pdf":
			r.PaperURL = l.Href
		case l.Rel == "alternate" && r.URL == "":
			r.URL = l.Href
		}
	}
	return r
}

// buildArxivQuery turns free-text keywords into a search_query value.
func buildArxivQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}
	escaped := make([]string, len(terms))
	for i, t := range terms {
		escaped[i] = url.QueryEscape(t)
	}
	return "all:" + strings.Join(escaped, "+AND+all:")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	TotalResults int          `xml:"http://a9.com/-/spec/opensearch/1.1/ totalResults"`
	Entries      []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID      string        `xml:"id"`
	Title   string        `xml:"title"`
	Summary string        `xml:"summary"`
	Authors []arxivAuthor `xml:"author"`
	Links   []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}
