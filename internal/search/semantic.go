// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/paper-miner/internal/httputil"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,url,citationCount,openAccessPdf,externalIds"

// SemanticScholarBackend pages through the Semantic Scholar search API
// using offset/limit.
type SemanticScholarBackend struct {
	Client *http.Client
	Config types.SearchConfig
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return BackendSemantic }

// Search fetches the first page of papers matching query.
func (b *SemanticScholarBackend) Search(ctx context.Context, query string) (*Page, error) {
	return b.fetchPage(ctx, query, 0)
}

func (b *SemanticScholarBackend) fetchPage(ctx context.Context, query string, offset int) (*Page, error) {
	params := url.Values{
		"query":  {query},
		"offset": {strconv.Itoa(offset)},
		"limit":  {strconv.Itoa(pageSize(b.Config, 100))},
		"fields": {semanticFields},
	}

	header := http.Header{}
	if b.Config.APIKey != "" {
		header.Set("x-api-key", b.Config.APIKey)
	}

	body, err := httputil.Fetch(ctx, b.Client, httputil.Request{
		URL:       semanticAPIBase + "?" + params.Encode(),
		UserAgent: b.Config.UserAgent,
		Accept:    "application/json",
		Header:    header,
	})
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}

	var sr semanticResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(sr.Data))
	for _, paper := range sr.Data {
		results = append(results, paper.toResult())
	}

	var next NextFunc
	if sr.Next != nil && len(sr.Data) > 0 {
		nextOffset := *sr.Next
		next = func(ctx context.Context) (*Page, error) {
			return b.fetchPage(ctx, query, nextOffset)
		}
	}
	return NewPage(results, next), nil
}

func (p semanticPaper) toResult() types.SearchResult {
	r := types.SearchResult{
		Title:         p.Title,
		URL:           p.URL,
		Description:   p.Abstract,
		CitationCount: p.CitationCount,
		Source:        BackendSemantic,
	}
	for _, a := range p.Authors {
		r.Authors = append(r.Authors, a.Name)
	}
	if p.OpenAccessPDF != nil {
		r.PaperURL = p.OpenAccessPDF.URL
	}
	if p.PaperID != "" {
		r.CitationURL = "https://www.semanticscholar.org/paper/" + p.PaperID + "#citing-papers"
	}
	return r
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Next   *int            `json:"next"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string           `json:"paperId"`
	Title         string           `json:"title"`
	Abstract      string           `json:"abstract"`
	URL           string           `json:"url"`
	CitationCount int              `json:"citationCount"`
	Authors       []semanticAuthor `json:"authors"`
	OpenAccessPDF *semanticPDF     `json:"openAccessPdf"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticPDF struct {
	URL string `json:"url"`
}
