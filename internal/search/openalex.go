// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-miner/internal/httputil"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// OpenAlexBackend pages through the OpenAlex Works search.
type OpenAlexBackend struct {
	Client *http.Client
	Config types.SearchConfig
}

// Name returns the backend identifier.
func (b *OpenAlexBackend) Name() string { return BackendOpenAlex }

// Search fetches the first page of works matching query.
func (b *OpenAlexBackend) Search(ctx context.Context, query string) (*Page, error) {
	return b.fetchPage(ctx, query, 1)
}

func (b *OpenAlexBackend) fetchPage(ctx context.Context, query string, page int) (*Page, error) {
	perPage := pageSize(b.Config, 200)
	params := url.Values{
		"search":   {query},
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
	}
	if b.Config.Email != "" {
		params.Set("mailto", b.Config.Email)
	}

	body, err := httputil.Fetch(ctx, b.Client, httputil.Request{
		URL:       openAlexSearchBase + "?" + params.Encode(),
		UserAgent: b.Config.UserAgent,
		Accept:    "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}

	var oar openAlexResponse
	if err := json.Unmarshal(body, &oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(oar.Results))
	for _, work := range oar.Results {
		results = append(results, work.toResult())
	}

	var next NextFunc
	if len(oar.Results) > 0 && page*perPage < oar.Meta.Count {
		next = func(ctx context.Context) (*Page, error) {
			return b.fetchPage(ctx, query, page+1)
		}
	}
	return NewPage(results, next), nil
}

func (w openAlexWork) toResult() types.SearchResult {
	r := types.SearchResult{
		Title:         w.Title,
		Description:   reconstructAbstract(w.AbstractInvertedIndex),
		CitationCount: w.CitedByCount,
		CitationURL:   w.CitedByAPIURL,
		Source:        BackendOpenAlex,
	}
	for _, authorship := range w.Authorships {
		if authorship.Author.DisplayName != "" {
			r.Authors = append(r.Authors, authorship.Author.DisplayName)
		}
	}

	switch {
	case w.PrimaryLocation != nil && w.PrimaryLocation.LandingURL != "":
		r.URL = w.PrimaryLocation.LandingURL
	case w.DOI != "":
		r.URL = w.DOI
	default:
		r.URL = w.ID
	}

	switch {
	case w.BestOALocation != nil && w.BestOALocation.PDFURL != "":
		r.PaperURL = w.BestOALocation.PDFURL
	case w.OpenAccess.OAURL != "":
		r.PaperURL = w.OpenAccess.OAURL
	}
	return r
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where it
// appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	CitedByCount          int                  `json:"cited_by_count"`
	CitedByAPIURL         string               `json:"cited_by_api_url"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
	PrimaryLocation       *openAlexLocation    `json:"primary_location"`
	BestOALocation        *openAlexLocation    `json:"best_oa_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA  bool   `json:"is_oa"`
	OAURL string `json:"oa_url"`
}

type openAlexLocation struct {
	PDFURL     string `json:"pdf_url"`
	LandingURL string `json:"landing_page_url"`
}
