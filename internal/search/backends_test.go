// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-miner/pkg/types"
)

// --- Google Scholar ---

const scholarPageOne = `<html><body>
<div class="gs_r gs_or gs_scl">
  <div class="gs_ggs gs_fl"><div class="gs_or_ggsm"><a href="https://example.org/a.pdf">[PDF] example.org</a></div></div>
  <div class="gs_ri">
    <h3 class="gs_rt"><a href="https://example.org/a">Soil  metagenomes of the Arctic</a></h3>
    <div class="gs_a">A Smith,&nbsp;B Jones - Nature, 2020 - nature.com</div>
    <div class="gs_rs">We sequenced permafrost samples.</div>
    <div class="gs_fl"><a href="/scholar?cites=123">Cited by 42</a><a href="/scholar?related">Related articles</a></div>
  </div>
</div>
<div class="gs_r gs_or gs_scl">
  <div class="gs_ri">
    <h3 class="gs_rt"><span class="gs_ctu">[CITATION]</span> Ocean virome survey</h3>
    <div class="gs_a">C Lee - 2019</div>
  </div>
</div>
<div id="gs_n"><a href="/scholar?start=10&q=soil">
  <span class="gs_ico gs_ico_nav_next"></span><b>Next</b></a></div>
</body></html>`

const scholarPageTwo = `<html><body>
<div class="gs_r gs_or gs_scl">
  <div class="gs_ri"><h3 class="gs_rt"><a href="https://example.org/c">Third paper</a></h3></div>
</div>
</body></html>`

func withScholarServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	old := scholarBase
	scholarBase = ts.URL
	t.Cleanup(func() {
		scholarBase = old
		ts.Close()
	})
	return ts
}

func TestScholar_ParsesResultsAndPaginates(t *testing.T) {
	ts := withScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "10" {
			fmt.Fprint(w, scholarPageTwo)
			return
		}
		assert.Equal(t, "soil", r.URL.Query().Get("q"))
		fmt.Fprint(w, scholarPageOne)
	})

	b := NewScholarBackend(ts.Client(), types.SearchConfig{PageDelay: time.Millisecond})
	page, err := b.Search(context.Background(), "soil")
	require.NoError(t, err)
	require.Len(t, page.Results, 2)

	first := page.Results[0]
	assert.Equal(t, "Soil metagenomes of the Arctic", first.Title)
	assert.Equal(t, "https://example.org/a", first.URL)
	assert.Equal(t, "https://example.org/a.pdf", first.PaperURL)
	assert.Equal(t, []string{"A Smith", "B Jones"}, first.Authors)
	assert.Equal(t, "We sequenced permafrost samples.", first.Description)
	assert.Equal(t, 42, first.CitationCount)
	assert.Equal(t, ts.URL+"/scholar?cites=123", first.CitationURL)

	assert.Equal(t, "Ocean virome survey", page.Results[1].Title)
	assert.Empty(t, page.Results[1].URL)

	require.True(t, page.HasNext())
	page, err = page.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Third paper", page.Results[0].Title)
	assert.False(t, page.HasNext())
}

func TestScholar_BlockedPage(t *testing.T) {
	ts := withScholarServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><form id="captcha-form"></form>Our systems have detected unusual traffic</body></html>`)
	})

	b := NewScholarBackend(ts.Client(), types.SearchConfig{PageDelay: time.Millisecond})
	_, err := b.Search(context.Background(), "soil")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestParseScholarAuthors(t *testing.T) {
	tests := []struct {
		byline string
		want   []string
	}{
		{"A Smith, B Jones - Nature, 2020 - nature.com", []string{"A Smith", "B Jones"}},
		{"A Smith, B Jones, … - Cell, 2021", []string{"A Smith", "B Jones"}},
		{"C Lee", []string{"C Lee"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseScholarAuthors(tt.byline), tt.byline)
	}
}

// --- OpenAlex ---

func TestOpenAlex_PagesUntilCount(t *testing.T) {
	var pages []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		pages = append(pages, q.Get("page"))
		assert.Equal(t, "permafrost", q.Get("search"))
		assert.Equal(t, "2", q.Get("per_page"))
		assert.Equal(t, "me@example.org", q.Get("mailto"))

		if q.Get("page") == "1" {
			fmt.Fprint(w, `{"meta":{"count":3},"results":[
				{"id":"W1","title":"One","doi":"https://doi.org/10.1/one","cited_by_count":5,
				 "cited_by_api_url":"https://api.openalex.org/works?filter=cites:W1",
				 "authorships":[{"author":{"display_name":"Ada Lovelace"}}],
				 "abstract_inverted_index":{"frozen":[1],"Deep":[0],"soil":[2]},
				 "primary_location":{"landing_page_url":"https://journal.org/one"},
				 "best_oa_location":{"pdf_url":"https://journal.org/one.pdf"}},
				{"id":"W2","title":"Two","open_access":{"is_oa":true,"oa_url":"https://repo.org/two"}}]}`)
			return
		}
		fmt.Fprint(w, `{"meta":{"count":3},"results":[{"id":"W3","title":"Three"}]}`)
	}))
	defer ts.Close()

	old := openAlexSearchBase
	openAlexSearchBase = ts.URL
	defer func() { openAlexSearchBase = old }()

	b := &OpenAlexBackend{Client: ts.Client(), Config: types.SearchConfig{PageSize: 2, Email: "me@example.org"}}
	got, err := Collect(context.Background(), b, "permafrost", 0, Identity)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"1", "2"}, pages)

	one := got[0]
	assert.Equal(t, "https://journal.org/one", one.URL)
	assert.Equal(t, "https://journal.org/one.pdf", one.PaperURL)
	assert.Equal(t, "Deep frozen soil", one.Description)
	assert.Equal(t, []string{"Ada Lovelace"}, one.Authors)
	assert.Equal(t, 5, one.CitationCount)

	assert.Equal(t, "https://repo.org/two", got[1].PaperURL)
	assert.Equal(t, "W3", got[2].URL)
}

func TestReconstructAbstract(t *testing.T) {
	assert.Equal(t, "", reconstructAbstract(nil))
	assert.Equal(t, "a rose is a rose", reconstructAbstract(map[string][]int{
		"a": {0, 3}, "rose": {1, 4}, "is": {2},
	}))
}

// --- arXiv ---

func TestArxiv_QueryAndPaging(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "all:soil AND all:virus", q.Get("search_query"))
		start, _ := strconv.Atoi(q.Get("start"))
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">
  <opensearch:totalResults>2</opensearch:totalResults>
  <entry>
    <id>http://arxiv.org/abs/2401.0000%dv1</id>
    <title>Paper
      %d</title>
    <summary> Abstract text. </summary>
    <author><name>Grace Hopper</name></author>
    <link href="http://arxiv.org/abs/2401.0000%dv1" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2401.0000%dv1" rel="related" type="application/pdf"/>
  </entry>
</feed>`, start, start, start, start)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	b := &ArxivBackend{Client: ts.Client(), Config: types.SearchConfig{PageSize: 1}}
	got, err := Collect(context.Background(), b, "soil virus", 0, Identity)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "Paper 0", got[0].Title)
	assert.Equal(t, "Paper 1", got[1].Title)
	assert.Equal(t, "http://arxiv.org/pdf/2401.00001v1", got[1].PaperURL)
	assert.Equal(t, []string{"Grace Hopper"}, got[0].Authors)
	assert.Equal(t, "Abstract text.", got[0].Description)
}

func TestBuildArxivQuery(t *testing.T) {
	assert.Equal(t, "", buildArxivQuery("  "))
	assert.Equal(t, "all:a+AND+all:b", buildArxivQuery("a  b"))
}

// --- Semantic Scholar ---

func TestSemantic_FollowsNextOffset(t *testing.T) {
	var offsets []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		offsets = append(offsets, q.Get("offset"))
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "phage", q.Get("query"))

		if q.Get("offset") == "0" {
			fmt.Fprint(w, `{"total":2,"offset":0,"next":1,"data":[
				{"paperId":"abc","title":"Phage one","abstract":"About phages.","url":"https://s2.org/abc",
				 "citationCount":7,"authors":[{"name":"R Franklin"}],"openAccessPdf":{"url":"https://oa.org/abc.pdf"}}]}`)
			return
		}
		fmt.Fprint(w, `{"total":2,"offset":1,"data":[{"paperId":"def","title":"Phage two"}]}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b := &SemanticScholarBackend{Client: ts.Client(), Config: types.SearchConfig{PageSize: 1, APIKey: "secret"}}
	got, err := Collect(context.Background(), b, "phage", 0, Identity)
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, offsets)
	require.Len(t, got, 2)
	assert.Equal(t, "https://oa.org/abc.pdf", got[0].PaperURL)
	assert.Equal(t, 7, got[0].CitationCount)
	assert.Equal(t, []string{"R Franklin"}, got[0].Authors)
	assert.Equal(t, "https://www.semanticscholar.org/paper/abc#citing-papers", got[0].CitationURL)
	assert.Equal(t, "Phage two", got[1].Title)
}

func TestSemantic_HTTPErrorPropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b := &SemanticScholarBackend{Client: ts.Client()}
	_, err := b.Search(context.Background(), "phage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
}
