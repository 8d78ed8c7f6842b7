// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-miner/internal/httputil"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// scholarBase is the Google Scholar origin. Declared as a var so tests can
// substitute an httptest server.
var scholarBase = "https://scholar.google.com"

const defaultScholarDelay = 2 * time.Second

var citedByPattern = regexp.MustCompile(`Cited by (\d+)`)

// ScholarBackend scrapes Google Scholar result pages. Page fetches share
// one rate limiter so a long collection run stays polite.
type ScholarBackend struct {
	Client  *http.Client
	Config  types.SearchConfig
	limiter *rate.Limiter
}

// NewScholarBackend returns a Scholar cursor paced by cfg.PageDelay
// (default 2s between pages).
func NewScholarBackend(client *http.Client, cfg types.SearchConfig) *ScholarBackend {
	delay := cfg.PageDelay
	if delay <= 0 {
		delay = defaultScholarDelay
	}
	return &ScholarBackend{
		Client:  client,
		Config:  cfg,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Name returns the backend identifier.
func (b *ScholarBackend) Name() string { return BackendScholar }

// Search fetches the first result page for query.
func (b *ScholarBackend) Search(ctx context.Context, query string) (*Page, error) {
	params := url.Values{"q": {query}, "hl": {"en"}}
	return b.fetchPage(ctx, scholarBase+"/scholar?"+params.Encode())
}

func (b *ScholarBackend) fetchPage(ctx context.Context, pageURL string) (*Page, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := httputil.Fetch(ctx, b.Client, httputil.Request{
		URL:       pageURL,
		UserAgent: b.Config.UserAgent,
		Accept:    "text/html",
	})
	if err != nil {
		return nil, fmt.Errorf("Scholar request: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing Scholar page: %w", err)
	}
	if isScholarBlocked(doc) {
		return nil, ErrBlocked
	}

	results := parseScholarResults(doc)

	var next NextFunc
	if href := scholarNextHref(doc); href != "" {
		nextURL := resolveScholarURL(href)
		next = func(ctx context.Context) (*Page, error) {
			return b.fetchPage(ctx, nextURL)
		}
	}
	return NewPage(results, next), nil
}

func isScholarBlocked(doc *goquery.Document) bool {
	if doc.Find("#gs_captcha_ccl, #captcha-form, form[action*='sorry']").Length() > 0 {
		return true
	}
	return strings.Contains(doc.Find("body").Text(), "detected unusual traffic")
}

func parseScholarResults(doc *goquery.Document) []types.SearchResult {
	var results []types.SearchResult
	doc.Find(".gs_r.gs_or").Each(func(_ int, s *goquery.Selection) {
		ri := s.Find(".gs_ri")
		titleLink := ri.Find(".gs_rt a").First()

		r := types.SearchResult{Source: BackendScholar}
		if titleLink.Length() > 0 {
			r.Title = cleanText(titleLink.Text())
			r.URL, _ = titleLink.Attr("href")
		} else {
			rt := ri.Find(".gs_rt").Clone()
			rt.Find(".gs_ctc, .gs_ctu").Remove()
			r.Title = cleanText(rt.Text())
		}
		if r.Title == "" {
			return
		}

		r.Authors = parseScholarAuthors(ri.Find(".gs_a").Text())
		r.Description = cleanText(ri.Find(".gs_rs").Text())

		if href, ok := s.Find(".gs_or_ggsm a").First().Attr("href"); ok {
			r.PaperURL = href
		}

		ri.Find(".gs_fl a").Each(func(_ int, a *goquery.Selection) {
			m := citedByPattern.FindStringSubmatch(a.Text())
			if m == nil {
				return
			}
			r.CitationCount, _ = strconv.Atoi(m[1])
			if href, ok := a.Attr("href"); ok {
				r.CitationURL = resolveScholarURL(href)
			}
		})

		results = append(results, r)
	})
	return results
}

// parseScholarAuthors reads the byline "A Smith, B Jones - Venue, 2020 - host".
func parseScholarAuthors(byline string) []string {
	byline = strings.ReplaceAll(byline, "\u00a0", " ")
	names, _, _ := strings.Cut(byline, " - ")
	var authors []string
	for _, n := range strings.Split(names, ",") {
		n = strings.TrimSpace(n)
		if n == "" || n == "…" || n == "..." {
			continue
		}
		authors = append(authors, n)
	}
	return authors
}

func scholarNextHref(doc *goquery.Document) string {
	var href string
	doc.Find("#gs_n a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if a.Find(".gs_ico_nav_next").Length() > 0 || strings.TrimSpace(a.Text()) == "Next" {
			href, _ = a.Attr("href")
			return false
		}
		return true
	})
	return href
}

func resolveScholarURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return scholarBase + "/" + strings.TrimPrefix(href, "/")
}

// cleanText collapses runs of whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
