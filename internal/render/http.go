// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-miner/internal/httputil"
)

// HTTPRenderer fetches pages with a plain GET. It runs no JavaScript and
// cannot get past a captcha; pages showing one fail with ErrCaptcha.
type HTTPRenderer struct {
	Client    *http.Client
	UserAgent string
}

// Content returns the page HTML as served.
func (r *HTTPRenderer) Content(ctx context.Context, pageURL string) (string, error) {
	body, err := httputil.Fetch(ctx, r.client(), httputil.Request{
		URL:       pageURL,
		UserAgent: r.UserAgent,
		Accept:    "text/html,application/xhtml+xml",
	})
	if err != nil {
		return "", err
	}
	html := string(body)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	if hasCaptcha(doc) {
		return "", fmt.Errorf("%s: %w", pageURL, ErrCaptcha)
	}
	return html, nil
}

// Text returns the readable text of the page. opts.SolveCaptcha is ignored.
func (r *HTTPRenderer) Text(ctx context.Context, pageURL string, opts TextOptions) (string, error) {
	html, err := r.Content(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return extractText(html, pageURL, opts.Selector)
}

// Close is a no-op; HTTPRenderer holds no session.
func (r *HTTPRenderer) Close() error { return nil }

func (r *HTTPRenderer) client() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return http.DefaultClient
}
