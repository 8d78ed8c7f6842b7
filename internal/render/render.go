// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render fetches web pages and turns them into HTML or plain text.
// Two engines are provided: a plain HTTP fetcher for static pages and a
// headless Chrome session for pages that need JavaScript or sit behind a
// captcha.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/pdiddy/paper-miner/pkg/types"
)

// ErrCaptcha is returned when a page shows a captcha challenge that was not
// (or could not be) cleared.
var ErrCaptcha = errors.New("page is behind a captcha")

// TextOptions tunes Text.
type TextOptions struct {
	// Selector restricts extraction to matching elements. Empty means the
	// readable main content of the page.
	Selector string

	// SolveCaptcha waits for a captcha to clear instead of failing with
	// ErrCaptcha. Only the browser engine honors it.
	SolveCaptcha bool
}

// Renderer fetches pages. Content returns the fully rendered HTML, Text
// returns readable plain text. Close releases any session the renderer
// holds and is safe to call more than once.
type Renderer interface {
	Content(ctx context.Context, pageURL string) (string, error)
	Text(ctx context.Context, pageURL string, opts TextOptions) (string, error)
	Close() error
}

// New returns the renderer selected by cfg.Engine.
func New(cfg types.RenderConfig, client *http.Client, logger *slog.Logger) (Renderer, error) {
	switch cfg.Engine {
	case types.EngineHTTP, "":
		return &HTTPRenderer{Client: client, UserAgent: cfg.UserAgent}, nil
	case types.EngineBrowser:
		return NewBrowserRenderer(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown render engine %q: use %s or %s", cfg.Engine, types.EngineHTTP, types.EngineBrowser)
	}
}

// Markers of common captcha and bot-check interstitials.
const captchaSelector = `iframe[src*="recaptcha"], iframe[src*="hcaptcha"], .g-recaptcha, .h-captcha, ` +
	`#captcha-form, #gs_captcha_ccl, #challenge-form, #cf-challenge-running, form[action*="sorry"]`

var captchaPhrases = []string{
	"detected unusual traffic",
	"verify you are human",
	"are you a robot",
}

// captchaTextLimit bounds the body text of a page whose wording alone marks
// it as a bot check. Longer pages are articles that may quote the phrases.
const captchaTextLimit = 2000

func hasCaptcha(doc *goquery.Document) bool {
	if doc.Find(captchaSelector).Length() > 0 {
		return true
	}
	body := strings.ToLower(blockText(doc.Find("body")))
	if len(body) > captchaTextLimit {
		return false
	}
	for _, p := range captchaPhrases {
		if strings.Contains(body, p) {
			return true
		}
	}
	return false
}

// blockSelector lists the elements whose text becomes one output line.
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td, th, figcaption"

// extractText converts page HTML into plain text. With a selector, only the
// matching elements are used. Otherwise readability isolates the main
// content; when that yields nothing, the whole body is used.
func extractText(html, pageURL, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	if selector != "" {
		var parts []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if t := blockText(s); t != "" {
				parts = append(parts, t)
			}
		})
		return strings.Join(parts, "\n"), nil
	}

	if text := readableText(html, pageURL); text != "" {
		return text, nil
	}
	doc.Find("script, style, noscript").Remove()
	return blocksOf(doc.Find("body")), nil
}

func readableText(html, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), u)
	if err != nil || article.Content == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}
	return blocksOf(doc.Selection)
}

// blocksOf joins the text of outermost block elements under root, one per
// line. Without block elements the flattened text of root is returned.
func blocksOf(root *goquery.Selection) string {
	var lines []string
	root.Find(blockSelector).
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.ParentsFiltered(blockSelector).Length() == 0
		}).
		Each(func(_ int, s *goquery.Selection) {
			if t := blockText(s); t != "" {
				lines = append(lines, t)
			}
		})
	if len(lines) == 0 {
		return blockText(root)
	}
	return strings.Join(lines, "\n")
}

func blockText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
