// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content turns a paper reference into plain text and searches
// that text. Extraction never fails: every source error is logged and the
// next source is tried, down to an empty string.
package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdiddy/paper-miner/internal/pdftext"
	"github.com/pdiddy/paper-miner/internal/render"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// TextRenderer is the part of render.Renderer the policy needs.
type TextRenderer interface {
	Text(ctx context.Context, pageURL string, opts render.TextOptions) (string, error)
}

// Policy resolves paper references into text.
type Policy struct {
	// Mode selects legacy (main URL only) or source-aware extraction.
	Mode types.ExtractionMode

	Renderer TextRenderer
	PDF      pdftext.Extractor

	// RenderOptions is passed to every Renderer.Text call.
	RenderOptions render.TextOptions

	// Logger receives fallback warnings. Nil discards them.
	Logger *slog.Logger
}

// strategy is one way of reading a paper. An empty url disables it.
type strategy struct {
	name  string
	url   string
	fetch func(ctx context.Context, url string) (string, error)
}

// ExtractText returns the text of ref. Strategies run in order and the
// first one that succeeds wins, even with empty text. When all fail the
// result is "".
func (p *Policy) ExtractText(ctx context.Context, ref types.PaperReference) string {
	logger := p.logger()
	for _, s := range p.strategies(ref) {
		if s.url == "" {
			continue
		}
		text, err := s.fetch(ctx, s.url)
		if err != nil {
			logger.Warn("content source failed, falling back",
				"strategy", s.name, "url", s.url, "title", ref.Title, "error", err)
			continue
		}
		logger.Debug("content extracted", "strategy", s.name, "url", s.url, "chars", len(text))
		return text
	}
	return ""
}

// strategies lists the sources tried for ref, in order. Legacy mode only
// reads the main URL. Source-aware mode reads the direct source first.
func (p *Policy) strategies(ref types.PaperReference) []strategy {
	mainURL := strategy{name: "main", url: ref.URL, fetch: p.renderText}
	if p.Mode != types.ModeSourceAware {
		return []strategy{mainURL}
	}

	primary := strategy{name: "source-html", url: ref.Source.URL, fetch: p.renderText}
	if ref.Source.IsPDF() {
		primary = strategy{name: "source-pdf", url: ref.Source.URL, fetch: p.pdfText}
	}
	return []strategy{primary, mainURL}
}

func (p *Policy) renderText(ctx context.Context, url string) (string, error) {
	if p.Renderer == nil {
		return "", fmt.Errorf("no renderer configured")
	}
	return p.Renderer.Text(ctx, url, p.RenderOptions)
}

func (p *Policy) pdfText(ctx context.Context, url string) (string, error) {
	if p.PDF == nil {
		return "", fmt.Errorf("no PDF extractor configured")
	}
	return p.PDF.Text(ctx, url)
}

func (p *Policy) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
