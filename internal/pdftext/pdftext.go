// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext converts PDFs reachable by URL into plain text. The native
// backend parses the file in-process; the markitdown backend pipes it
// through a container.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/paper-miner/internal/container"
	"github.com/pdiddy/paper-miner/internal/httputil"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// ErrNoText is returned when a PDF parses but carries no extractable text,
// as with scanned images.
var ErrNoText = errors.New("PDF has no extractable text")

var pdfMagic = []byte("%PDF-")

// Extractor turns the PDF at a URL into plain text.
type Extractor interface {
	Text(ctx context.Context, pdfURL string) (string, error)
}

// New returns the extractor selected by backend. The markitdown backend
// needs a working container runtime with the markitdown image present.
func New(ctx context.Context, backend types.PDFBackend, client *http.Client, userAgent string) (Extractor, error) {
	switch backend {
	case types.PDFNative, "":
		return &Reader{Client: client, UserAgent: userAgent}, nil
	case types.PDFMarkitdown:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewMarkitdown(ctx, rt, client, userAgent)
	default:
		return nil, fmt.Errorf("unknown PDF backend %q: use %s or %s", backend, types.PDFNative, types.PDFMarkitdown)
	}
}

// Reader downloads a PDF and extracts its text with a pure-Go parser.
type Reader struct {
	Client    *http.Client
	UserAgent string
}

// Text downloads pdfURL and returns the text of every page.
func (r *Reader) Text(ctx context.Context, pdfURL string) (string, error) {
	data, err := download(ctx, r.Client, r.UserAgent, pdfURL)
	if err != nil {
		return "", err
	}
	return ParseText(data)
}

// ParseText extracts the plain text of a PDF held in memory, one page per
// block. Pages that fail to decode are skipped.
func ParseText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parsing PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// download fetches a PDF and rejects responses that are not one, such as
// the HTML login pages publishers serve in place of paywalled files.
func download(ctx context.Context, client *http.Client, userAgent, pdfURL string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	data, err := httputil.Fetch(ctx, client, httputil.Request{
		URL:       pdfURL,
		UserAgent: userAgent,
		Accept:    "application/pdf",
	})
	if err != nil {
		return nil, fmt.Errorf("downloading PDF: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic) {
		return nil, fmt.Errorf("%s did not return a PDF", pdfURL)
	}
	return data, nil
}
