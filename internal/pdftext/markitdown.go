// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-miner/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// Markitdown converts PDFs by piping them through the markitdown container
// image. Its output is Markdown, which is close enough to plain text for
// in-text search and summaries.
type Markitdown struct {
	Client    *http.Client
	UserAgent string
	runtime   container.Runtime
}

// NewMarkitdown verifies that the markitdown image exists in rt.
func NewMarkitdown(ctx context.Context, rt container.Runtime, client *http.Client, userAgent string) (*Markitdown, error) {
	if err := rt.ImageExists(ctx, imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &Markitdown{Client: client, UserAgent: userAgent, runtime: rt}, nil
}

// Text downloads pdfURL and converts it with markitdown.
func (m *Markitdown) Text(ctx context.Context, pdfURL string) (string, error) {
	data, err := download(ctx, m.Client, m.UserAgent, pdfURL)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	err = m.runtime.Run(ctx, container.RunSpec{
		Image:  imageMarkitdown,
		Stdin:  bytes.NewReader(data),
		Stdout: &out,
	})
	if err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", pdfURL, err)
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("markitdown produced empty output for %s: %w", pdfURL, ErrNoText)
	}
	return text, nil
}
