// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want SourceKind
	}{
		{"pdf path", "https://example.com/papers/p.pdf", SourcePDF},
		{"upper case extension", "https://example.com/P.PDF", SourcePDF},
		{"pdf with query", "https://example.com/p.pdf?download=1", SourcePDF},
		{"html page", "https://example.com/article/123", SourceHTML},
		{"pdf only in query", "https://example.com/view?file=p.pdf", SourceHTML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindForURL(tt.url))
		})
	}
}

func TestReferenceFromResult(t *testing.T) {
	r := SearchResult{
		Title:    "Genome Study",
		URL:      "https://x",
		PaperURL: "https://x/p.pdf",
	}
	ref := ReferenceFromResult(r)
	assert.Equal(t, "Genome Study", ref.Title)
	assert.Equal(t, "https://x", ref.URL)
	assert.True(t, ref.Source.IsPDF())
	assert.Equal(t, "https://x/p.pdf", ref.Source.URL)

	noPaper := ReferenceFromResult(SearchResult{Title: "T", URL: "https://y"})
	assert.Equal(t, PaperSource{}, noPaper.Source)
	assert.False(t, noPaper.Source.IsPDF())
}
