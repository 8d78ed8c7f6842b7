// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"net/url"
	"path"
	"strings"
)

// SourceKind classifies the best-known direct content location of a paper.
type SourceKind string

const (
	SourcePDF  SourceKind = "pdf"
	SourceHTML SourceKind = "html"
)

// PaperSource describes where a paper's content can be read directly.
type PaperSource struct {
	Kind SourceKind `json:"kind" yaml:"kind"`
	URL  string     `json:"url" yaml:"url"`
}

// IsPDF reports whether the source points at a PDF document.
func (s PaperSource) IsPDF() bool {
	return s.Kind == SourcePDF
}

// PaperReference identifies a paper for content extraction: its main
// (landing) URL plus an optional direct source.
type PaperReference struct {
	Title  string      `json:"title" yaml:"title"`
	URL    string      `json:"url" yaml:"url"`
	Source PaperSource `json:"source" yaml:"source"`
}

// ReferenceFromResult builds a reference for a search result. The source
// kind is pdf when the paper URL's path ends in ".pdf", html otherwise.
func ReferenceFromResult(r SearchResult) PaperReference {
	ref := PaperReference{Title: r.Title, URL: r.URL}
	if r.PaperURL == "" {
		return ref
	}
	ref.Source = PaperSource{Kind: KindForURL(r.PaperURL), URL: r.PaperURL}
	return ref
}

// KindForURL guesses the source kind from a URL's path extension.
func KindForURL(rawURL string) SourceKind {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if strings.EqualFold(path.Ext(p), ".pdf") {
		return SourcePDF
	}
	return SourceHTML
}
