// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-miner pipeline:
// search results produced by the result cursors, the paper references the
// content stage reads from, the entities exported to CSV, and the items
// found by in-text search.
package types

// SearchResult is one hit yielded by a search backend. It is immutable once
// the cursor has produced it.
type SearchResult struct {
	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// URL is the result's landing page.
	URL string `json:"url" yaml:"url"`

	// PaperURL is the direct link to the paper content (PDF or HTML), if known.
	PaperURL string `json:"paper_url,omitempty" yaml:"paper_url,omitempty"`

	// CitationURL links to the list of citing works (optional).
	CitationURL string `json:"citation_url,omitempty" yaml:"citation_url,omitempty"`

	// CitationCount is the number of citing works reported by the source.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// Description is the snippet or abstract shown by the source.
	Description string `json:"description" yaml:"description"`

	// Source identifies which backend produced this result (e.g. "scholar", "openalex").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// PaperEntity is a search result as exported to CSV.
type PaperEntity = SearchResult

// PaperWithAccessions is a paper entity enriched with the accession numbers
// found on its rendered page. AccessionNumbers is never empty: a result
// without accessions is excluded rather than exported with an empty list.
type PaperWithAccessions struct {
	PaperEntity `yaml:",inline"`

	AccessionNumbers []string `json:"accession_numbers" yaml:"accession_numbers"`
}

// FoundItem is one distinct literal matched by an in-text search, together
// with every sentence it occurred in, in order of occurrence.
type FoundItem struct {
	Text      string   `json:"text" yaml:"text"`
	Sentences []string `json:"sentences" yaml:"sentences"`
}
