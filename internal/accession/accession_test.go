// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package accession

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-miner/pkg/types"
)

type fakeRenderer struct {
	html  string
	err   error
	calls int
}

func (f *fakeRenderer) Content(context.Context, string) (string, error) {
	f.calls++
	return f.html, f.err
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"single accession", "CRISPR edits genome. PRJNA123456 was used. Confirmed.", []string{"PRJNA123456"}},
		{"several in order", "PRJEB000001 and PRJDB654321, then PRJEB000001 again", []string{"PRJEB000001", "PRJDB654321", "PRJEB000001"}},
		{"lowercase is not an accession", "prjna123456", nil},
		{"too few digits", "PRJNA12345", nil},
		{"embedded in markup", `<a href="/bioproject/PRJNA999999">PRJNA999999</a>`, []string{"PRJNA999999", "PRJNA999999"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.content))
		})
	}
}

func TestExtract_ReturnsNilWhenNoneFound(t *testing.T) {
	e := &Extractor{Renderer: &fakeRenderer{html: "<p>no identifiers here</p>"}}

	got, err := e.Extract(context.Background(), types.SearchResult{URL: "https://x"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExtract_PropagatesRenderError(t *testing.T) {
	boom := errors.New("browser crashed")
	e := &Extractor{Renderer: &fakeRenderer{err: boom}}

	_, err := e.Extract(context.Background(), types.SearchResult{URL: "https://x"})
	assert.ErrorIs(t, err, boom)
}

func TestExtract_EmptyURLSkipsRender(t *testing.T) {
	r := &fakeRenderer{html: "PRJNA123456"}
	e := &Extractor{Renderer: r}

	got, err := e.Extract(context.Background(), types.SearchResult{Title: "No link"})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, r.calls)
}

func TestTransform(t *testing.T) {
	r := types.SearchResult{Title: "Arctic viromes", URL: "https://x"}

	e := &Extractor{Renderer: &fakeRenderer{html: "CRISPR edits genome. PRJNA123456 was used. Confirmed."}}
	got, keep, err := e.Transform(context.Background(), r)
	require.NoError(t, err)
	require.True(t, keep)
	assert.Equal(t, "Arctic viromes", got.Title)
	assert.Equal(t, []string{"PRJNA123456"}, got.AccessionNumbers)

	e = &Extractor{Renderer: &fakeRenderer{html: "nothing"}}
	_, keep, err = e.Transform(context.Background(), r)
	require.NoError(t, err)
	assert.False(t, keep)
}
