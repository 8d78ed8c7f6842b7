// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-miner/pkg/types"
)

func newRefCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addRefFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestReferenceFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    types.PaperReference
		wantErr bool
	}{
		{
			name: "main URL only",
			args: []string{"--title", "Soil", "--url", "https://example.org/soil"},
			want: types.PaperReference{Title: "Soil", URL: "https://example.org/soil"},
		},
		{
			name: "source kind guessed from URL",
			args: []string{"--url", "https://example.org/a", "--source-url", "https://example.org/a.PDF"},
			want: types.PaperReference{
				URL:    "https://example.org/a",
				Source: types.PaperSource{Kind: types.SourcePDF, URL: "https://example.org/a.PDF"},
			},
		},
		{
			name: "explicit source kind wins",
			args: []string{"--source-url", "https://example.org/fulltext", "--source-kind", "pdf"},
			want: types.PaperReference{Source: types.PaperSource{Kind: types.SourcePDF, URL: "https://example.org/fulltext"}},
		},
		{
			name:    "no location",
			args:    []string{"--title", "Lost"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := referenceFromFlags(newRefCmd(t, tt.args...))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReferenceFromFlags_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.yaml")
	data := "title: Arctic soil viromes\nurl: https://example.org/arctic\nsource:\n  url: https://example.org/arctic.pdf\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	got, err := referenceFromFlags(newRefCmd(t, "--ref", path))
	require.NoError(t, err)
	assert.Equal(t, "Arctic soil viromes", got.Title)
	assert.Equal(t, types.SourcePDF, got.Source.Kind)
}

func TestReferenceFromFlags_BadFile(t *testing.T) {
	_, err := referenceFromFlags(newRefCmd(t, "--ref", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestFormatFindOutput(t *testing.T) {
	items := []types.FoundItem{{Text: "PRJNA123456", Sentences: []string{"Reads are under PRJNA123456.", "See PRJNA123456."}}}

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	require.NoError(t, formatFindOutput(cmd, items, false))
	assert.Contains(t, buf.String(), "PRJNA123456")
	assert.Contains(t, buf.String(), "See PRJNA123456.")

	buf.Reset()
	require.NoError(t, formatFindOutput(cmd, nil, true))
	assert.Equal(t, "[]\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
