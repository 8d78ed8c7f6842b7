// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-miner/pkg/types"
)

// CSLItem is a bibliographic entry in CSL-YAML, consumable by Pandoc and
// reference managers.
type CSLItem struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Title    string    `yaml:"title"`
	Author   []CSLName `yaml:"author,omitempty"`
	Abstract string    `yaml:"abstract,omitempty"`
	URL      string    `yaml:"URL,omitempty"`
	DOI      string    `yaml:"DOI,omitempty"`
	Note     string    `yaml:"note,omitempty"`
}

// CSLName is a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// FormatCSL writes papers as a CSL-YAML list. Accession numbers, when
// present, go into the note field.
func FormatCSL(w io.Writer, papers []types.PaperWithAccessions) error {
	items := make([]CSLItem, len(papers))
	for i, p := range papers {
		items[i] = toCSLItem(i, p)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding CSL: %w", err)
	}
	return nil
}

func toCSLItem(i int, p types.PaperWithAccessions) CSLItem {
	item := CSLItem{
		ID:       fmt.Sprintf("paper%d", i+1),
		Type:     "article",
		Title:    p.Title,
		Abstract: p.Description,
		URL:      p.URL,
		DOI:      doiFromURL(p.URL),
	}
	if item.DOI != "" {
		item.ID = item.DOI
	}
	for _, a := range p.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}
	if len(p.AccessionNumbers) > 0 {
		item.Note = "BioProject: " + strings.Join(p.AccessionNumbers, ", ")
	}
	return item
}

// doiFromURL returns the DOI of a doi.org link, or "".
func doiFromURL(u string) string {
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/"} {
		if doi, ok := strings.CutPrefix(u, prefix); ok && strings.HasPrefix(doi, "10.") {
			return doi
		}
	}
	return ""
}

// parseAuthorName splits a full name into CSL family/given parts on the
// last space. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
