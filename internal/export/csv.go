// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes collected papers to CSV, CSL-YAML bibliographies and
// YAML run files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-miner/pkg/types"
)

// listSep joins multi-valued CSV cells (authors, accession numbers).
const listSep = ";"

var paperHeader = []string{"title", "authors", "url", "paperUrl", "citationUrl", "citationCount", "description"}

func paperRecord(p types.PaperEntity) []string {
	return []string{
		p.Title,
		strings.Join(p.Authors, listSep),
		p.URL,
		p.PaperURL,
		p.CitationURL,
		strconv.Itoa(p.CitationCount),
		p.Description,
	}
}

// WriteCSV writes papers with the header
// title,authors,url,paperUrl,citationUrl,citationCount,description.
func WriteCSV(w io.Writer, papers []types.PaperEntity) error {
	records := make([][]string, 0, len(papers)+1)
	records = append(records, paperHeader)
	for _, p := range papers {
		records = append(records, paperRecord(p))
	}
	return writeAll(w, records)
}

// WriteAccessionCSV writes papers with an extra accessionNumbers column.
func WriteAccessionCSV(w io.Writer, papers []types.PaperWithAccessions) error {
	records := make([][]string, 0, len(papers)+1)
	records = append(records, append(append([]string{}, paperHeader...), "accessionNumbers"))
	for _, p := range papers {
		records = append(records, append(paperRecord(p.PaperEntity), strings.Join(p.AccessionNumbers, listSep)))
	}
	return writeAll(w, records)
}

func writeAll(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

// WriteFile creates path (and its directory) and fills it with write.
func WriteFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
