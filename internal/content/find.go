// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/paper-miner/pkg/types"
)

// FindInContent extracts the text of ref and searches it for pattern. It
// never fails: an invalid pattern is logged and yields no items.
func (p *Policy) FindInContent(ctx context.Context, ref types.PaperReference, pattern string) []types.FoundItem {
	re, err := compileFind(pattern)
	if err != nil {
		p.logger().Warn("invalid search pattern", "pattern", pattern, "error", err)
		return nil
	}
	return findAll(p.ExtractText(ctx, ref), re)
}

// FindInText searches text for every non-overlapping, case-insensitive
// match of pattern and groups the matches by their exact text. Items come
// in the order their text was first seen. Each item lists the sentence
// around every occurrence, duplicates included.
func FindInText(text, pattern string) ([]types.FoundItem, error) {
	re, err := compileFind(pattern)
	if err != nil {
		return nil, err
	}
	return findAll(text, re), nil
}

// ValidatePattern reports whether pattern is usable as a find pattern.
func ValidatePattern(pattern string) error {
	_, err := compileFind(pattern)
	return err
}

func compileFind(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return re, nil
}

func findAll(text string, re *regexp.Regexp) []types.FoundItem {
	var items []types.FoundItem
	index := make(map[string]int)

	for _, m := range re.FindAllStringIndex(text, -1) {
		if m[0] == m[1] {
			continue
		}
		literal := text[m[0]:m[1]]
		i, ok := index[literal]
		if !ok {
			i = len(items)
			index[literal] = i
			items = append(items, types.FoundItem{Text: literal})
		}
		items[i].Sentences = append(items[i].Sentences, sentenceAt(text, m[0]))
	}
	return items
}

// sentenceAt returns the sentence containing offset: from just after the
// last '.' before it to the first '.' at or after it, inclusive.
func sentenceAt(text string, offset int) string {
	start := strings.LastIndexByte(text[:offset], '.') + 1
	end := len(text)
	if i := strings.IndexByte(text[offset:], '.'); i >= 0 {
		end = offset + i + 1
	}
	return strings.TrimSpace(text[start:end])
}
