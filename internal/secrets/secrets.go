// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory holds one secret: the filename is the key and the
// trimmed contents are the value.
//
// Known keys: anthropic-api-key, semantic-scholar-api-key, openalex-email.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Key names read from the secrets directory.
const (
	AnthropicAPIKey       = "anthropic-api-key"
	SemanticScholarAPIKey = "semantic-scholar-api-key"
	OpenAlexEmail         = "openalex-email"
)

// Secrets maps key names to their values.
type Secrets map[string]string

// Lookup returns the secret stored under key, or fallback when it is
// missing. A non-empty fallback usually comes from config or a flag and is
// only used when the directory has no value.
func (s Secrets) Lookup(key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Keys returns the loaded key names in sorted order.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Load reads all files in dir. A missing directory is not an error and
// yields empty Secrets. Unreadable files are logged and skipped.
func Load(dir string, logger *slog.Logger) (Secrets, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}
