// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads the PDFs of paper references.
package acquire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/paper-miner/internal/httputil"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// Downloader saves the resource at url to destPath.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
}

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Paths      []string
}

// Total returns the number of references processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any download failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FileName returns the file name a reference is saved under: the title
// with whitespace and path separators replaced by '_', plus the source
// kind as extension.
func FileName(ref types.PaperReference) string {
	title := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, ref.Title)
	if title == "" {
		title = "untitled"
	}
	return title + "." + string(ref.Source.Kind)
}

// DownloadIfPDF saves ref's source to outputDir when the source is a PDF
// and returns the written path. Other sources are skipped with a debug log
// and an empty path; the downloader is not called.
func DownloadIfPDF(ctx context.Context, d Downloader, ref types.PaperReference, outputDir string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !ref.Source.IsPDF() {
		logger.Debug("not a PDF source, skipping download", "title", ref.Title, "kind", ref.Source.Kind)
		return "", nil
	}
	if ref.Source.URL == "" {
		return "", fmt.Errorf("PDF source of %q has no URL", ref.Title)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", outputDir, err)
	}
	dest := filepath.Join(outputDir, FileName(ref))
	if err := d.Download(ctx, ref.Source.URL, dest); err != nil {
		return "", fmt.Errorf("downloading %q: %w", ref.Title, err)
	}
	logger.Debug("downloaded PDF", "title", ref.Title, "path", dest)
	return dest, nil
}

// DownloadBatch downloads the PDF sources of refs, printing per-item status
// to w. Files already on disk are skipped, failures do not stop the batch,
// and delay is applied between consecutive downloads.
func DownloadBatch(ctx context.Context, d Downloader, refs []types.PaperReference, outputDir string, delay time.Duration, w io.Writer, logger *slog.Logger) BatchResult {
	var result BatchResult
	downloads := 0
	for _, ref := range refs {
		if !ref.Source.IsPDF() {
			continue
		}
		dest := filepath.Join(outputDir, FileName(ref))
		if _, err := os.Stat(dest); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", dest)
			result.Skipped++
			continue
		}

		if downloads > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return result
			case <-time.After(delay):
			}
		}
		downloads++

		path, err := DownloadIfPDF(ctx, d, ref, outputDir, logger)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", ref.Title, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "downloaded: %s\n", path)
		result.Downloaded++
		result.Paths = append(result.Paths, path)
	}
	fmt.Fprintf(w, "\nDownload summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// HTTPDownloader fetches files over HTTP.
type HTTPDownloader struct {
	Client    *http.Client
	UserAgent string
}

// Download fetches url to destPath through a temporary file in the same
// directory, renamed into place only after the body was fully written.
func (h *HTTPDownloader) Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
