// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pdiddy/paper-miner/pkg/types"
)

// Transform maps one search result to a collected value. Returning false
// filters the result out.
type Transform[T any] func(ctx context.Context, r types.SearchResult) (T, bool, error)

// Identity collects results unchanged.
func Identity(_ context.Context, r types.SearchResult) (types.PaperEntity, bool, error) {
	return r, true, nil
}

type collectOptions struct {
	release io.Closer
	logger  *slog.Logger
}

// CollectOption configures Collect.
type CollectOption func(*collectOptions)

// WithRelease registers the shared rendering session. Collect closes it
// exactly once, however the loop ends.
func WithRelease(c io.Closer) CollectOption {
	return func(o *collectOptions) { o.release = c }
}

// WithLogger sets the logger used for per-page progress.
func WithLogger(l *slog.Logger) CollectOption {
	return func(o *collectOptions) { o.logger = l }
}

// Collect drives the searcher's cursor for query, applies transform to
// every result in page order and returns the kept values. A positive
// target bounds the output; zero collects until the cursor is exhausted.
// Cursor and transform errors are returned as-is (wrapped), without retries.
func Collect[T any](ctx context.Context, s Searcher, query string, target int, transform Transform[T], opts ...CollectOption) (out []T, err error) {
	o := collectOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.release != nil {
		defer func() {
			if cerr := o.release.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("releasing renderer: %w", cerr)
			}
		}()
	}

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty: provide one or more keywords")
	}
	if target < 0 {
		return nil, fmt.Errorf("target count must not be negative, got %d", target)
	}

	page, err := s.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", s.Name(), err)
	}

	if page == nil {
		page = NewPage(nil, nil)
	}
	reached := func() bool { return target > 0 && len(out) >= target }

	for pageNum := 1; ; pageNum++ {
		o.logger.Debug("scanning result page", "backend", s.Name(), "page", pageNum, "results", len(page.Results), "collected", len(out))
		for _, r := range page.Results {
			v, keep, err := transform(ctx, r)
			if err != nil {
				return out, fmt.Errorf("transforming %q: %w", r.Title, err)
			}
			if keep {
				out = append(out, v)
			}
			if reached() {
				break
			}
		}
		if reached() || !page.HasNext() {
			break
		}
		page, err = page.Next(ctx)
		if err != nil {
			return out, fmt.Errorf("%s page %d: %w", s.Name(), pageNum+1, err)
		}
		if page == nil {
			break
		}
	}

	o.logger.Info("collection finished", "backend", s.Name(), "query", query, "collected", len(out), "target", target)
	return out, nil
}
