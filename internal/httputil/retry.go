// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// throttled responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// maxBodyBytes caps how much of a response Fetch reads into memory. Tests
// override this.
var maxBodyBytes int64 = 64 << 20

// retryable reports whether a status code means "try again later".
func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) and 503 (Service Unavailable) with exponential backoff starting
// at RetryBaseDelay and doubling each attempt.
//
// When maxRetries is 0 the default (3) is used. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries the last throttled response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Request describes a GET issued by Fetch.
type Request struct {
	URL       string
	UserAgent string
	Accept    string
	Header    http.Header
}

// Fetch GETs the URL with retries and returns the body of a 200 response.
// Any other status is an error naming the code and URL.
func Fetch(ctx context.Context, client *http.Client, r Request) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}
	if r.Accept != "" {
		req.Header.Set("Accept", r.Accept)
	}

	resp, err := DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", r.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, r.URL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", r.URL, err)
	}
	if int64(len(body)) > maxBodyBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", r.URL, maxBodyBytes)
	}
	return body, nil
}
