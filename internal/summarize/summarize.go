// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize produces short LLM summaries of paper text.
package summarize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pdiddy/paper-miner/pkg/types"
)

// Default settings applied when the configuration leaves them unset.
const (
	DefaultModel      = "claude-sonnet-4-5-20250929"
	DefaultMaxChars   = 60000
	DefaultMaxTokens  = 1024
	DefaultMaxRetries = 3
)

// Summarizer turns the text of a paper into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, title, text string) (string, error)
}

var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are assisting a researcher who screens papers for reusable sequencing data.

Summarize the paper below in one paragraph of at most 150 words. State the organisms or environments studied, the sequencing approach, and where the data were deposited if the text says so. Do not speculate beyond the text.
{{if .Title}}
Title: {{.Title}}
{{end}}
Paper text:
{{.Text}}
`))

// baseURL is the Anthropic API root. Package-level var for test substitution.
var baseURL = "https://api.anthropic.com/"

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Anthropic summarizes text with the Claude Messages API.
type Anthropic struct {
	client     anthropic.Client
	model      string
	maxChars   int
	maxTokens  int
	maxRetries int
	logger     *slog.Logger
}

// NewAnthropic builds a summarizer from cfg. An API key is required.
func NewAnthropic(cfg types.SummaryConfig, httpClient *http.Client, logger *slog.Logger) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key is required (set .secrets/anthropic-api-key or ANTHROPIC_API_KEY)")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	a := &Anthropic{
		client:     anthropic.NewClient(opts...),
		model:      cfg.Model,
		maxChars:   cfg.MaxChars,
		maxTokens:  cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
	if a.model == "" {
		a.model = DefaultModel
	}
	if a.maxChars <= 0 {
		a.maxChars = DefaultMaxChars
	}
	if a.maxTokens <= 0 {
		a.maxTokens = DefaultMaxTokens
	}
	if a.maxRetries <= 0 {
		a.maxRetries = DefaultMaxRetries
	}
	return a, nil
}

// Summarize sends the (truncated) text to the model and returns the reply.
func (a *Anthropic) Summarize(ctx context.Context, title, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text to summarize")
	}
	prompt, err := renderPrompt(title, Truncate(text, a.maxChars))
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return callWithRetry(ctx, a.maxRetries, a.logger, func(ctx context.Context) (string, error) {
		return a.complete(ctx, prompt)
	})
}

func (a *Anthropic) complete(ctx context.Context, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no text content in Claude API response")
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// callWithRetry runs call with exponential backoff. Client errors other than
// rate limiting are returned immediately.
func callWithRetry(ctx context.Context, maxRetries int, logger *slog.Logger, call func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			logger.Debug("retrying summary", "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		code := apiErr.StatusCode
		return code == http.StatusTooManyRequests || code >= 500
	}
	return true
}

// Truncate shortens text to at most maxChars bytes without splitting a
// UTF-8 sequence. maxChars <= 0 leaves text unchanged.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func renderPrompt(title, text string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Title, Text string }{Title: title, Text: text}
	if err := summaryPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
