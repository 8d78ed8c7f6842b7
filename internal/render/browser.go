// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/pdiddy/paper-miner/pkg/types"
)

const (
	defaultPageTimeout    = 60 * time.Second
	defaultCaptchaTimeout = 2 * time.Minute
	captchaPollInterval   = time.Second
)

// BrowserRenderer renders pages in a single Chrome instance driven by
// chromedp. The browser starts on first use and every render opens a fresh
// tab in it. Calls are serialized; one BrowserRenderer is meant to be shared
// by a whole run and closed once at the end.
type BrowserRenderer struct {
	cfg    types.RenderConfig
	logger *slog.Logger

	mu          sync.Mutex
	browserCtx  context.Context
	allocCancel context.CancelFunc
	closed      bool
}

// NewBrowserRenderer returns a renderer that launches Chrome lazily.
func NewBrowserRenderer(cfg types.RenderConfig, logger *slog.Logger) *BrowserRenderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPageTimeout
	}
	if cfg.CaptchaTimeout <= 0 {
		cfg.CaptchaTimeout = defaultCaptchaTimeout
	}
	return &BrowserRenderer{cfg: cfg, logger: logger}
}

// Content returns the page's HTML after scripts have run. A captcha is
// waited out when render.solve_captcha is set.
func (b *BrowserRenderer) Content(ctx context.Context, pageURL string) (string, error) {
	return b.render(ctx, pageURL, b.cfg.SolveCaptcha)
}

// Text renders the page and returns its readable text.
func (b *BrowserRenderer) Text(ctx context.Context, pageURL string, opts TextOptions) (string, error) {
	html, err := b.render(ctx, pageURL, opts.SolveCaptcha || b.cfg.SolveCaptcha)
	if err != nil {
		return "", err
	}
	return extractText(html, pageURL, opts.Selector)
}

// Close shuts the browser down. Later calls are no-ops.
func (b *BrowserRenderer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.browserCtx == nil {
		return nil
	}
	err := chromedp.Cancel(b.browserCtx)
	b.allocCancel()
	b.browserCtx, b.allocCancel = nil, nil
	if err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	b.logger.Debug("browser closed")
	return nil
}

func (b *BrowserRenderer) render(ctx context.Context, pageURL string, solveCaptcha bool) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	browserCtx, err := b.session()
	if err != nil {
		return "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	pageCtx, cancel := context.WithTimeout(tabCtx, b.cfg.Timeout)
	defer cancel()

	b.logger.Debug("rendering page", "url", pageURL)
	var html string
	err = chromedp.Run(pageCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", pageURL, err)
	}

	if !pageHasCaptcha(html) {
		return html, nil
	}
	if !solveCaptcha {
		return "", fmt.Errorf("%s: %w", pageURL, ErrCaptcha)
	}

	b.logger.Info("waiting for captcha to clear", "url", pageURL, "timeout", b.cfg.CaptchaTimeout)
	html, err = waitCaptcha(tabCtx, b.cfg.CaptchaTimeout)
	if err != nil {
		return "", fmt.Errorf("%s: %w", pageURL, err)
	}
	return html, nil
}

// session starts Chrome on first use. The caller holds b.mu.
func (b *BrowserRenderer) session() (context.Context, error) {
	if b.closed {
		return nil, fmt.Errorf("browser renderer is closed")
	}
	if b.browserCtx != nil {
		return b.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
	)
	if b.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.cfg.UserAgent))
	}
	if b.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(b.cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, _ := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		b.logger.Debug(fmt.Sprintf(format, args...))
	}))
	if err := chromedp.Run(browserCtx); err != nil {
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	b.logger.Debug("browser started", "headless", b.cfg.Headless)
	b.browserCtx, b.allocCancel = browserCtx, allocCancel
	return browserCtx, nil
}

// waitCaptcha polls the open tab until the captcha markers disappear, for
// example after someone solves it in a visible browser window.
func waitCaptcha(tabCtx context.Context, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	ticker := time.NewTicker(captchaPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("captcha not cleared within %s: %w", timeout, ErrCaptcha)
		case <-ticker.C:
		}
		var html string
		if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
			continue
		}
		if !pageHasCaptcha(html) {
			return html, nil
		}
	}
}

func pageHasCaptcha(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return hasCaptcha(doc)
}
