package chromedp_fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ErrClosed is returned by FetchPage after Close.
var ErrClosed = errors.New("browser fetcher is closed")

// ChromedpFetcher renders pages in headless Chrome for sites that build
// their recipe markup with JavaScript. One browser process serves every
// page; each fetch gets its own tab.
type ChromedpFetcher struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	slots       chan struct{}
	timeout     time.Duration
	logger      *zap.Logger

	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	closed        bool
}

// NewChromedpFetcher starts one browser allocator shared by at most
// maxConcurrency tabs at a time.
func NewChromedpFetcher(maxConcurrency int, pageLoadTimeout time.Duration, userAgent string, logger *zap.Logger) *ChromedpFetcher {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromedpFetcher{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		slots:       make(chan struct{}, maxConcurrency),
		timeout:     pageLoadTimeout,
		logger:      logger,
	}
}

// FetchPage loads url, waits for the body and returns the rendered document.
func (c *ChromedpFetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	select {
	case c.slots <- struct{}{}:
		defer func() { <-c.slots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	browserCtx, err := c.browser()
	if err != nil {
		return nil, err
	}

	// Open a new tab in the shared browser
	taskCtx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	// Create a timeout for the entire page load
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, c.timeout)
	defer cancelTimeout()

	start := time.Now()
	var html string
	err = chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("render %s: %w", url, err)
	}

	c.logger.Debug("Rendered page in browser",
		zap.String("url", url),
		zap.Duration("duration", time.Since(start)),
		zap.Int("bytes", len(html)),
	)
	return []byte(html), nil
}

// browser returns the shared browser context, starting Chrome on first use
// and again after the previous process has gone away.
func (c *ChromedpFetcher) browser() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.browserCtx != nil && c.browserCtx.Err() == nil {
		return c.browserCtx, nil
	}

	ctx, cancel := chromedp.NewContext(c.allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	// Run without actions launches the browser; it must not carry a
	// request deadline or the whole browser would close with it.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	c.browserCtx, c.cancelBrowser = ctx, cancel
	c.logger.Info("Started headless browser")
	return ctx, nil
}

// Close shuts the browser down. Later fetches fail with ErrClosed.
func (c *ChromedpFetcher) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.cancelBrowser != nil {
		c.cancelBrowser()
	}
	c.cancelAlloc()
}
