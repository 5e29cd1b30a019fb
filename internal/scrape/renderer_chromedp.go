package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ErrRendererDisabled is returned when a render is requested but the
// renderer was constructed with Enabled=false.
var ErrRendererDisabled = errors.New("headless renderer disabled")

// RendererConfig controls the chromedp-backed renderer.
type RendererConfig struct {
	Enabled     bool
	UserAgent   string
	PageTimeout time.Duration
}

// ChromedpRenderer renders a page in headless Chrome and returns the
// post-script DOM. It holds a single warm browser allocator; each render
// gets its own tab.
type ChromedpRenderer struct {
	cfg         RendererConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer starts the browser allocator when enabled. The
// returned renderer must be closed to release the browser.
func NewChromedpRenderer(cfg RendererConfig, logger *zap.Logger) (*ChromedpRenderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 30 * time.Second
	}
	r := &ChromedpRenderer{cfg: cfg, logger: logger}
	if !cfg.Enabled {
		return r, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)

	// Warm up the browser so the first real render does not pay the
	// process startup cost.
	warmCtx, warmCancel := chromedp.NewContext(r.allocCtx)
	defer warmCancel()
	warm, cancel := context.WithTimeout(warmCtx, cfg.PageTimeout)
	defer cancel()
	if err := chromedp.Run(warm); err != nil {
		r.allocCancel()
		return nil, fmt.Errorf("start headless browser: %w", err)
	}
	logger.Info("headless renderer ready")
	return r, nil
}

// Render navigates to the URL in a fresh tab and returns the serialized DOM.
func (r *ChromedpRenderer) Render(ctx context.Context, rawURL string) ([]byte, error) {
	if !r.cfg.Enabled {
		return nil, ErrRendererDisabled
	}

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx)
	defer tabCancel()
	runCtx, cancel := context.WithTimeout(tabCtx, r.cfg.PageTimeout)
	defer cancel()

	// Honor caller cancellation on top of the page timeout.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	var html string
	tasks := chromedp.Tasks{
		network.Enable(),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	}
	if err := chromedp.Run(runCtx, tasks); err != nil {
		return nil, fmt.Errorf("render %s: %w", rawURL, err)
	}
	return []byte(html), nil
}

// Close tears down the browser allocator.
func (r *ChromedpRenderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}
