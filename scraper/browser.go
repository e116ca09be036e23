package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/aluiziolira/go-scrape-fbref/config"
)

// BrowserFactory starts Chrome sessions through chromedp.
type BrowserFactory struct {
	opts            []chromedp.ExecAllocatorOption
	pageLoadTimeout time.Duration
	readyTimeout    time.Duration
	minSettle       time.Duration
}

// NewBrowserFactory builds a factory from cfg.
func NewBrowserFactory(cfg *config.Config) *BrowserFactory {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("log-level", "3"),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	return &BrowserFactory{
		opts:            opts,
		pageLoadTimeout: cfg.PageLoadTimeout,
		readyTimeout:    cfg.ReadyTimeout,
		minSettle:       cfg.MinSettle,
	}
}

// Name identifies the fetcher in logs and metrics.
func (f *BrowserFactory) Name() string {
	return config.FetcherBrowser
}

// Open launches a browser and waits until it accepts commands.
func (f *BrowserFactory) Open(ctx context.Context) (Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, ErrSession{Err: fmt.Errorf("start browser: %w", err)}
	}

	return &browserSession{
		ctx:             browserCtx,
		cancelBrowser:   cancelBrowser,
		cancelAlloc:     cancelAlloc,
		pageLoadTimeout: f.pageLoadTimeout,
		readyTimeout:    f.readyTimeout,
		minSettle:       f.minSettle,
	}, nil
}

type browserSession struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc

	pageLoadTimeout time.Duration
	readyTimeout    time.Duration
	minSettle       time.Duration
}

func (s *browserSession) Fetch(ctx context.Context, url, ready string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()

	navCtx, cancel := context.WithTimeout(s.ctx, s.pageLoadTimeout)
	err := chromedp.Run(navCtx, chromedp.Navigate(url))
	cancel()
	if err != nil {
		return "", classifyError(fmt.Errorf("navigate %s: %w", url, err), 0)
	}

	// A page without the expected table is still extracted; absence is
	// reported per table.
	if ready != "" && s.readyTimeout > 0 {
		waitCtx, cancel := context.WithTimeout(s.ctx, s.readyTimeout)
		err := chromedp.Run(waitCtx, chromedp.WaitReady(ready, chromedp.ByQuery))
		cancel()
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				return "", ErrSession{Err: fmt.Errorf("wait for %s: %w", ready, err)}
			}
			slog.Debug("ready selector not present before timeout",
				slog.String("selector", ready),
				slog.String("url", url),
			)
		}
	}

	if err := settle(ctx, start, s.minSettle); err != nil {
		return "", err
	}

	var markup string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return "", ErrSession{Err: fmt.Errorf("read page source: %w", err)}
	}
	return markup, nil
}

func (s *browserSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancelBrowser()
	s.cancelAlloc()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}
