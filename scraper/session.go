package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/aluiziolira/go-scrape-fbref/config"
)

// Session is one browsing session. It is opened once per season and closed
// before the next season starts.
type Session interface {
	// Fetch navigates to url and returns the rendered markup. readySelector,
	// when not empty, is a CSS selector that signals the page has rendered
	// the content of interest.
	Fetch(ctx context.Context, url, readySelector string) (string, error)
	Close() error
}

// SessionFactory acquires sessions.
type SessionFactory interface {
	Open(ctx context.Context) (Session, error)
	Name() string
}

// NewSessionFactory returns the factory for the configured fetcher.
func NewSessionFactory(cfg *config.Config) (SessionFactory, error) {
	switch cfg.Fetcher {
	case config.FetcherBrowser:
		return NewBrowserFactory(cfg), nil
	case config.FetcherStatic:
		return NewStaticFactory(cfg), nil
	default:
		return nil, fmt.Errorf("unknown fetcher %q", cfg.Fetcher)
	}
}

// readySelector matches a table whose id starts with prefix.
func readySelector(prefix string) string {
	return fmt.Sprintf(`table[id^=%q]`, prefix)
}

// settle blocks until minSettle has passed since start.
func settle(ctx context.Context, start time.Time, minSettle time.Duration) error {
	return sleepCtx(ctx, minSettle-time.Since(start))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
