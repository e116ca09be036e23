package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-fbref/config"
)

// chromeNames are the executables chromedp looks for by default.
var chromeNames = []string{
	"headless_shell",
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
}

func requireChrome(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests skipped in -short mode")
	}
	for _, name := range chromeNames {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no Chrome executable on PATH")
}

func browserConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Headless = true
	cfg.NoSandbox = true
	cfg.PageLoadTimeout = 10 * time.Second
	cfg.ReadyTimeout = 500 * time.Millisecond
	cfg.MinSettle = 0
	return cfg
}

func openBrowser(t *testing.T, cfg *config.Config) Session {
	t.Helper()
	sess, err := NewBrowserFactory(cfg).Open(context.Background())
	if err != nil {
		t.Fatalf("open browser: %v", err)
	}
	t.Cleanup(func() {
		if err := sess.Close(); err != nil {
			t.Errorf("close browser: %v", err)
		}
	})
	return sess
}

func TestBrowserFetchReadyTimeoutIsNotAnError(t *testing.T) {
	requireChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><p id="marker">sin tablas</p></body></html>`)
	}))
	defer srv.Close()

	cfg := browserConfig()
	sess := openBrowser(t, cfg)

	start := time.Now()
	markup, err := sess.Fetch(context.Background(), srv.URL, readySelector("stats_standard"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(markup, `id="marker"`) {
		t.Fatalf("markup missing page content: %q", markup)
	}
	if elapsed := time.Since(start); elapsed < cfg.ReadyTimeout {
		t.Fatalf("fetch returned after %v, before the %v ready timeout", elapsed, cfg.ReadyTimeout)
	}
}

func TestBrowserFetchHonoursMinSettle(t *testing.T) {
	requireChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><table id="stats_standard_12"><tr><th>RL</th></tr></table></body></html>`)
	}))
	defer srv.Close()

	cfg := browserConfig()
	cfg.MinSettle = 1500 * time.Millisecond
	sess := openBrowser(t, cfg)

	start := time.Now()
	markup, err := sess.Fetch(context.Background(), srv.URL, readySelector("stats_standard"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if elapsed := time.Since(start); elapsed < cfg.MinSettle {
		t.Fatalf("fetch returned after %v, want at least %v", elapsed, cfg.MinSettle)
	}
	if !strings.Contains(markup, `id="stats_standard_12"`) {
		t.Fatalf("markup missing table: %q", markup)
	}
}

func TestBrowserFetchPageLoadTimeout(t *testing.T) {
	requireChrome(t)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := browserConfig()
	cfg.PageLoadTimeout = 500 * time.Millisecond
	sess := openBrowser(t, cfg)

	_, err := sess.Fetch(context.Background(), srv.URL, readySelector("stats_standard"))
	var timeout ErrTimeout
	if !errors.As(err, &timeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if got := errorTypeLabel(err); got != "timeout" {
		t.Fatalf("label=%q, want timeout", got)
	}
}

func TestBrowserFetchCancelled(t *testing.T) {
	requireChrome(t)

	sess := openBrowser(t, browserConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sess.Fetch(ctx, "about:blank", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
